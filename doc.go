// Copyright (c) 2023 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package boot bootstraps long-running applications: it reports
// startup the same way everywhere, times how long an application took
// to become ready, and keeps failures from dying silently.
//
// An application hands its main function to an App:
//
//	func main() {
//		boot.New("checkout",
//			boot.WithMain(run),
//		).Run()
//	}
//
// Run reports startup, executes the main function with a context that
// is canceled on SIGINT or SIGTERM, and terminates the process if the
// run fails. The failure is logged once, registered with the calling
// goroutine's Gate so the handler chain does not report it a second
// time, and converted into the process exit code.
//
// # Startup reporting
//
// Startup messages follow a fixed shape, assembled from whatever is
// known about the process:
//
//	Starting checkout v1.2.3 using Go 1.21.3 with PID 4242 (/srv/bin/checkout started by deploy in /srv)
//	Started checkout in 2.5 seconds (process running for 9.0)
//
// Every fragment is optional. A fragment whose value cannot be
// resolved is left out; composing a message never fails. The
// application name and version come from properties (see Environment),
// read from the process environment by default.
//
// # Uncaught errors
//
// A Gate filters the errors that reach a goroutine's uncaught-error
// handler. Errors the application already reported are registered with
// RegisterLoggedError and silently dropped; everything else passes
// through. RegisterExitCode makes the gate terminate the process after
// handling. Failures in logger configuration always pass through, even
// when registered, because the report they got may never have been
// written.
package boot // import "go.uber.org/boot"
