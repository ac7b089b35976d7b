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

package boot

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/boot/internal/bootlog"
)

// osExit terminates the process. Swapped in tests that assert on
// termination.
var osExit = os.Exit

// Messages that mark a failure to configure logging itself. Errors
// carrying one of these substrings always reach the parent handler:
// the report that was written for them may never have been output.
var _logConfigurationMessages = []string{
	bootlog.ConfigurationErrorMessage,
}

// Gate filters the errors that escape a goroutine. Application runners
// tell the gate which errors they already reported and which exit code
// a failed run asked for; when an error finally escapes, the gate
// forwards it to the previously installed handler only if it still
// needs reporting, then terminates the process if an exit code was
// registered.
//
// A Gate is safe for concurrent use, but it filters errors for the one
// goroutine it is installed on.
type Gate struct {
	mu       sync.Mutex
	parent   Handler
	logged   []error
	exitCode int
}

var _ Handler = (*Gate)(nil)

// CurrentGate returns the gate installed for the calling goroutine,
// installing a fresh one first when none is present. A fresh gate
// captures the goroutine's previously installed handler as its parent
// and replaces it.
func CurrentGate() *Gate {
	if g, ok := CurrentHandler().(*Gate); ok {
		return g
	}

	g := &Gate{parent: CurrentHandler()}
	SetCurrentHandler(g)
	return g
}

// RegisterLoggedError records that err was already reported through the
// application log. If the same error value later escapes the
// goroutine, the gate will not forward it to the parent handler.
// A nil err is ignored.
func (g *Gate) RegisterLoggedError(err error) {
	if err == nil {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.logged = append(g.logged, err)
}

// RegisterExitCode sets the status code the process terminates with
// after the next handling cycle. Zero leaves the process alive.
func (g *Gate) RegisterExitCode(code int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.exitCode = code
}

// HandleUncaught implements Handler.
//
// The error is forwarded to the parent handler unless it was registered
// as already logged. Errors marking a logging configuration failure
// forward regardless of registration. Cleanup is unconditional, even
// when the parent handler panics: the logged-error registry is cleared
// and, when a non-zero exit code was registered, the process
// terminates with it.
func (g *Gate) HandleUncaught(gid uint64, err error) {
	defer func() {
		g.mu.Lock()
		g.logged = nil
		code := g.exitCode
		g.mu.Unlock()

		if code != 0 {
			osExit(code)
		}
	}()

	if isLogConfigurationError(err) || !g.registered(err) {
		g.parentOrDefault().HandleUncaught(gid, err)
	}
}

// parentOrDefault resolves the handler the gate forwards to. Gates
// created on goroutines with no handler fall back to the process-wide
// default at handling time.
func (g *Gate) parentOrDefault() Handler {
	if g.parent != nil {
		return g.parent
	}
	return DefaultHandler()
}

// registered reports whether err, or the cause inside an invocation
// wrapper, was recorded by RegisterLoggedError. Matching is by error
// value identity, never by message.
func (g *Gate) registered(err error) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.registeredLocked(err)
}

func (g *Gate) registeredLocked(err error) bool {
	for _, logged := range g.logged {
		if logged == err {
			return true
		}
	}
	if inv, ok := err.(*InvocationError); ok {
		return g.registeredLocked(inv.Err)
	}
	return false
}

// isLogConfigurationError reports whether the error message marks a
// failure to configure logging. Invocation wrappers are unwrapped
// before matching; a nil cause never matches.
func isLogConfigurationError(err error) bool {
	if inv, ok := err.(*InvocationError); ok {
		return isLogConfigurationError(inv.Err)
	}
	if err == nil {
		return false
	}

	msg := err.Error()
	for _, candidate := range _logConfigurationMessages {
		if strings.Contains(msg, candidate) {
			return true
		}
	}
	return false
}
