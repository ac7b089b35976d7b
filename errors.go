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
	"errors"
	"fmt"
)

// InvocationError records the failure of a delegated invocation, such
// as the application main function run by App. Handlers that care about
// the error that was actually raised unwrap it through Err.
type InvocationError struct {
	// FunctionName is the formatted name of the invoked function.
	FunctionName string

	// Err is the error the invocation raised or returned.
	Err error

	// Stacktrace captured at the point of failure, if one is available.
	Stacktrace string
}

var _ error = (*InvocationError)(nil)

func (e *InvocationError) Error() string {
	return fmt.Sprintf("invocation of %s failed: %v", e.FunctionName, e.Err)
}

// Unwrap lets errors.Is and errors.As match against the cause.
func (e *InvocationError) Unwrap() error { return e.Err }

// ExitCoder is implemented by errors that carry a process exit code.
// App.Run consults it to translate a failed run into a termination
// status.
type ExitCoder interface {
	ExitCode() int
}

// ExitError is an error with a fixed exit code, for mains that want to
// pick the status the process dies with.
type ExitError struct {
	// Code is the status code the process should exit with.
	Code int

	// Message is the reported failure, if any.
	Message string
}

var (
	_ error     = (*ExitError)(nil)
	_ ExitCoder = (*ExitError)(nil)
)

func (e *ExitError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Message
}

// ExitCode implements ExitCoder.
func (e *ExitError) ExitCode() int { return e.Code }

// Exit returns an error that instructs App.Run to terminate the process
// with the given status code.
func Exit(code int) error {
	return &ExitError{Code: code}
}

// ExitCodeFromError reports the exit code an error asks for. Errors
// implementing ExitCoder anywhere in their chain report their own code;
// every other error, including nil, reports zero.
func ExitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 0
}
