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
	"os"
	"sync"

	"go.uber.org/boot/internal/goid"
)

// Handler receives errors that escaped a goroutine. Implementations
// must be safe for concurrent use.
type Handler interface {
	// HandleUncaught is invoked with the identifier of the goroutine
	// the error escaped from and the error itself.
	HandleUncaught(goroutineID uint64, err error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(goroutineID uint64, err error)

var _ Handler = HandlerFunc(nil)

// HandleUncaught calls f.
func (f HandlerFunc) HandleUncaught(gid uint64, err error) { f(gid, err) }

var (
	_handlersMu sync.RWMutex
	_handlers   = make(map[uint64]Handler)
	_default    Handler = stderrHandler{}
)

// CurrentHandler returns the handler installed for the calling
// goroutine, or nil when none is installed.
func CurrentHandler() Handler {
	gid := goid.ID()
	_handlersMu.RLock()
	defer _handlersMu.RUnlock()
	return _handlers[gid]
}

// SetCurrentHandler installs h as the calling goroutine's handler.
// A nil h removes the installed handler.
//
// The registry is keyed by goroutine identifier; a goroutine that
// installs a handler must remove it before exiting or the entry leaks.
func SetCurrentHandler(h Handler) {
	gid := goid.ID()
	_handlersMu.Lock()
	defer _handlersMu.Unlock()
	if h == nil {
		delete(_handlers, gid)
		return
	}
	_handlers[gid] = h
}

// DefaultHandler returns the process-wide fallback handler.
func DefaultHandler() Handler {
	_handlersMu.RLock()
	defer _handlersMu.RUnlock()
	return _default
}

// SetDefaultHandler replaces the process-wide fallback handler and
// returns a function that restores the previous one. A nil h reinstates
// the built-in handler, which reports to standard error.
func SetDefaultHandler(h Handler) func() {
	if h == nil {
		h = stderrHandler{}
	}

	_handlersMu.Lock()
	prev := _default
	_default = h
	_handlersMu.Unlock()

	return func() { SetDefaultHandler(prev) }
}

// DispatchUncaught routes err to the calling goroutine's handler,
// falling back to the process-wide default when none is installed.
func DispatchUncaught(err error) {
	gid := goid.ID()

	_handlersMu.RLock()
	h := _handlers[gid]
	if h == nil {
		h = _default
	}
	_handlersMu.RUnlock()

	h.HandleUncaught(gid, err)
}

// stderrHandler is the built-in default. It writes the error and any
// captured stacktrace to standard error.
type stderrHandler struct{}

func (stderrHandler) HandleUncaught(gid uint64, err error) {
	fmt.Fprintf(os.Stderr, "goroutine %d: uncaught error: %+v\n", gid, err)

	var inv *InvocationError
	if errors.As(err, &inv) && inv.Stacktrace != "" {
		fmt.Fprint(os.Stderr, inv.Stacktrace)
	}
}
