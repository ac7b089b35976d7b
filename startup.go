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
	"time"

	"go.uber.org/boot/internal/bootclock"
)

// _processStart anchors process uptime reporting.
var _processStart = time.Now()

// Startup tracks how long an application took to become ready.
type Startup struct {
	clock   bootclock.Clock
	begin   time.Time
	started time.Time

	// action names the verb reported once the application is ready.
	action string

	// uptime reports how long the process has been alive, when known.
	uptime func() (time.Duration, bool)
}

// NewStartup begins timing an application start.
func NewStartup() *Startup {
	return newStartup(bootclock.System)
}

func newStartup(clock bootclock.Clock) *Startup {
	return &Startup{
		clock:  clock,
		begin:  clock.Now(),
		action: "Started",
		uptime: processUptime,
	}
}

// Started freezes the startup timer. Calling it again has no effect.
func (s *Startup) Started() {
	if s.started.IsZero() {
		s.started = s.clock.Now()
	}
}

// TimeTaken reports how long the application took to become ready.
// Before Started it reports the time elapsed so far.
func (s *Startup) TimeTaken() time.Duration {
	if s.started.IsZero() {
		return s.clock.Since(s.begin)
	}
	return s.started.Sub(s.begin)
}

// Action names the completed startup in log messages, "Started" unless
// configured otherwise.
func (s *Startup) Action() string {
	return s.action
}

// ProcessUptime reports how long the process has been alive, when that
// is known.
func (s *Startup) ProcessUptime() (time.Duration, bool) {
	if s.uptime == nil {
		return 0, false
	}
	return s.uptime()
}

func processUptime() (time.Duration, bool) {
	return time.Since(_processStart), true
}
