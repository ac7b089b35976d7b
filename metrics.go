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
	"github.com/uber-go/tally"
)

// startupMetrics emits bootstrap telemetry, tagged with the library and
// runtime versions the application runs with.
type startupMetrics struct {
	completed tally.Counter
	duration  tally.Timer
}

func newStartupMetrics(scope tally.Scope) *startupMetrics {
	tagged := scope.Tagged(map[string]string{
		"boot_version": Version,
		"go_version":   goVersion(),
	}).SubScope("boot")

	return &startupMetrics{
		completed: tagged.Counter("startup_completed"),
		duration:  tagged.Timer("startup_time"),
	}
}

func (m *startupMetrics) emit(startup *Startup) {
	m.completed.Inc(1)
	m.duration.Record(startup.TimeTaken())
}
