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

package boot_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
	"go.uber.org/boot"
	"go.uber.org/goleak"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	// The process-wide signal watcher started by Run never exits.
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("os/signal.signal_recv"),
		goleak.IgnoreTopFunction("os/signal.loop"),
	)
}

func TestExecuteSuccess(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	scope := tally.NewTestScope("", nil)

	ran := false
	app := boot.New("checkout",
		boot.WithEnvironment(boot.StaticEnvironment{boot.VersionProperty: "1.2.3"}),
		boot.WithLogger(zap.New(core)),
		boot.WithMetricsScope(scope),
		boot.WithMain(func(context.Context) error { ran = true; return nil }),
	)

	require.NoError(t, app.Execute(context.Background()))
	assert.True(t, ran, "main must run")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.True(t, strings.HasPrefix(entries[0].Message, "Starting checkout v1.2.3 using Go "), "got %q", entries[0].Message)
	assert.True(t, strings.HasPrefix(entries[1].Message, "Running with Boot v"), "got %q", entries[1].Message)
	assert.True(t, strings.HasPrefix(entries[2].Message, "Started checkout in "), "got %q", entries[2].Message)

	snapshot := scope.Snapshot()

	var completed tally.CounterSnapshot
	for _, counter := range snapshot.Counters() {
		if counter.Name() == "boot.startup_completed" {
			completed = counter
		}
	}
	require.NotNil(t, completed, "startup counter must be emitted")
	assert.Equal(t, int64(1), completed.Value())
	assert.Equal(t, boot.Version, completed.Tags()["boot_version"])
	assert.NotEmpty(t, completed.Tags()["go_version"])

	var durations int
	for _, timer := range snapshot.Timers() {
		if timer.Name() == "boot.startup_time" {
			durations = len(timer.Values())
		}
	}
	assert.Equal(t, 1, durations, "startup timer must record one duration")
}

func TestExecuteMainError(t *testing.T) {
	wrapped := errors.New("great sadness")
	app := boot.New("checkout",
		boot.WithEnvironment(boot.StaticEnvironment{}),
		boot.WithLogger(zap.NewNop()),
		boot.WithMain(func(context.Context) error { return wrapped }),
	)

	err := app.Execute(context.Background())
	require.Error(t, err)

	var inv *boot.InvocationError
	require.ErrorAs(t, err, &inv, "main failures must be reported as invocation errors")
	assert.ErrorIs(t, err, wrapped)
	assert.Contains(t, inv.FunctionName, "TestExecuteMainError")
	assert.Empty(t, inv.Stacktrace, "returned errors carry no stacktrace")
}

func TestExecuteMainPanic(t *testing.T) {
	app := boot.New("checkout",
		boot.WithEnvironment(boot.StaticEnvironment{}),
		boot.WithLogger(zap.NewNop()),
		boot.WithMain(func(context.Context) error { panic("great sadness") }),
	)

	err := app.Execute(context.Background())
	require.Error(t, err)

	var inv *boot.InvocationError
	require.ErrorAs(t, err, &inv)
	assert.ErrorContains(t, err, "panic: great sadness")
	assert.NotEmpty(t, inv.Stacktrace, "panics must carry the stack they unwound")
}

func TestExecuteNoMain(t *testing.T) {
	app := boot.New("checkout",
		boot.WithEnvironment(boot.StaticEnvironment{}),
		boot.WithLogger(zap.NewNop()),
	)

	err := app.Execute(context.Background())
	assert.ErrorContains(t, err, "no main function configured")
}

func TestExecuteConstructionError(t *testing.T) {
	app := boot.New("checkout",
		boot.WithEnvironment(boot.StaticEnvironment{boot.LogLevelProperty: "verbose"}),
		boot.WithMain(func(context.Context) error { return nil }),
	)

	err := app.Execute(context.Background())
	assert.ErrorContains(t, err, "logger configuration error detected")
	assert.ErrorContains(t, err, "verbose")
}

func TestExecuteCleanupFailures(t *testing.T) {
	first := errors.New("close database")
	second := errors.New("flush cache")

	app := boot.New("checkout",
		boot.WithEnvironment(boot.StaticEnvironment{}),
		boot.WithLogger(zap.NewNop()),
		boot.WithMain(func(context.Context) error { return nil }),
		boot.WithCleanup(func() error { return first }),
		boot.WithCleanup(func() error { return second }),
	)

	err := app.Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, []error{second, first}, multierr.Errors(err), "all cleanup failures must surface")
}

func TestExecuteMainErrorStillCleansUp(t *testing.T) {
	mainErr := errors.New("great sadness")
	cleanupErr := errors.New("close database")

	app := boot.New("checkout",
		boot.WithEnvironment(boot.StaticEnvironment{}),
		boot.WithLogger(zap.NewNop()),
		boot.WithMain(func(context.Context) error { return mainErr }),
		boot.WithCleanup(func() error { return cleanupErr }),
	)

	err := app.Execute(context.Background())
	require.Error(t, err)

	errs := multierr.Errors(err)
	require.Len(t, errs, 2, "main and cleanup failures must both surface")
	assert.ErrorIs(t, errs[0], mainErr)
	assert.Same(t, cleanupErr, errs[1])
}

func TestExecuteStartupAction(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	app := boot.New("checkout",
		boot.WithEnvironment(boot.StaticEnvironment{}),
		boot.WithLogger(zap.New(core)),
		boot.WithStartupAction("Restored"),
		boot.WithMain(func(context.Context) error { return nil }),
	)

	require.NoError(t, app.Execute(context.Background()))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.True(t, strings.HasPrefix(entries[1].Message, "Restored checkout in "), "got %q", entries[1].Message)
}

func TestStartingMessagePID(t *testing.T) {
	t.Run("defaults to the process PID", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)

		app := boot.New("checkout",
			boot.WithEnvironment(boot.StaticEnvironment{}),
			boot.WithLogger(zap.New(core)),
			boot.WithMain(func(context.Context) error { return nil }),
		)
		require.NoError(t, app.Execute(context.Background()))

		entries := logs.All()
		require.NotEmpty(t, entries)
		assert.Contains(t, entries[0].Message, fmt.Sprintf("with PID %d", os.Getpid()))
	})

	t.Run("property takes precedence", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)

		app := boot.New("checkout",
			boot.WithEnvironment(boot.StaticEnvironment{boot.PIDProperty: "4242"}),
			boot.WithLogger(zap.New(core)),
			boot.WithMain(func(context.Context) error { return nil }),
		)
		require.NoError(t, app.Execute(context.Background()))

		entries := logs.All()
		require.NotEmpty(t, entries)
		assert.Contains(t, entries[0].Message, "with PID 4242")
	})
}

func TestExecuteYAMLEnvironment(t *testing.T) {
	env, err := boot.YAMLEnvironment(strings.NewReader(`
boot:
  application:
    version: 9.9.9
`))
	require.NoError(t, err)

	core, logs := observer.New(zapcore.InfoLevel)

	app := boot.New("checkout",
		boot.WithEnvironment(env),
		boot.WithLogger(zap.New(core)),
		boot.WithMain(func(context.Context) error { return nil }),
	)
	require.NoError(t, app.Execute(context.Background()))

	entries := logs.All()
	require.NotEmpty(t, entries)
	assert.Contains(t, entries[0].Message, "Starting checkout v9.9.9 using Go ")
}
