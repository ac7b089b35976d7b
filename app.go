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
	"context"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"syscall"

	"github.com/pkg/errors"
	"github.com/uber-go/tally"
	"go.uber.org/boot/internal/bootclock"
	"go.uber.org/boot/internal/bootlog"
	"go.uber.org/boot/internal/bootreflect"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// App runs an application main function with the standard bootstrap
// around it: startup messages, startup metrics, cleanup actions, and
// failure handling through the calling goroutine's Gate.
type App struct {
	name     string
	env      Environment
	log      *zap.Logger
	scope    tally.Scope
	main     func(context.Context) error
	cleanups []func() error
	action   string
	mapper   func(error) int

	startup *Startup
	info    *StartupLogger

	// err holds a construction failure, surfaced when the app runs.
	err error
}

// An Option configures an App.
type Option interface {
	apply(*App)
}

type optionFunc func(*App)

func (f optionFunc) apply(app *App) { f(app) }

// WithMain sets the function the application runs. Under Run, the
// context is canceled when the process receives SIGINT or SIGTERM.
func WithMain(main func(context.Context) error) Option {
	return optionFunc(func(app *App) {
		app.main = main
	})
}

// WithEnvironment supplies the application properties. The process
// environment is read by default.
func WithEnvironment(env Environment) Option {
	return optionFunc(func(app *App) {
		app.env = env
	})
}

// WithLogger supplies the logger startup reporting writes to. By
// default the App builds a JSON logger on standard error at the level
// named by the boot.log.level property.
func WithLogger(log *zap.Logger) Option {
	return optionFunc(func(app *App) {
		app.log = log
	})
}

// WithMetricsScope supplies the scope startup metrics are emitted to.
// Metrics are discarded by default.
func WithMetricsScope(scope tally.Scope) Option {
	return optionFunc(func(app *App) {
		app.scope = scope
	})
}

// WithCleanup registers a function that runs after the main function
// returns, whether it succeeded or not. Cleanups run in reverse
// registration order; all of them run even if some fail.
func WithCleanup(cleanup func() error) Option {
	return optionFunc(func(app *App) {
		app.cleanups = append(app.cleanups, cleanup)
	})
}

// WithStartupAction renames the verb reported when startup completes,
// "Started" by default.
func WithStartupAction(action string) Option {
	return optionFunc(func(app *App) {
		app.action = action
	})
}

// WithExitCodeMapper overrides how Run derives the process exit code
// from a failed run. The default honors ExitCoder errors and maps
// everything else to zero.
func WithExitCodeMapper(mapper func(error) int) Option {
	return optionFunc(func(app *App) {
		app.mapper = mapper
	})
}

// New assembles an application named name. Construction never fails;
// configuration problems, such as an unparseable log level, surface as
// the error of the first run.
func New(name string, opts ...Option) *App {
	app := &App{name: name}
	for _, opt := range opts {
		opt.apply(app)
	}

	if app.env == nil {
		app.env = SystemEnvironment()
	}
	app.env = Environments(app.env, StaticEnvironment{
		PIDProperty: strconv.Itoa(os.Getpid()),
	})

	if app.log == nil {
		level := "info"
		if v, ok := app.env.Property(LogLevelProperty); ok {
			level = v
		}
		log, err := bootlog.New(level, nil)
		if err != nil {
			// The logger the application asked for does not exist, so
			// anything reported through the fallback may be lost.
			app.err = err
			log = zap.NewNop()
		}
		app.log = log
	}

	if app.scope == nil {
		app.scope = tally.NoopScope
	}

	app.startup = newStartup(bootclock.System)
	if app.action != "" {
		app.startup.action = app.action
	}
	app.info = NewStartupLogger(name, app.env)
	return app
}

// Execute runs the application to completion and returns its error,
// leaving process control to the caller. Startup is reported first;
// failures raised by the main function come back wrapped in an
// *InvocationError, with any cleanup failures appended.
func (app *App) Execute(ctx context.Context) error {
	if app.err != nil {
		return app.err
	}
	if app.main == nil {
		return errors.New("no main function configured")
	}

	app.info.LogStarting(app.log)

	app.startup.Started()
	app.info.LogStarted(app.log, app.startup)
	newStartupMetrics(app.scope).emit(app.startup)

	return multierr.Append(app.invokeMain(ctx), app.cleanup())
}

// Run executes the application and never lets a failure escape
// unreported: the error is logged, registered with the calling
// goroutine's gate along with the exit code it asks for, and
// dispatched to the goroutine's handler chain. A failed run always
// terminates the process.
func (app *App) Run() {
	gate := CurrentGate()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := app.Execute(ctx)
	if err == nil {
		return
	}

	app.log.Error("application run failed", zap.Error(err))
	_ = app.log.Sync()

	gate.RegisterLoggedError(err)
	if code := app.exitCode(err); code != 0 {
		gate.RegisterExitCode(code)
	}

	DispatchUncaught(err)
	osExit(1)
}

func (app *App) exitCode(err error) int {
	if app.mapper != nil {
		return app.mapper(err)
	}
	return ExitCodeFromError(err)
}

// invokeMain runs the main function, converting panics into invocation
// errors so they travel the same reporting path as returned errors.
func (app *App) invokeMain(ctx context.Context) (err error) {
	name := bootreflect.FuncName(app.main)
	defer func() {
		if r := recover(); r != nil {
			err = &InvocationError{
				FunctionName: name,
				Err:          panicAsError(r),
				Stacktrace:   string(debug.Stack()),
			}
		}
	}()

	if runErr := app.main(ctx); runErr != nil {
		return &InvocationError{FunctionName: name, Err: runErr}
	}
	return nil
}

// cleanup runs registered cleanups in reverse order, best effort, and
// combines their failures.
func (app *App) cleanup() error {
	var errs []error
	for i := len(app.cleanups) - 1; i >= 0; i-- {
		if err := app.cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return multierr.Combine(errs...)
}

func panicAsError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return errors.Errorf("panic: %v", r)
}
