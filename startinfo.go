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
	"os/user"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"go.uber.org/boot/internal/bootreflect"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// StartupLogger composes and emits the standard startup messages of an
// application: starting, running and started.
//
// Every message fragment comes from a supplier that is allowed to
// fail. A failing supplier omits its fragment; composing a message
// never fails because one input does.
type StartupLogger struct {
	source string
	env    Environment

	pgo        func() bool
	executable func() (string, error)
	username   func() (string, error)
	workingDir func() (string, error)

	libVersion func() string
	goVersion  func() string
}

// NewStartupLogger reports startup for the application named source,
// reading the version and PID properties from env. A path-qualified
// source is reported by its last element; an empty source is reported
// as "application"; a nil env reads the process environment.
func NewStartupLogger(source string, env Environment) *StartupLogger {
	if env == nil {
		env = SystemEnvironment()
	}
	return &StartupLogger{
		source:     source,
		env:        env,
		pgo:        pgoEnabled,
		executable: os.Executable,
		username:   currentUsername,
		workingDir: os.Getwd,
		libVersion: libraryVersion,
		goVersion:  goVersion,
	}
}

// LogStarting emits the starting message at Info and the running
// message at Debug. A message is composed only when its level is
// enabled.
func (l *StartupLogger) LogStarting(log *zap.Logger) {
	if log.Core().Enabled(zapcore.InfoLevel) {
		log.Info(l.StartingMessage())
	}
	if log.Core().Enabled(zapcore.DebugLevel) {
		log.Debug(l.RunningMessage())
	}
}

// LogStarted emits the started message for a finished startup at Info.
func (l *StartupLogger) LogStarted(log *zap.Logger, startup *Startup) {
	if log.Core().Enabled(zapcore.InfoLevel) {
		log.Info(l.StartedMessage(startup))
	}
}

// StartingMessage describes the application about to start, for
// example:
//
//	Starting checkout v1.2.3 using Go 1.21.3 with PID 4242 (/srv/bin/checkout started by deploy in /srv)
func (l *StartupLogger) StartingMessage() string {
	var message strings.Builder
	message.WriteString("Starting")
	appendFragment(&message, "", l.optimizationMarker, "")
	appendFragment(&message, "", l.applicationName, "application")
	appendFragment(&message, "v", l.property(VersionProperty), "")
	appendFragment(&message, "using Go ", supplied(l.goVersion), "")
	appendFragment(&message, "with PID ", l.property(PIDProperty), "")
	l.appendRunContext(&message)
	return message.String()
}

// RunningMessage describes the library and runtime versions the
// application runs with, for example:
//
//	Running with Boot v1.4.0, Go v1.21.3
func (l *StartupLogger) RunningMessage() string {
	var message strings.Builder
	message.WriteString("Running with Boot")
	appendFragment(&message, "v", supplied(l.libVersion), "")
	message.WriteString(", Go")
	appendFragment(&message, "v", supplied(l.goVersion), "")
	return message.String()
}

// StartedMessage describes a finished startup, for example:
//
//	Started checkout in 2.5 seconds (process running for 9.0)
func (l *StartupLogger) StartedMessage(startup *Startup) string {
	var message strings.Builder
	message.WriteString(startup.Action())
	appendFragment(&message, "", l.applicationName, "application")
	message.WriteString(" in ")
	message.WriteString(seconds(startup.TimeTaken()))
	message.WriteString(" seconds")
	if uptime, ok := startup.ProcessUptime(); ok {
		message.WriteString(" (process running for ")
		message.WriteString(seconds(uptime))
		message.WriteString(")")
	}
	return message.String()
}

func (l *StartupLogger) applicationName() (string, error) {
	return bootreflect.ShortName(l.source), nil
}

func (l *StartupLogger) optimizationMarker() (string, error) {
	if l.pgo != nil && l.pgo() {
		return "PGO-optimized", nil
	}
	return "", nil
}

func (l *StartupLogger) property(key string) func() (string, error) {
	return func() (string, error) {
		value, _ := l.env.Property(key)
		return value, nil
	}
}

// appendRunContext adds the parenthesized origin of the run: the
// executable path, the user and the working directory. The parentheses
// are omitted entirely when no part resolves.
func (l *StartupLogger) appendRunContext(message *strings.Builder) {
	var context strings.Builder
	appendFragment(&context, "", l.executable, "")
	appendFragment(&context, "started by ", l.username, "")
	appendFragment(&context, "in ", l.workingDir, "")
	if context.Len() == 0 {
		return
	}

	message.WriteString(" (")
	message.WriteString(context.String())
	message.WriteString(")")
}

// appendFragment resolves a fragment and adds prefix+value to the
// message, with a single space separating it from what came before.
// A failed or empty resolution falls back to defaultValue; if that is
// empty too, the fragment is omitted.
func appendFragment(message *strings.Builder, prefix string, supply func() (string, error), defaultValue string) {
	value := callFragment(supply)
	if value == "" {
		value = defaultValue
	}
	if value == "" {
		return
	}

	if message.Len() > 0 {
		message.WriteByte(' ')
	}
	message.WriteString(prefix)
	message.WriteString(value)
}

// callFragment resolves a fragment value, treating errors and panics
// as absent.
func callFragment(supply func() (string, error)) (value string) {
	defer func() {
		if recover() != nil {
			value = ""
		}
	}()

	v, err := supply()
	if err != nil {
		return ""
	}
	return v
}

func supplied(f func() string) func() (string, error) {
	return func() (string, error) { return f(), nil }
}

func currentUsername() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

// seconds renders a duration as a decimal count of seconds in the
// shortest form that keeps at least one fractional digit: 2.5, 9.0,
// 2.525.
func seconds(d time.Duration) string {
	v := float64(d.Milliseconds()) / 1000.0
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func goVersion() string {
	return strings.TrimPrefix(runtime.Version(), "go")
}

// libraryVersion resolves this library's version from build info when
// it is built as a dependency, falling back to the release constant.
func libraryVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range info.Deps {
			if dep.Path != "go.uber.org/boot" {
				continue
			}
			if v := strings.TrimPrefix(dep.Version, "v"); v != "" && v != "(devel)" {
				return v
			}
		}
	}
	return Version
}

// pgoEnabled reports whether the running binary was built with
// profile-guided optimization, per the -pgo build setting.
func pgoEnabled() bool {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return false
	}
	for _, setting := range info.Settings {
		if setting.Key == "-pgo" {
			return setting.Value != "" && setting.Value != "off"
		}
	}
	return false
}
