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
)

// Property keys consulted by the library.
const (
	// VersionProperty names the application version reported in the
	// starting message.
	VersionProperty = "boot.application.version"

	// PIDProperty names the process identifier reported in the
	// starting message.
	PIDProperty = "boot.application.pid"

	// LogLevelProperty names the level App builds its logger at.
	LogLevelProperty = "boot.log.level"
)

// Environment supplies application properties to startup reporting.
// Implementations must be safe for concurrent reads.
type Environment interface {
	// Property returns the value for key and whether the key is set.
	Property(key string) (value string, ok bool)
}

// StaticEnvironment is a fixed in-memory property set.
type StaticEnvironment map[string]string

var _ Environment = StaticEnvironment(nil)

// Property implements Environment.
func (e StaticEnvironment) Property(key string) (string, bool) {
	value, ok := e[key]
	return value, ok
}

// LookupEnvironment adapts a lookup function to the Environment
// interface.
type LookupEnvironment func(key string) (string, bool)

var _ Environment = LookupEnvironment(nil)

// Property implements Environment.
func (f LookupEnvironment) Property(key string) (string, bool) {
	return f(key)
}

var _envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// SystemEnvironment reads properties from process environment
// variables. Keys are mangled the usual way, uppercased with dots and
// dashes turned into underscores, so "boot.application.version" reads
// the BOOT_APPLICATION_VERSION variable.
func SystemEnvironment() Environment {
	return LookupEnvironment(func(key string) (string, bool) {
		return os.LookupEnv(environKey(key))
	})
}

func environKey(key string) string {
	return strings.ToUpper(_envKeyReplacer.Replace(key))
}

// Environments combines property sources; the first source reporting a
// key as set wins. Nil sources are skipped.
func Environments(envs ...Environment) Environment {
	return environmentGroup(envs)
}

type environmentGroup []Environment

var _ Environment = environmentGroup(nil)

func (g environmentGroup) Property(key string) (string, bool) {
	for _, env := range g {
		if env == nil {
			continue
		}
		if value, ok := env.Property(key); ok {
			return value, true
		}
	}
	return "", false
}
