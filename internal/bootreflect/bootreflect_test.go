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

package bootreflect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleMain() {}

func TestFuncName(t *testing.T) {
	t.Parallel()

	t.Run("package-level function", func(t *testing.T) {
		t.Parallel()

		name := FuncName(sampleMain)
		assert.Contains(t, name, "bootreflect.sampleMain()")
	})

	t.Run("anonymous function", func(t *testing.T) {
		t.Parallel()

		name := FuncName(func() {})
		assert.Contains(t, name, "func")
		assert.Contains(t, name, "()")
	})

	t.Run("not a function", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "n/a", FuncName(42))
		assert.Equal(t, "n/a", FuncName(nil))
	})
}

func TestShortName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		give string
		want string
	}{
		{give: "go.uber.org/boot.sampleMain()", want: "boot.sampleMain()"},
		{give: "go.uber.org/boot/internal/bootreflect.FuncName()", want: "bootreflect.FuncName()"},
		{give: "main.main()", want: "main.main()"},
		{give: "", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.give, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, ShortName(tt.give))
		})
	}
}
