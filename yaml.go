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
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// YAMLEnvironment parses a YAML document into a flat property set.
// Nested mappings flatten into dot-separated keys. Scalar leaves are
// rendered as strings; sequences and null values have no scalar
// representation and are dropped.
func YAMLEnvironment(r io.Reader) (Environment, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read YAML properties")
	}

	var doc map[interface{}]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "parse YAML properties")
	}

	props := make(StaticEnvironment)
	flattenYAML("", doc, props)
	return props, nil
}

// YAMLEnvironmentFromFile reads a YAML property file from path.
func YAMLEnvironmentFromFile(path string) (Environment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open YAML properties")
	}
	defer f.Close()

	return YAMLEnvironment(f)
}

func flattenYAML(prefix string, doc map[interface{}]interface{}, into StaticEnvironment) {
	for k, v := range doc {
		key := fmt.Sprint(k)
		if prefix != "" {
			key = prefix + "." + key
		}

		switch value := v.(type) {
		case map[interface{}]interface{}:
			flattenYAML(key, value, into)
		case nil, []interface{}:
			// No scalar representation.
		default:
			into[key] = fmt.Sprint(value)
		}
	}
}
