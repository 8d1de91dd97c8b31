// Copyright 2025 Redpanda Data, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"bytes"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var (
	envRegex        = regexp.MustCompile(`\${[0-9A-Za-z_.]+(:((\${[^}]+})|[^}])*)?}`)
	escapedEnvRegex = regexp.MustCompile(`\${({[0-9A-Za-z_.]+(:((\${[^}]+})|[^}])*)?})}`)
)

// MissingEnvError is returned when a config references environment variables
// that are not set and have no default.
type MissingEnvError struct {
	Names []string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("required environment variables were not set: %s", strings.Join(e.Names, ", "))
}

// interpolateEnv replaces every `${NAME}` or `${NAME:default}` in a config
// document with the value returned by lookupFn. An unset or empty variable
// falls back to its default, and one without a default is reported in a
// *MissingEnvError. `${{NAME}}` is left as a literal `${NAME}`.
func interpolateEnv(in []byte, lookupFn func(string) (string, bool)) ([]byte, error) {
	var missing []string

	out := envRegex.ReplaceAllFunc(in, func(ref []byte) []byte {
		inner := ref[2 : len(ref)-1]
		name, def, hasDefault := bytes.Cut(inner, []byte(":"))

		value, ok := lookupFn(string(name))
		switch {
		case hasDefault && value == "":
			value = string(def)
		case !hasDefault && !ok:
			if !slices.Contains(missing, string(name)) {
				missing = append(missing, string(name))
			}
		}
		// Newlines would otherwise break the surrounding YAML scalar.
		return []byte(strings.ReplaceAll(value, "\n", "\\n"))
	})
	out = escapedEnvRegex.ReplaceAll(out, []byte("$$$1"))

	if len(missing) > 0 {
		return nil, &MissingEnvError{Names: missing}
	}
	return out, nil
}
