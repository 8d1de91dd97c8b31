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

package offsets

import (
	"slices"
	"strings"
)

// GroupFilter is an optional allow-list of consumer groups. A nil filter
// allows every group.
type GroupFilter map[string]struct{}

// NewGroupFilter builds a filter from group names. Each name may itself be a
// comma-separated list. Blank names are dropped, and if no names remain the
// returned filter is nil.
func NewGroupFilter(names ...string) GroupFilter {
	var f GroupFilter
	for _, n := range names {
		for _, g := range strings.Split(n, ",") {
			if g = strings.TrimSpace(g); g == "" {
				continue
			}
			if f == nil {
				f = make(GroupFilter)
			}
			f[g] = struct{}{}
		}
	}
	return f
}

// Allows reports whether group passes the filter.
func (f GroupFilter) Allows(group string) bool {
	if f == nil {
		return true
	}
	_, ok := f[group]
	return ok
}

// Names returns the sorted group names of the filter.
func (f GroupFilter) Names() []string {
	names := make([]string, 0, len(f))
	for g := range f {
		names = append(names, g)
	}
	slices.Sort(names)
	return names
}

// Missing returns the sorted filter names that are absent from seen.
func (f GroupFilter) Missing(seen map[string]struct{}) []string {
	var missing []string
	for _, g := range f.Names() {
		if _, ok := seen[g]; !ok {
			missing = append(missing, g)
		}
	}
	return missing
}
