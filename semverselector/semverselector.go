// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package semverselector adapts deps.dev/util/semver into a
// resolve.VersionSelector: selector strings are constraints in one
// packaging ecosystem's grammar, and "higher" is that ecosystem's
// version ordering.
package semverselector

import (
	"deps.dev/util/semver"
)

// Selector implements resolve.VersionSelector (see the resolve package;
// not imported directly here to keep this package usable as a
// general-purpose semver adapter) by parsing every selector string as a
// constraint and every version string as a version, both under System.
type Selector struct {
	System semver.System
}

// New creates a Selector for sys. The zero System is semver.DefaultSystem.
func New(sys semver.System) *Selector {
	return &Selector{System: sys}
}

// Accepts reports whether version satisfies selector, per §4.4's use of
// VersionSelector.Accepts: an unparseable selector or version is treated
// as non-matching rather than panicking, since a malformed constraint
// string from an untrusted metadata source should not abort resolution.
func (s *Selector) Accepts(selector, version string) bool {
	c, err := s.System.ParseConstraint(selector)
	if err != nil {
		return false
	}
	ok, err := c.Set().Match(version)
	if err != nil {
		return false
	}
	return ok
}

// Higher reports whether a orders after b under System's version
// ordering. Unparseable versions fall back to a lexical comparison so
// that conflict resolution still produces a deterministic, if arbitrary,
// winner rather than failing outright.
func (s *Selector) Higher(a, b string) bool {
	va, aerr := s.System.Parse(a)
	vb, berr := s.System.Parse(b)
	if aerr != nil || berr != nil {
		return a > b
	}
	return va.Compare(vb) > 0
}
