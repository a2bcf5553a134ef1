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

package resolve

import "github.com/modgraph/resolve/dep"

// SelectorID indexes a SelectorState within a ResolveState's arena.
type SelectorID int

// SelectorState is one occurrence of a dependency edge's declared
// requirement: the constraint it carries, and (once resolution of its
// owning module has progressed far enough) the ComponentState it
// ultimately resolved to.
type SelectorState struct {
	id SelectorID

	rs *ResolveState

	module     ModuleIdentifier
	constraint VersionConstraint
	edgeType   dep.Type

	resolved ComponentStateID // zero value means "none"
}

// ID returns the arena index of this SelectorState.
func (s *SelectorState) ID() SelectorID { return s.id }

// Module is the module this selector declares a requirement on.
func (s *SelectorState) Module() ModuleIdentifier { return s.module }

// Constraint is the resolved VersionConstraint this selector carries.
func (s *SelectorState) Constraint() VersionConstraint { return s.constraint }

// Type returns the dep.Type attributes of the edge that produced this
// selector.
func (s *SelectorState) Type() dep.Type { return s.edgeType }

// Resolved returns the ComponentState this selector resolved to, if any.
func (s *SelectorState) Resolved() (ComponentStateID, bool) {
	return s.resolved, s.resolved != 0
}

// setResolved records the ComponentState this selector ultimately
// resolved to. A zero id clears the resolution. deselectVersion does not
// clear it, so a selector keeps pointing at the component it resolved to
// even after that component is deselected.
func (s *SelectorState) setResolved(id ComponentStateID) { s.resolved = id }

// agrees reports whether this selector's constraint agrees that version
// is acceptable to it, using the ResolveState's VersionSelector. A
// selector with an empty constraint never agrees nor disagrees: callers
// implementing §4.4.1 must treat that as "ignored", not "disagrees".
func (s *SelectorState) agrees(version string) (agrees, hasOpinion bool) {
	if s.constraint.IsEmpty() {
		return false, false
	}
	return s.constraint.agrees(s.rs.versionSelector, version), true
}
