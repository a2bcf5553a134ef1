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

// ModuleResolveStateID indexes a ModuleResolveState within a ResolveState's
// arena.
type ModuleResolveStateID int

// ModuleResolveState tracks one module across all of its candidate
// versions: the currently selected ComponentState (if any) and every
// SelectorState that references the module.
type ModuleResolveState struct {
	id ModuleResolveStateID
	rs *ResolveState

	identifier ModuleIdentifier

	components []ComponentStateID
	selectors  []SelectorID
	edges      []EdgeID

	selected ComponentStateID
}

// ID returns the arena index of this ModuleResolveState.
func (m *ModuleResolveState) ID() ModuleResolveStateID { return m.id }

// Identifier is the ModuleIdentifier this state tracks.
func (m *ModuleResolveState) Identifier() ModuleIdentifier { return m.identifier }

func (m *ModuleResolveState) moduleID(rs *ResolveState) ModuleIdentifier { return m.identifier }

// Selected returns the currently selected ComponentState, if any.
func (m *ModuleResolveState) Selected() (ComponentStateID, bool) {
	return m.selected, m.selected != 0
}

func (m *ModuleResolveState) selectorIDs() []SelectorID {
	return append([]SelectorID(nil), m.selectors...)
}

// selectVersion records candidate as the module's selected version. When
// soft is true, the prior selection's bookkeeping in allResolvers is left
// intact for the conflict handler's counting, per the "soft-select" design
// note (§9): a soft-select must not look, to the conflict handler, like a
// brand new registration.
//
// Replacing a prior selection goes through deselectVersion rather than
// just clearing isSelected inline, because the prior candidate may
// already be wired into the graph (attached to one or more consumers
// from an earlier traversal step) by the time a different version wins
// here; deselectVersion is what actually detaches it.
func (m *ModuleResolveState) selectVersion(candidate ComponentStateID, soft bool) {
	c := m.rs.component(candidate)
	if m.selected != 0 && m.selected != candidate {
		m.rs.deselectVersion(m.selected)
	}
	m.selected = candidate
	c.isSelected = true
	c.isSelectable = true
	_ = soft // soft-select differs from select only in what the caller (conflict handler bookkeeping) does with the prior selection; the module state transition itself is identical.
}

// componentFor returns (creating if needed) the ComponentState for
// version within this module.
func (m *ModuleResolveState) componentFor(version string) *ComponentState {
	for _, cid := range m.components {
		c := m.rs.component(cid)
		if c.version.Version == version {
			return c
		}
	}
	c := m.rs.newComponent(m.id, version)
	m.components = append(m.components, c.id)
	return c
}

// addSelector registers a SelectorState as referencing this module.
func (m *ModuleResolveState) addSelector(sid SelectorID) {
	m.selectors = append(m.selectors, sid)
}

// addEdge records an EdgeID as having resolved against this module, win
// or lose. applyConflictResolution replays attachment across this list
// once a conflict is settled, so an edge that arrived before the winner
// was known still gets attached if it turns out to target the winner,
// and is left alone otherwise.
func (m *ModuleResolveState) addEdge(eid EdgeID) {
	m.edges = append(m.edges, eid)
}
