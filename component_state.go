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

// ComponentStateID indexes a ComponentState within a ResolveState's arena.
// The zero value never denotes a real component (arenas are 1-indexed),
// so it doubles as "no component".
type ComponentStateID int

// visitState is the tri-value used only by the assembly stage (§4.8) to
// implement a cycle-tolerant topological walk without recursion.
type visitState uint8

const (
	notSeen visitState = iota
	visiting
	visited
)

// ComponentState is one candidate version of a module: at most one
// ComponentState exists per ModuleVersionIdentifier within a given
// ResolveState (§3 invariant).
type ComponentState struct {
	id ComponentStateID
	rs *ResolveState

	version ModuleVersionIdentifier
	module  ModuleResolveStateID

	nodes []NodeID

	isSelected   bool
	isSelectable bool // cleared by conflict resolution or replacement

	visit visitState

	// allResolvers are the SelectorStates that have chosen this version,
	// including ones that did so before it was deselected. Used by
	// tryCompatibleSelection (§4.4) to partition a module's selectors
	// into "chose this candidate" and "did not".
	allResolvers []SelectorID
}

// ID returns the arena index of this ComponentState.
func (c *ComponentState) ID() ComponentStateID { return c.id }

// Version is the ModuleVersionIdentifier this component represents.
func (c *ComponentState) Version() ModuleVersionIdentifier { return c.version }

// IsSelected reports whether this is currently the selected version for
// its module (§3 invariant: ComponentState.isSelected ⇔
// ModuleResolveState.selected == this).
func (c *ComponentState) IsSelected() bool { return c.isSelected }

// IsSelectable reports whether this candidate is still eligible for
// selection; conflict resolution and replacement can clear this.
func (c *ComponentState) IsSelectable() bool { return c.isSelectable }

// Nodes returns the configurations (variants) materialized for this
// component so far.
func (c *ComponentState) Nodes() []NodeID { return append([]NodeID(nil), c.nodes...) }

// nodeFor returns (creating if needed) the NodeID for the given
// configuration name within this component.
func (c *ComponentState) nodeFor(name string) NodeID {
	for _, nid := range c.nodes {
		if c.rs.node(nid).configuration == name {
			return nid
		}
	}
	nid := c.rs.newNode(c.id, name)
	c.nodes = append(c.nodes, nid)
	return nid
}

// performSelection implements §4.3. It is called with a candidate
// component proposed by an incoming edge.
//
// The candidate is registered with the ConflictHandler before the
// compatible-selection shortcut is even attempted, not just on the
// shortcut's failure: tryCompatibleSelection's Case A and Case B both
// select a version without ever consulting the handler, so a module
// whose first selection or two are resolved entirely through the
// shortcut would otherwise leave the handler unaware of them, and a
// later genuine conflict on the same module would then be resolved
// against an incomplete candidate set.
func (rs *ResolveState) performSelection(candidate ComponentStateID, selector SelectorID) {
	c := rs.component(candidate)
	if !c.isSelectable {
		return
	}
	c.allResolvers = appendUnique(c.allResolvers, selector)

	mid := c.module
	m := rs.module(mid)
	conflict := rs.conflictHandler.RegisterModule(m.Identifier(), c.version.Version)

	if rs.tryCompatibleSelection(candidate, selector) {
		return
	}

	if !conflict.ConflictExists() {
		m.selectVersion(candidate, false)
		return
	}

	conflict.WithParticipatingModules(func(participant ModuleIdentifier) {
		pm := rs.moduleByIdentifier(participant)
		if pm == nil || pm.selected == 0 {
			return
		}
		rs.deselectVersion(pm.selected)
	})
}

// tryCompatibleSelection implements §4.4, the shortcut that avoids full
// conflict resolution when the new candidate is trivially compatible with
// every selector currently attached to its module.
func (rs *ResolveState) tryCompatibleSelection(candidateID ComponentStateID, chosenBy SelectorID) bool {
	candidate := rs.component(candidateID)
	m := rs.module(candidate.module)
	mid := m.moduleID(rs)

	selectors := m.selectorIDs()

	if m.selected == 0 {
		// Case A: nothing selected yet, and the module takes no part in a
		// replacement relation.
		if rs.replacements != nil && rs.replacements.ParticipatesInReplacements(mid) {
			return false
		}
		if rs.allSelectorsAgreeWith(selectors, candidate.version.Version, func(SelectorID) bool { return true }) {
			m.selectVersion(candidateID, false)
			candidate.allResolvers = appendUnique(candidate.allResolvers, chosenBy)
			return true
		}
		return false
	}

	current := rs.component(m.selected)
	if current.id == candidateID {
		candidate.allResolvers = appendUnique(candidate.allResolvers, chosenBy)
		return true
	}

	// Case B: a different version is currently selected.
	chose := make(map[SelectorID]bool, len(candidate.allResolvers)+1)
	for _, sid := range candidate.allResolvers {
		chose[sid] = true
	}
	chose[chosenBy] = true

	if rs.allSelectorsAgreeWith(selectors, current.version.Version, func(id SelectorID) bool { return chose[id] }) {
		// The candidate is subsumed: every selector that chose it is also
		// happy with what's already selected. Leave selection unchanged.
		candidate.allResolvers = appendUnique(candidate.allResolvers, chosenBy)
		return true
	}

	if rs.allSelectorsAgreeWith(selectors, candidate.version.Version, func(id SelectorID) bool { return !chose[id] }) {
		rs.deselectVersion(m.selected)
		m.selectVersion(candidateID, true) // soft-select
		candidate.allResolvers = appendUnique(candidate.allResolvers, chosenBy)
		return true
	}

	return false
}

func appendUnique(ids []SelectorID, id SelectorID) []SelectorID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

// allSelectorsAgreeWith implements §4.4.1.
//
// It returns true iff at least one selector passing filter has a
// constraint that agrees with version, no selector passing filter
// disagrees, and selectors without a constraint are ignored entirely.
// Per the documented asymmetry (spec.md §9 Open Question, preserved for
// P5): if no selector passing filter carries a constraint at all, the
// result is false, not vacuously true.
func (rs *ResolveState) allSelectorsAgreeWith(selectors []SelectorID, version string, filter func(SelectorID) bool) bool {
	atLeastOneAgreed := false
	for _, sid := range selectors {
		if !filter(sid) {
			continue
		}
		s := rs.selector(sid)
		agrees, hasOpinion := s.agrees(version)
		if !hasOpinion {
			continue
		}
		if !agrees {
			return false
		}
		atLeastOneAgreed = true
	}
	return atLeastOneAgreed
}

// deselectVersion implements the deselect-version action referenced by
// §4.3: clear selected, mark the component non-selectable-for-now, and
// fully unwire every node it ever materialized, cascading selection
// flags through the graph in both directions. A component can already be
// attached to one or more consumers by the time it loses a conflict (the
// consumer that first requested it may have run its own traversal step
// long before the conflicting request arrived), so both the component's
// own outgoing edges (its dependencies) and its nodes' incoming edges
// (its consumers) have to be detached here, not just the former.
func (rs *ResolveState) deselectVersion(id ComponentStateID) {
	c := rs.component(id)
	if !c.isSelected {
		return
	}
	c.isSelected = false
	c.isSelectable = false

	m := rs.module(c.module)
	if m.selected == id {
		m.selected = 0
	}

	for _, nid := range c.nodes {
		rs.detachOutgoing(nid)
		rs.detachIncoming(nid)
	}
}
