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

// EdgeID indexes an EdgeState within a ResolveState's arena.
type EdgeID int

// RequirementVersion is the declared dependency a NodeState's metadata
// names: a module, a version selector string, and the dep.Type attributes
// of the edge it will produce.
type RequirementVersion struct {
	Module     ModuleIdentifier
	Constraint VersionConstraint
	Type       dep.Type
}

// EdgeState is a directed dependency from a NodeState (the origin) to the
// NodeState(s) within a target ComponentState, once resolved. Edges are
// immutable in their origin and declared constraint; only their target
// attachment is assigned later, during attachment (§4.6).
type EdgeState struct {
	id EdgeID
	rs *ResolveState

	from EdgeFromNode
	req  RequirementVersion

	selector SelectorID

	targetComponent ComponentStateID // zero until selection runs
	targetNode      NodeID           // zero until attachment runs
	attached        bool

	err error // unresolvable-selector / fetch failure, surfaced at attachment (§7)
}

// EdgeFromNode names the NodeState an edge originates from.
type EdgeFromNode = NodeID

// ID returns the arena index of this EdgeState.
func (e *EdgeState) ID() EdgeID { return e.id }

// From is the NodeState this edge originates from.
func (e *EdgeState) From() NodeID { return e.from }

// Requirement is the declared dependency that produced this edge.
func (e *EdgeState) Requirement() RequirementVersion { return e.req }

// Selector is the SelectorState this edge produced.
func (e *EdgeState) Selector() SelectorID { return e.selector }

// TargetComponent returns the ComponentState this edge resolved to, if
// selection has run and succeeded.
func (e *EdgeState) TargetComponent() (ComponentStateID, bool) {
	return e.targetComponent, e.targetComponent != 0
}

// TargetNode returns the NodeState this edge attached to, if attachment
// has run and succeeded.
func (e *EdgeState) TargetNode() (NodeID, bool) {
	if !e.attached {
		return 0, false
	}
	return e.targetNode, true
}

// Err returns the failure recorded against this edge, if any (§7 items 2
// and 3: an unresolvable selector, or a metadata fetch failure surfaced at
// attachment time).
func (e *EdgeState) Err() error { return e.err }
