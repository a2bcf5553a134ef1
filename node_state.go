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

// NodeID indexes a NodeState within a ResolveState's arena.
type NodeID int

// NodeState is one configuration (variant) of a ComponentState: the
// vertex unit of the resolved graph.
type NodeState struct {
	id NodeID
	rs *ResolveState

	owner         ComponentStateID
	configuration string

	incoming []EdgeID
	outgoing []EdgeID

	selected bool
	visit    visitState

	// edgesComputed guards against recomputing outgoing edges for a node
	// that is popped again while its edges are still in place.
	// detachOutgoing clears it, so a node re-enqueued after a
	// deselect/reselect cycle computes its edges afresh.
	edgesComputed bool
}

// ID returns the arena index of this NodeState.
func (n *NodeState) ID() NodeID { return n.id }

// Owner is the ComponentState this configuration belongs to.
func (n *NodeState) Owner() ComponentStateID { return n.owner }

// Configuration names this variant (e.g. "compile", "runtime", or "" for
// an ecosystem with a single implicit configuration).
func (n *NodeState) Configuration() string { return n.configuration }

// Incoming returns the edges that target this node.
func (n *NodeState) Incoming() []EdgeID { return append([]EdgeID(nil), n.incoming...) }

// Outgoing returns the edges this node has materialized so far.
func (n *NodeState) Outgoing() []EdgeID { return append([]EdgeID(nil), n.outgoing...) }

// Selected reports whether this configuration is reachable from the root
// under the current selections.
func (n *NodeState) Selected() bool { return n.selected }

func (n *NodeState) addIncoming(e EdgeID) { n.incoming = append(n.incoming, e) }

func (n *NodeState) removeIncoming(e EdgeID) {
	for i, existing := range n.incoming {
		if existing == e {
			n.incoming = append(n.incoming[:i], n.incoming[i+1:]...)
			return
		}
	}
}

func (n *NodeState) removeOutgoing(e EdgeID) {
	for i, existing := range n.outgoing {
		if existing == e {
			n.outgoing = append(n.outgoing[:i], n.outgoing[i+1:]...)
			return
		}
	}
}

func (n *NodeState) markSelected(rs *ResolveState) {
	if n.selected {
		return
	}
	n.selected = true
	rs.enqueue(n.id)
}

// markUnselected clears the reachability flag on this node. It does not
// recurse; the recursive pruning cascade lives in detachOutgoing, which
// calls this once it determines a target node has lost all incoming
// reachability.
func (n *NodeState) markUnselected() { n.selected = false }
