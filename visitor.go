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

import (
	"fmt"
	"sort"
	"strings"
)

// DependencyGraphVisitor receives the resolved graph in the consumer-first,
// cycle-tolerant order produced by the assembly walk of §4.8: a component's
// edges are emitted only after every component that depends on it has
// already had its own edges emitted (modulo cycles, which are broken by
// emitting one representative of the cycle first). Builders that want the
// graph in dependency-first order should reverse the sequence of VisitEdge
// calls themselves; the core does not do this for them, since "reversed" is
// ambiguous in the presence of cycles.
type DependencyGraphVisitor interface {
	// Start is called once, before any other callback, with the root
	// ComponentState.
	Start(rs *ResolveState, root *ComponentState)
	// VisitSelector is called once per SelectorState created during the
	// resolve, in arena order. It is called after Start and before any
	// VisitNode/VisitEdge callback.
	VisitSelector(rs *ResolveState, s *SelectorState)
	// VisitNode is called once per selected NodeState, in an order where
	// every VisitNode call precedes every VisitEdge call (§4.8 step 3).
	VisitNode(rs *ResolveState, n *NodeState)
	// VisitEdge is called once per attached EdgeState, in consumer-first
	// order: for an acyclic pair (A -> B), every edge of A is emitted
	// before any edge of B.
	VisitEdge(rs *ResolveState, e *EdgeState)
	// VisitFailure is called once per non-fatal edge failure (§7 items
	// 2-3) whose origin node is still selected; failures on edges whose
	// origin was pruned from the graph are not reported.
	VisitFailure(rs *ResolveState, e *EdgeError)
	// Finish is called once, after every other callback.
	Finish(rs *ResolveState, root *ComponentState)
}

// Graph is the materialized result a GraphVisitor builds up: a plain,
// inspectable snapshot of the resolved dependency graph, useful for tests
// and for callers that just want the data rather than streaming
// callbacks.
type Graph struct {
	Root      ModuleVersionIdentifier
	Selectors []GraphSelector
	Nodes     []GraphNode
	Edges     []GraphEdge
	ResolutionErrors
}

// GraphSelector is one visited SelectorState, flattened to the fields a
// caller cares about.
type GraphSelector struct {
	Module     ModuleIdentifier
	Constraint VersionConstraint
	Resolved   ModuleVersionIdentifier // zero value if never resolved
}

// GraphNode is one visited NodeState, flattened to the fields a caller
// cares about.
type GraphNode struct {
	ID            NodeID
	Component     ModuleVersionIdentifier
	Configuration string
}

// GraphEdge is one visited, attached EdgeState.
type GraphEdge struct {
	From NodeID
	To   NodeID
	Type string
}

func (g *Graph) String() string {
	byID := make(map[NodeID]GraphNode, len(g.Nodes))
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}

	lines := make([]string, 0, len(g.Edges))
	for _, e := range g.Edges {
		from := byID[e.From]
		to := byID[e.To]
		lines = append(lines, fmt.Sprintf("%s -> %s", from.Component, to.Component))
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// GraphVisitor is the default DependencyGraphVisitor: it simply
// accumulates every visited node, edge and failure into a Graph. Most
// callers can use this directly; a build tool with its own in-memory
// graph representation would implement DependencyGraphVisitor itself
// instead.
type GraphVisitor struct {
	Graph Graph
}

// NewGraphVisitor creates an empty GraphVisitor.
func NewGraphVisitor() *GraphVisitor { return &GraphVisitor{} }

// Start implements DependencyGraphVisitor.
func (v *GraphVisitor) Start(rs *ResolveState, root *ComponentState) {
	v.Graph.Root = root.Version()
}

// VisitSelector implements DependencyGraphVisitor.
func (v *GraphVisitor) VisitSelector(rs *ResolveState, s *SelectorState) {
	gs := GraphSelector{Module: s.Module(), Constraint: s.Constraint()}
	if cid, ok := s.Resolved(); ok {
		gs.Resolved = rs.component(cid).Version()
	}
	v.Graph.Selectors = append(v.Graph.Selectors, gs)
}

// Finish implements DependencyGraphVisitor.
func (v *GraphVisitor) Finish(rs *ResolveState, root *ComponentState) {}

// VisitNode implements DependencyGraphVisitor.
func (v *GraphVisitor) VisitNode(rs *ResolveState, n *NodeState) {
	v.Graph.Nodes = append(v.Graph.Nodes, GraphNode{
		ID:            n.id,
		Component:     rs.component(n.owner).version,
		Configuration: n.configuration,
	})
}

// VisitEdge implements DependencyGraphVisitor.
func (v *GraphVisitor) VisitEdge(rs *ResolveState, e *EdgeState) {
	v.Graph.Edges = append(v.Graph.Edges, GraphEdge{
		From: e.from,
		To:   e.targetNode,
		Type: e.req.Type.String(),
	})
}

// VisitFailure implements DependencyGraphVisitor.
func (v *GraphVisitor) VisitFailure(rs *ResolveState, e *EdgeError) {
	v.Graph.add(e)
}
