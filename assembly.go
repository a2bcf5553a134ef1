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

// assemble implements §4.8: start/finish bookends, a full pass over every
// SelectorState, a full pass over every selected NodeState (nodes strictly
// before edges), and a non-recursive, cycle-tolerant topological walk over
// components that emits each component's edges only once every component
// that depends on it has already had its own edges emitted.
func (rs *ResolveState) assemble(visitor DependencyGraphVisitor) {
	root := rs.component(rs.root)
	visitor.Start(rs, root)

	for _, s := range rs.selectors {
		if s == nil {
			continue
		}
		visitor.VisitSelector(rs, s)
	}

	for _, n := range rs.nodes {
		if n == nil || !n.selected {
			continue
		}
		visitor.VisitNode(rs, n)
	}

	rs.walkComponents(visitor)

	for _, e := range rs.edges {
		if e == nil || e.err == nil {
			continue
		}
		origin := rs.node(e.from)
		if !origin.selected {
			continue // origin was pruned out of the final graph entirely
		}
		visitor.VisitFailure(rs, &EdgeError{
			Edge:     e.id,
			Module:   e.req.Module,
			Kind:     classifyEdgeFailure(e),
			Optional: e.req.Type.IsOptional(),
			Err:      e.err,
		})
	}

	visitor.Finish(rs, root)
}

// walkComponents drives the consumer-first topological walk of §4.8 step 5.
//
// The work list is seeded with every module's selected component. Popping
// its front element: if the component is already Visited (a duplicate
// inserted by an earlier step), it is simply dropped. If it is Visiting, a
// cycle has closed without an unvisited consumer remaining, so it is
// finalized immediately (the cycle-break rule). Otherwise its selected
// nodes' incoming edges are scanned; every NotSeen originating component is
// inserted directly before the current element (duplicating it if it is
// already elsewhere in the list — the later, stale copy is dropped when
// reached). Only once no NotSeen predecessor remains (pos == 0) is the
// component finalized: marked Visited, removed, and its selected nodes'
// outgoing edges emitted via VisitEdge.
//
// This never recurses; the work list itself carries all pending state, so
// arbitrarily deep or cyclic graphs are walked in a fixed amount of Go
// stack.
func (rs *ResolveState) walkComponents(visitor DependencyGraphVisitor) {
	var work []ComponentStateID
	for _, m := range rs.modules {
		if m == nil || m.selected == 0 {
			continue
		}
		work = append(work, m.selected)
	}

	finalize := func(c *ComponentState) {
		c.visit = visited
		for _, nid := range c.nodes {
			n := rs.node(nid)
			if !n.selected {
				continue
			}
			for _, eid := range n.outgoing {
				e := rs.edge(eid)
				if !e.attached {
					continue
				}
				visitor.VisitEdge(rs, e)
			}
		}
	}

	i := 0
	for i < len(work) {
		cid := work[i]
		c := rs.component(cid)

		switch c.visit {
		case visited:
			work = append(work[:i], work[i+1:]...)
			continue
		case visiting:
			finalize(c)
			work = append(work[:i], work[i+1:]...)
			continue
		}

		c.visit = visiting
		pos := 0
		for _, nid := range c.nodes {
			n := rs.node(nid)
			if !n.selected {
				continue
			}
			for _, eid := range n.incoming {
				e := rs.edge(eid)
				if !e.attached {
					continue
				}
				origin := rs.component(rs.node(e.from).owner)
				if origin.visit != notSeen {
					continue
				}
				insertAt := i + pos
				work = append(work, 0)
				copy(work[insertAt+1:], work[insertAt:])
				work[insertAt] = origin.id
				pos++
			}
		}

		if pos == 0 {
			finalize(c)
			work = append(work[:i], work[i+1:]...)
			continue
		}
		// The pos predecessors just inserted occupy [i, i+pos); process
		// them before revisiting c, so leave i where it is.
	}
}

// classifyEdgeFailure distinguishes the two non-fatal edge failure kinds
// of §7 by whether selection ever assigned a target component before the
// error was recorded.
func classifyEdgeFailure(e *EdgeState) EdgeFailureKind {
	if _, ok := e.TargetComponent(); !ok {
		return UnresolvableSelector
	}
	return MetadataFetchFailure
}
