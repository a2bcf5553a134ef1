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

import "context"

// computeOutgoingEdges implements the node-side half of §4.2's per-node
// step: fetch this node's own declared requirements (reusing a prefetched
// result if the parallel stage already fetched them for us), run them
// through substitution, exclusion and the PendingDependenciesHandler, and
// materialize a SelectorState/EdgeState pair for each one that survives.
//
// A failure fetching this node's own metadata is not one of the three
// failure kinds §7 attaches to an edge (those all concern the *target* of
// an edge, not the node whose edges are being computed); it is logged and
// treated as "no further dependencies", leaving the node itself resolved
// but childless rather than aborting the whole traversal.
func (rs *ResolveState) computeOutgoingEdges(ctx context.Context, nid NodeID) []EdgeID {
	n := rs.node(nid)
	if n.edgesComputed {
		return n.outgoing
	}
	n.edgesComputed = true

	c := rs.component(n.owner)
	reqs, err := rs.requirementsFor(ctx, c.version)
	if err != nil {
		rs.logger.Warn("failed fetching metadata for node's own requirements", "component", c.version.String(), "error", err)
		return nil
	}

	filtered := rs.pendingHandler.filterPending(nid, reqs)

	var edges []EdgeID
	for _, pe := range filtered {
		origin := rs.node(pe.from)
		req := pe.req

		if rs.exclusions != nil {
			incoming := EdgeID(0)
			if len(origin.incoming) > 0 {
				incoming = origin.incoming[0]
			}
			if rs.exclusions.Excludes(incoming, req.Module) {
				continue
			}
		}

		req = rs.substitution.Substitute(req)
		req = rs.selectorConverter.Convert(req)

		sel := rs.newSelector(req.Module, req.Constraint, req.Type)
		e := rs.newEdge(pe.from, req, sel.id)
		edges = append(edges, e.id)
	}
	return edges
}

// resolveEdges drives the three-phase barrier of §4.1 steps 4-6 / §4.5 for
// one node's freshly computed outgoing edges: select a target component
// for each edge serially, prefetch metadata for the selected targets in
// parallel where the batch is large enough (§4.5, P7), then attach each
// edge to a NodeState serially, in edge order (preserving the enumeration
// guarantees of §5).
func (rs *ResolveState) resolveEdges(ctx context.Context, edges []EdgeID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, eid := range edges {
		rs.selectEdge(ctx, eid)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := rs.prefetch(ctx, edges); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	for _, eid := range edges {
		rs.attachEdge(ctx, eid)
	}
	return nil
}

// selectEdge implements the selection phase for a single edge: resolve its
// selector to a concrete component (§7 item 2 records a failure here) and,
// if that succeeds, run §4.3 performSelection against it.
func (rs *ResolveState) selectEdge(ctx context.Context, eid EdgeID) {
	e := rs.edge(eid)

	vk, cid, err := rs.idResolver.ResolveComponentID(ctx, e.req)
	if err != nil {
		e.err = err
		return
	}
	rs.idCache.PutIfAbsent(vk, cid)

	m := rs.moduleState(vk.ModuleIdentifier)
	candidate := m.componentFor(vk.Version)
	e.targetComponent = candidate.id
	m.addEdge(e.id)

	rs.performSelection(candidate.id, e.selector)
	rs.selector(e.selector).setResolved(candidate.id)
}

// attachEdge implements §4.6: wire a selected, still-selectable target
// component into the graph as a NodeState reachable from e, unless the
// edge already carries an error, its target lost the conflict, its
// module's conflict (if any) hasn't resolved onto this candidate, or
// fetching the target's own requirements now fails (§7 item 3).
//
// attachEdge can run more than once for the same edge: once during its
// own resolveEdges batch, and again from applyConflictResolution's
// replay once the edge's module settles a conflict. The m.selected
// check below is what makes the first of those calls a no-op whenever
// the module's conflict is still open (or already settled on a
// different candidate), so an edge is never wired to anything but its
// module's actual, final winner.
func (rs *ResolveState) attachEdge(ctx context.Context, eid EdgeID) {
	e := rs.edge(eid)
	if e.err != nil || e.attached {
		return
	}
	cid, ok := e.TargetComponent()
	if !ok {
		return
	}
	c := rs.component(cid)
	if !c.isSelectable {
		return
	}
	if m := rs.module(c.module); m.selected != cid {
		return
	}

	if _, err := rs.requirementsFor(ctx, c.version); err != nil {
		e.err = err
		return
	}

	configuration := rs.attrFactory.Concat(c.version.Name, nil)
	targetNodeID := c.nodeFor(configuration)
	targetNode := rs.node(targetNodeID)

	targetNode.addIncoming(eid)
	e.targetNode = targetNodeID
	e.attached = true

	from := rs.node(e.from)
	from.outgoing = append(from.outgoing, eid)

	targetNode.markSelected(rs)
}
