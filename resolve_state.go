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
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/modgraph/resolve/dep"
)

// fetchResult caches the outcome of fetching one component's requirements,
// whether that happened during the parallel prefetch stage or serially
// during attachment.
type fetchResult struct {
	reqs []RequirementVersion
	err  error
	done bool
}

// ResolveState is the global registry for one call to Driver.Resolve: the
// arenas for every SelectorState, ComponentState, ModuleResolveState,
// NodeState and EdgeState, plus the ready queue of nodes to visit. It is
// not safe for concurrent use by multiple goroutines except where noted
// (the identifier cache and the per-component fetch-result cache, both of
// which are touched by the parallel metadata stage).
type ResolveState struct {
	components []*ComponentState // 1-indexed; components[0] is unused
	modules    []*ModuleResolveState
	nodes      []*NodeState
	edges      []*EdgeState
	selectors  []*SelectorState

	moduleIndex map[ModuleIdentifier]ModuleResolveStateID

	queue    []NodeID
	root     ComponentStateID
	rootNode NodeID

	versionSelector   VersionSelector
	conflictHandler   ConflictHandler
	pendingHandler    *PendingDependenciesHandler
	replacements      ModuleReplacementsData
	substitution      DependencySubstitutionApplicator
	selectorConverter ComponentSelectorConverter
	exclusions        ModuleExclusions
	attrFactory       ImmutableAttributesFactory

	idCache          *IdentifierCache
	idResolver       DependencyToComponentIdResolver
	metadataResolver ComponentMetaDataResolver
	executor         BuildOperationExecutor

	logger        hclog.Logger
	correlationID uuid.UUID

	fetchMu      sync.Mutex
	fetchResults map[ModuleVersionIdentifier]*fetchResult
}

func newResolveState(d *Driver) *ResolveState {
	rs := &ResolveState{
		moduleIndex:       make(map[ModuleIdentifier]ModuleResolveStateID),
		versionSelector:   d.VersionSelector,
		conflictHandler:   d.ConflictHandler,
		pendingHandler:    NewPendingDependenciesHandler(),
		replacements:      d.Replacements,
		substitution:      d.Substitution,
		selectorConverter: d.SelectorConverter,
		exclusions:        d.Exclusions,
		attrFactory:       d.AttrFactory,
		idCache:           d.IdentifierCache,
		idResolver:        d.IDResolver,
		metadataResolver:  d.MetadataResolver,
		executor:          d.Executor,
		logger:            d.Logger,
		correlationID:     uuid.New(),
		fetchResults:      make(map[ModuleVersionIdentifier]*fetchResult),
	}
	rs.components = append(rs.components, nil) // reserve index 0
	rs.modules = append(rs.modules, nil)
	rs.nodes = append(rs.nodes, nil)
	rs.edges = append(rs.edges, nil)
	rs.selectors = append(rs.selectors, nil)
	return rs
}

func (rs *ResolveState) component(id ComponentStateID) *ComponentState { return rs.components[id] }
func (rs *ResolveState) module(id ModuleResolveStateID) *ModuleResolveState {
	return rs.modules[id]
}
func (rs *ResolveState) node(id NodeID) *NodeState         { return rs.nodes[id] }
func (rs *ResolveState) edge(id EdgeID) *EdgeState         { return rs.edges[id] }
func (rs *ResolveState) selector(id SelectorID) *SelectorState { return rs.selectors[id] }

// moduleState returns (creating if needed) the ModuleResolveState for
// identifier.
func (rs *ResolveState) moduleState(identifier ModuleIdentifier) *ModuleResolveState {
	if id, ok := rs.moduleIndex[identifier]; ok {
		return rs.modules[id]
	}
	id := ModuleResolveStateID(len(rs.modules))
	m := &ModuleResolveState{id: id, rs: rs, identifier: identifier}
	rs.modules = append(rs.modules, m)
	rs.moduleIndex[identifier] = id
	return m
}

// moduleByIdentifier returns the ModuleResolveState for identifier if one
// has already been created, or nil otherwise. Unlike moduleState it never
// creates an entry, since it is used by the conflict handler callback to
// look up modules that may or may not have been visited yet.
func (rs *ResolveState) moduleByIdentifier(identifier ModuleIdentifier) *ModuleResolveState {
	if id, ok := rs.moduleIndex[identifier]; ok {
		return rs.modules[id]
	}
	return nil
}

func (rs *ResolveState) newComponent(module ModuleResolveStateID, version string) *ComponentState {
	id := ComponentStateID(len(rs.components))
	mid := rs.modules[module].identifier
	c := &ComponentState{
		id:           id,
		rs:           rs,
		version:      ModuleVersionIdentifier{ModuleIdentifier: mid, Version: version},
		module:       module,
		isSelectable: true,
	}
	rs.components = append(rs.components, c)
	return c
}

func (rs *ResolveState) newNode(owner ComponentStateID, configuration string) NodeID {
	id := NodeID(len(rs.nodes))
	n := &NodeState{id: id, rs: rs, owner: owner, configuration: configuration}
	rs.nodes = append(rs.nodes, n)
	return id
}

func (rs *ResolveState) newSelector(module ModuleIdentifier, constraint VersionConstraint, t dep.Type) *SelectorState {
	id := SelectorID(len(rs.selectors))
	s := &SelectorState{id: id, rs: rs, module: module, constraint: constraint, edgeType: t}
	rs.selectors = append(rs.selectors, s)
	rs.moduleState(module).addSelector(id)
	return s
}

func (rs *ResolveState) newEdge(from NodeID, req RequirementVersion, selector SelectorID) *EdgeState {
	id := EdgeID(len(rs.edges))
	e := &EdgeState{id: id, rs: rs, from: from, req: req, selector: selector}
	rs.edges = append(rs.edges, e)
	return e
}

func (rs *ResolveState) enqueue(n NodeID) { rs.queue = append(rs.queue, n) }

// popNode removes and returns the front of the ready queue, preserving
// the enumeration order guarantees of §5.
func (rs *ResolveState) popNode() (NodeID, bool) {
	if len(rs.queue) == 0 {
		return 0, false
	}
	n := rs.queue[0]
	rs.queue = rs.queue[1:]
	return n, true
}

// detachOutgoing implements the pruning cascade referenced by §4.3's
// deselect-version action: every edge this node has attached is detached
// from its target, and any target left with no remaining incoming edges
// is itself marked unselected and pruned recursively.
func (rs *ResolveState) detachOutgoing(nid NodeID) {
	n := rs.node(nid)
	for _, eid := range n.outgoing {
		e := rs.edge(eid)
		if !e.attached {
			continue
		}
		tgt := rs.node(e.targetNode)
		tgt.removeIncoming(eid)
		e.attached = false
		if len(tgt.incoming) == 0 && tgt.selected {
			tgt.markUnselected()
			rs.detachOutgoing(tgt.id)
		}
	}
	n.outgoing = nil
	n.edgesComputed = false
}

// detachIncoming undoes what attachEdge wired in for nid from the other
// direction: every edge still attached to nid is removed from its
// origin's outgoing list, and nid itself is marked unselected. Used when
// nid's owning component loses a conflict (or is superseded by a later
// selection) after having already been attached to one or more consumers
// in an earlier traversal step. Unlike detachOutgoing this never
// recurses: an edge's origin remains reachable from the root regardless
// of how many outgoing edges it still has.
func (rs *ResolveState) detachIncoming(nid NodeID) {
	n := rs.node(nid)
	for _, eid := range n.incoming {
		e := rs.edge(eid)
		if !e.attached {
			continue
		}
		origin := rs.node(e.from)
		origin.removeOutgoing(eid)
		e.attached = false
	}
	n.incoming = nil
	n.selected = false
}

func (rs *ResolveState) recordFetchResult(vk ModuleVersionIdentifier, reqs []RequirementVersion, err error) {
	rs.fetchMu.Lock()
	defer rs.fetchMu.Unlock()
	rs.fetchResults[vk] = &fetchResult{reqs: reqs, err: err, done: true}
}

// requirementsFor returns the cached requirements for vk if the parallel
// prefetch stage already fetched them, otherwise fetches them serially
// now (the §4.5 fallback below the parallelism threshold).
func (rs *ResolveState) requirementsFor(ctx context.Context, vk ModuleVersionIdentifier) ([]RequirementVersion, error) {
	rs.fetchMu.Lock()
	if r, ok := rs.fetchResults[vk]; ok && r.done {
		rs.fetchMu.Unlock()
		return r.reqs, r.err
	}
	rs.fetchMu.Unlock()

	reqs, err := rs.metadataResolver.Requirements(ctx, vk)
	rs.recordFetchResult(vk, reqs, err)
	return reqs, err
}
