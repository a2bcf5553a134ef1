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

	"github.com/hashicorp/go-hclog"
)

// Driver performs one resolution: given a ResolveContext, it walks the
// transitive dependency graph to a fixed point (every selector agreed with,
// every conflict resolved) and emits the result to a DependencyGraphVisitor
// in consumer-first order.
//
// A Driver is built once and may be reused across many calls to Resolve;
// each call constructs its own ResolveState, so Driver itself holds no
// per-resolution mutable state.
type Driver struct {
	// RootResolver turns the caller's ResolveContext into the root
	// component's identity and direct requirements. There is no default:
	// a Driver without one cannot resolve anything.
	RootResolver ResolveContextToComponentResolver

	// IDResolver turns a single edge's requirement into a concrete
	// component id. There is no default.
	IDResolver DependencyToComponentIdResolver

	// MetadataResolver fetches a resolved component's own requirements.
	// There is no default.
	MetadataResolver ComponentMetaDataResolver

	// VersionSelector interprets selector strings and orders versions.
	// Defaults to an exact-match, lexical-order selector if nil; callers
	// that want semver-aware ordering should supply semverselector.New()
	// explicitly.
	VersionSelector VersionSelector

	// ConflictHandler batches and resolves version conflicts across
	// modules. Defaults to NewDefaultConflictHandler(VersionSelector) if
	// nil.
	ConflictHandler ConflictHandler

	Replacements      ModuleReplacementsData
	Substitution      DependencySubstitutionApplicator
	SelectorConverter ComponentSelectorConverter
	Exclusions        ModuleExclusions
	AttrFactory       ImmutableAttributesFactory

	// IdentifierCache records every ModuleVersionIdentifier ->
	// ComponentIdentifier mapping the IDResolver returns. A cache supplied
	// here is shared by every Resolve call on this Driver; if nil, each
	// Resolve call uses its own fresh NewIdentifierCache(0) (unbounded).
	IdentifierCache *IdentifierCache

	// Executor runs the parallel metadata prefetch stage's operations.
	// Defaults to ErrgroupExecutor{} if nil.
	Executor BuildOperationExecutor

	// Logger receives structured diagnostic output. Defaults to
	// hclog.NewNullLogger() if nil.
	Logger hclog.Logger
}

func (d *Driver) withDefaults() *Driver {
	out := *d
	if out.VersionSelector == nil {
		out.VersionSelector = defaultVersionSelector{}
	}
	if out.ConflictHandler == nil {
		out.ConflictHandler = NewDefaultConflictHandler(out.VersionSelector)
	}
	if out.Replacements == nil {
		out.Replacements = NoopReplacements{}
	}
	if out.Substitution == nil {
		out.Substitution = IdentitySubstitution{}
	}
	if out.SelectorConverter == nil {
		out.SelectorConverter = PassthroughSelectorConverter{}
	}
	if out.AttrFactory == nil {
		out.AttrFactory = MapAttributesFactory{}
	}
	if out.IdentifierCache == nil {
		out.IdentifierCache = NewIdentifierCache(0)
	}
	if out.Executor == nil {
		out.Executor = ErrgroupExecutor{}
	}
	if out.Logger == nil {
		out.Logger = hclog.NewNullLogger()
	}
	return &out
}

// Resolve performs one resolution of rc, emitting the result to visitor.
// It returns a non-nil error only for the fatal failure of §7 item 1 (the
// root itself could not be resolved), for cancellation of ctx (checked
// between loop iterations and at the start of each edge-resolution
// phase), or for an error returned by the parallel fetch stage's
// executor; the
// per-edge failures of §7 items 2 and 3 are reported through visitor's
// VisitFailure instead, since resolution tolerates and continues past
// them.
func (d *Driver) Resolve(ctx context.Context, rc ResolveContext, visitor DependencyGraphVisitor) error {
	d = d.withDefaults()
	rs := newResolveState(d)
	rs.logger.Debug("starting resolve", "correlation_id", rs.correlationID)

	vk, reqs, err := d.RootResolver.ResolveRoot(ctx, rc)
	if err != nil {
		return &RootUnresolvableError{Context: rc, Err: err}
	}

	rootModule := rs.moduleState(vk.ModuleIdentifier)
	root := rootModule.componentFor(vk.Version)
	rs.root = root.id
	rootModule.selectVersion(root.id, false)
	rs.recordFetchResult(vk, reqs, nil)

	rf := NewRootForcingResolver()
	for _, req := range reqs {
		if req.Constraint.Preferred != "" {
			rf.Force(req.Module, req.Constraint.Preferred)
		}
	}
	rs.conflictHandler.RegisterResolver(rf)

	rootNodeID := root.nodeFor(rs.attrFactory.Concat(root.version.Name, nil))
	rs.rootNode = rootNodeID
	rootNode := rs.node(rootNodeID)
	rootNode.selected = true
	rs.enqueue(rootNodeID)

	if err := rs.drive(ctx); err != nil {
		return err
	}

	rs.assemble(visitor)
	return nil
}

// drive runs the main traversal loop of §4.1-§4.2: pop ready nodes,
// compute and resolve their outgoing edges, and whenever the queue
// empties, resolve one pending conflict and let any resulting
// deselect/reselect cascade refill the queue. It terminates once the
// queue is empty and no conflicts remain.
func (rs *ResolveState) drive(ctx context.Context) error {
	for {
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			nid, ok := rs.popNode()
			if !ok {
				break
			}
			edges := rs.computeOutgoingEdges(ctx, nid)
			if err := rs.resolveEdges(ctx, edges); err != nil {
				return err
			}
		}

		if !rs.conflictHandler.HasConflicts() {
			return nil
		}
		rs.conflictHandler.ResolveNextConflict(func(module ModuleIdentifier, version string) {
			rs.applyConflictResolution(ctx, module, version)
		})
	}
}

// applyConflictResolution re-selects the winning version of module after
// ResolveNextConflict picks it, then replays attachment across every
// edge that ever resolved against this module. Edges that targeted the
// winner all along (and hadn't yet been attached, because attachEdge's
// m.selected guard was blocking them until now) get wired in; edges
// that targeted a losing candidate stay untouched, since that guard
// still won't match for them. Re-enqueuing the winner's node(s) this way
// also covers the case where it was already attached in an earlier
// traversal step and only needs its outgoing edges (re)computed.
func (rs *ResolveState) applyConflictResolution(ctx context.Context, module ModuleIdentifier, version string) {
	m := rs.moduleByIdentifier(module)
	if m == nil {
		return
	}
	c := m.componentFor(version)
	c.isSelectable = true
	m.selectVersion(c.id, false)

	for _, eid := range m.edges {
		rs.attachEdge(ctx, eid)
	}
}

// defaultVersionSelector is used only when a Driver is built without an
// explicit VersionSelector; it treats selector strings as exact-match
// version literals and orders versions lexically. Real callers should
// supply semverselector.New() or their own ecosystem-specific selector.
type defaultVersionSelector struct{}

func (defaultVersionSelector) Accepts(selector, version string) bool { return selector == version }
func (defaultVersionSelector) Higher(a, b string) bool               { return a > b }
