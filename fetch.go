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

	"github.com/modgraph/resolve/dep"
	"golang.org/x/sync/errgroup"
)

// ErrgroupExecutor is the default BuildOperationExecutor, backed by
// golang.org/x/sync/errgroup. It runs every operation in its own
// goroutine and blocks until the whole batch completes (or the context is
// cancelled), matching the barrier semantics required by §4.5.
type ErrgroupExecutor struct {
	// MaxConcurrency bounds the number of operations run at once. Zero
	// means unbounded.
	MaxConcurrency int
}

// RunAll implements BuildOperationExecutor.
func (e ErrgroupExecutor) RunAll(ctx context.Context, ops []func(ctx context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if e.MaxConcurrency > 0 {
		g.SetLimit(e.MaxConcurrency)
	}
	for _, op := range ops {
		op := op
		g.Go(func() error { return op(gctx) })
	}
	return g.Wait()
}

// fetchableEdge names an edge whose target component metadata is worth
// prefetching in parallel, per the three conditions of §4.5.
type fetchableEdge struct {
	edge EdgeID
	vk   ModuleVersionIdentifier
}

// collectPrefetchable scans edges for components whose metadata is not
// already cheap to fetch, is selected, and is not marked fast-resolve
// (§4.5 conditions a-c).
func (rs *ResolveState) collectPrefetchable(edges []EdgeID) []fetchableEdge {
	var out []fetchableEdge
	seen := make(map[ModuleVersionIdentifier]bool)
	for _, eid := range edges {
		e := rs.edge(eid)
		cid, ok := e.TargetComponent()
		if !ok {
			continue
		}
		c := rs.component(cid)
		if !c.isSelected {
			continue
		}
		if e.req.Type.HasAttr(dep.FastResolve) {
			continue
		}
		vk := c.version
		if rs.metadataResolver.IsFetchingMetadataCheap(vk) {
			continue
		}
		if seen[vk] {
			continue
		}
		seen[vk] = true
		out = append(out, fetchableEdge{edge: eid, vk: vk})
	}
	return out
}

// prefetch implements §4.5's policy: fetch in parallel only when two or
// more qualifying edges exist (P7); below the threshold, metadata is
// fetched serially when the edge is attached. Failures are captured on
// the ResolveState's fetch-result cache and surfaced later at attachment
// (§4.5, §7 item 3) — the stage itself never aborts the traversal.
func (rs *ResolveState) prefetch(ctx context.Context, edges []EdgeID) error {
	candidates := rs.collectPrefetchable(edges)
	if len(candidates) < 2 {
		return nil
	}

	rs.logger.Debug("prefetching component metadata", "batch_size", len(candidates))

	ops := make([]func(context.Context) error, len(candidates))
	for i, c := range candidates {
		c := c
		ops[i] = func(ctx context.Context) error {
			reqs, err := rs.metadataResolver.Requirements(ctx, c.vk)
			rs.recordFetchResult(c.vk, reqs, err)
			return nil // per-operation failures are captured, not propagated
		}
	}

	return rs.executor.RunAll(ctx, ops)
}
