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
	"fmt"
	"testing"

	"github.com/modgraph/resolve/dep"
)

type countingExecutor struct {
	batches []int
}

func (e *countingExecutor) RunAll(ctx context.Context, ops []func(ctx context.Context) error) error {
	e.batches = append(e.batches, len(ops))
	for _, op := range ops {
		if err := op(ctx); err != nil {
			return err
		}
	}
	return nil
}

type notCheapMetadataResolver struct{ calls int }

func (r *notCheapMetadataResolver) Requirements(ctx context.Context, id ModuleVersionIdentifier) ([]RequirementVersion, error) {
	r.calls++
	return nil, nil
}

func (*notCheapMetadataResolver) IsFetchingMetadataCheap(id ModuleVersionIdentifier) bool {
	return false
}

// buildPrefetchEdges creates n selected, already-selected-component edges
// from a common origin node, each on a distinct module so
// collectPrefetchable treats them as distinct prefetch candidates.
func buildPrefetchEdges(t *testing.T, rs *ResolveState, n int) []EdgeID {
	t.Helper()
	from := rs.newNode(0, "root")
	edges := make([]EdgeID, 0, n)
	for i := 0; i < n; i++ {
		mod := ModuleIdentifier{Group: "g", Name: fmt.Sprintf("m%d", i)}
		m := rs.moduleState(mod)
		c := m.componentFor("1.0")
		c.isSelected = true
		sel := rs.newSelector(mod, VersionConstraint{}, dep.Type{})
		e := rs.newEdge(from, RequirementVersion{Module: mod}, sel.id)
		e.targetComponent = c.id
		edges = append(edges, e.id)
	}
	return edges
}

// TestPrefetchAboveThreshold exercises S4/P7: ten edges whose components
// require non-cheap metadata fetches are dispatched as a single parallel
// batch of ten operations.
func TestPrefetchAboveThreshold(t *testing.T) {
	resolver := &notCheapMetadataResolver{}
	exec := &countingExecutor{}
	rs := newTestResolveState(t)
	rs.metadataResolver = resolver
	rs.executor = exec

	edges := buildPrefetchEdges(t, rs, 10)
	if err := rs.prefetch(context.Background(), edges); err != nil {
		t.Fatalf("prefetch: %v", err)
	}
	if len(exec.batches) != 1 || exec.batches[0] != 10 {
		t.Fatalf("expected a single batch of 10, got %v", exec.batches)
	}
	if resolver.calls != 10 {
		t.Fatalf("expected 10 Requirements calls, got %d", resolver.calls)
	}
}

// TestPrefetchBelowThreshold exercises S5/P7: a single qualifying edge
// never triggers the parallel stage.
func TestPrefetchBelowThreshold(t *testing.T) {
	resolver := &notCheapMetadataResolver{}
	exec := &countingExecutor{}
	rs := newTestResolveState(t)
	rs.metadataResolver = resolver
	rs.executor = exec

	edges := buildPrefetchEdges(t, rs, 1)
	if err := rs.prefetch(context.Background(), edges); err != nil {
		t.Fatalf("prefetch: %v", err)
	}
	if len(exec.batches) != 0 {
		t.Fatalf("expected no parallel batch below the threshold, got %v", exec.batches)
	}
	if resolver.calls != 0 {
		t.Fatalf("prefetch itself should never fetch serially, got %d calls", resolver.calls)
	}
}
