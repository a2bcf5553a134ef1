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
	"testing"

	"github.com/modgraph/resolve/dep"
)

func TestPendingDependenciesHandlerDefersAndReleases(t *testing.T) {
	h := NewPendingDependenciesHandler()
	a := ModuleIdentifier{Group: "g", Name: "a"}
	b := ModuleIdentifier{Group: "g", Name: "b"}

	constraintOnly := RequirementVersion{Module: a, Type: dep.NewType(dep.ConstraintOnly)}
	hard := RequirementVersion{Module: b}
	activating := RequirementVersion{Module: a}

	got := h.filterPending(1, []RequirementVersion{constraintOnly, hard})
	if len(got) != 1 || got[0].req.Module != b || got[0].from != 1 {
		t.Fatalf("expected only the hard requirement on b (from node 1) to pass through, got %+v", got)
	}
	if h.IsActive(a) {
		t.Fatal("a should not be active yet, only deferred")
	}

	got = h.filterPending(2, []RequirementVersion{activating})
	if len(got) != 2 {
		t.Fatalf("expected the activating requirement plus the released deferred one, got %+v", got)
	}
	for _, pe := range got {
		if pe.req.Module != a {
			t.Fatalf("expected both released requirements to be on module a, got %+v", pe)
		}
	}
	// The released requirement must keep its true origin (node 1, where it
	// was originally declared and deferred), not be reattributed to node 2
	// (the node whose own requirement happened to activate the module).
	var sawOriginalOrigin, sawActivatingOrigin bool
	for _, pe := range got {
		switch pe.from {
		case 1:
			sawOriginalOrigin = true
		case 2:
			sawActivatingOrigin = true
		}
	}
	if !sawOriginalOrigin {
		t.Fatal("expected the released deferred requirement to keep its original origin node (1)")
	}
	if !sawActivatingOrigin {
		t.Fatal("expected the activating requirement's own origin node (2) to be present")
	}
	if !h.IsActive(a) {
		t.Fatal("a should be active after a non-constraint requirement on it")
	}
}
