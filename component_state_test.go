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
	"testing"

	"deps.dev/util/semver"

	"github.com/modgraph/resolve/dep"
	"github.com/modgraph/resolve/semverselector"
)

type stubIDResolver struct{}

func (stubIDResolver) ResolveComponentID(ctx context.Context, req RequirementVersion) (ModuleVersionIdentifier, ComponentIdentifier, error) {
	return ModuleVersionIdentifier{}, ComponentIdentifier{}, nil
}

type stubMetadataResolver struct{}

func (stubMetadataResolver) Requirements(ctx context.Context, id ModuleVersionIdentifier) ([]RequirementVersion, error) {
	return nil, nil
}

func (stubMetadataResolver) IsFetchingMetadataCheap(id ModuleVersionIdentifier) bool { return true }

func newTestResolveState(t *testing.T) *ResolveState {
	t.Helper()
	d := (&Driver{
		IDResolver:       stubIDResolver{},
		MetadataResolver: stubMetadataResolver{},
		VersionSelector:  semverselector.New(semver.Maven),
	}).withDefaults()
	return newResolveState(d)
}

// TestAllSelectorsAgreeWith exercises S6: two overlapping range selectors
// agree that 1.7 is acceptable, but replacing one of them with an
// unconstrained selector (no Preferred at all) makes the filtered set
// empty of opinions, and allSelectorsAgreeWith must report false rather
// than vacuously true (the documented asymmetry preserved for P5).
func TestAllSelectorsAgreeWith(t *testing.T) {
	rs := newTestResolveState(t)
	mod := ModuleIdentifier{Group: "g", Name: "a"}

	s1 := rs.newSelector(mod, VersionConstraint{Preferred: "[1.0,2.0)", PreferredCanShortcut: true}, dep.Type{})
	s2 := rs.newSelector(mod, VersionConstraint{Preferred: "[1.5,3.0)", PreferredCanShortcut: true}, dep.Type{})

	all := func(SelectorID) bool { return true }

	if !rs.allSelectorsAgreeWith([]SelectorID{s1.id, s2.id}, "1.7", all) {
		t.Fatal("expected both range selectors to agree that 1.7 is acceptable")
	}

	s3 := rs.newSelector(mod, VersionConstraint{}, dep.Type{}) // no Preferred: carries no opinion
	if rs.allSelectorsAgreeWith([]SelectorID{s1.id, s3.id}, "1.7", func(id SelectorID) bool { return id == s3.id }) {
		t.Fatal("expected false when the only selector passing the filter carries no constraint")
	}
}

// TestTryCompatibleSelectionCaseA exercises case A of §4.4: nothing
// selected yet, and the new candidate is acceptable to every registered
// selector, so the shortcut selects it without touching the conflict
// handler.
func TestTryCompatibleSelectionCaseA(t *testing.T) {
	rs := newTestResolveState(t)
	mod := ModuleIdentifier{Group: "g", Name: "a"}
	m := rs.moduleState(mod)

	s1 := rs.newSelector(mod, VersionConstraint{Preferred: "[1.0,2.0)", PreferredCanShortcut: true}, dep.Type{})

	candidate := m.componentFor("1.5")
	if !rs.tryCompatibleSelection(candidate.id, s1.id) {
		t.Fatal("expected tryCompatibleSelection to succeed for an acceptable first candidate")
	}
	if sel, ok := m.Selected(); !ok || sel != candidate.id {
		t.Fatalf("expected %v selected, got %v (ok=%v)", candidate.id, sel, ok)
	}
}
