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

	"deps.dev/util/semver"

	"github.com/modgraph/resolve/semverselector"
)

func TestDefaultConflictHandlerPicksHigherOnNoResolver(t *testing.T) {
	h := NewDefaultConflictHandler(semverselector.New(semver.DefaultSystem))
	mod := ModuleIdentifier{Group: "g", Name: "a"}

	if c := h.RegisterModule(mod, "1.0.0"); c.ConflictExists() {
		t.Fatal("single candidate should not conflict")
	}
	conflict := h.RegisterModule(mod, "2.0.0")
	if !conflict.ConflictExists() {
		t.Fatal("two distinct candidates should conflict")
	}
	if !h.HasConflicts() {
		t.Fatal("expected a pending conflict")
	}

	var winner string
	h.ResolveNextConflict(func(_ ModuleIdentifier, version string) { winner = version })
	if winner != "2.0.0" {
		t.Fatalf("expected the higher version to win, got %q", winner)
	}
	if h.HasConflicts() {
		t.Fatal("expected no conflicts left after resolving the only one")
	}
}

func TestRootForcingResolverOverridesHigherVersion(t *testing.T) {
	h := NewDefaultConflictHandler(semverselector.New(semver.DefaultSystem))
	rf := NewRootForcingResolver()
	mod := ModuleIdentifier{Group: "g", Name: "a"}
	rf.Force(mod, "1.0.0")
	h.RegisterResolver(rf)

	h.RegisterModule(mod, "1.0.0")
	h.RegisterModule(mod, "2.0.0")

	var winner string
	h.ResolveNextConflict(func(_ ModuleIdentifier, version string) { winner = version })
	if winner != "1.0.0" {
		t.Fatalf("expected the root-forced version to win over the higher one, got %q", winner)
	}
}
