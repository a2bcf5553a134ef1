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

package resolve_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	resolve "github.com/modgraph/resolve"
	"github.com/modgraph/resolve/dep"
	"github.com/modgraph/resolve/memclient"
)

func mvi(name, version string) resolve.ModuleVersionIdentifier {
	return resolve.ModuleVersionIdentifier{
		ModuleIdentifier: resolve.ModuleIdentifier{Group: "g", Name: name},
		Version:          version,
	}
}

func req(name, version string) resolve.RequirementVersion {
	return resolve.RequirementVersion{
		Module:     resolve.ModuleIdentifier{Group: "g", Name: name},
		Constraint: resolve.VersionConstraint{Preferred: version, PreferredCanShortcut: true},
	}
}

// TestResolveLinearChain exercises S1: root -> a:1.0 -> b:1.0.
func TestResolveLinearChain(t *testing.T) {
	client := memclient.New(exactMatchSelector{})
	client.AddVersion(mvi("a", "1.0"), []resolve.RequirementVersion{req("b", "1.0")})
	client.AddVersion(mvi("b", "1.0"), nil)

	d := &resolve.Driver{
		RootResolver:     memclient.RootResolver{Root: mvi("root", "1.0"), Requirements: []resolve.RequirementVersion{req("a", "1.0")}},
		IDResolver:       client,
		MetadataResolver: client,
		VersionSelector:  exactMatchSelector{},
	}

	v := resolve.NewGraphVisitor()
	if err := d.Resolve(context.Background(), nil, v); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v.Graph.HasErrors() {
		t.Fatalf("unexpected resolution errors: %v", v.Graph.Errors)
	}
	if len(v.Graph.Nodes) != 3 {
		t.Fatalf("expected 3 nodes (root, a, b), got %d: %+v", len(v.Graph.Nodes), v.Graph.Nodes)
	}
	if len(v.Graph.Edges) != 2 {
		t.Fatalf("expected 2 edges, got %d: %+v", len(v.Graph.Edges), v.Graph.Edges)
	}
}

// TestResolveConflictPicksForcedRootVersion exercises S2: root requests
// both a:1.0 and a:2.0 directly; only a:2.0 should end up selected and
// reachable.
func TestResolveConflictPicksForcedRootVersion(t *testing.T) {
	client := memclient.New(exactMatchSelector{})
	client.AddVersion(mvi("a", "1.0"), nil)
	client.AddVersion(mvi("a", "2.0"), nil)

	d := &resolve.Driver{
		RootResolver: memclient.RootResolver{
			Root:         mvi("root", "1.0"),
			Requirements: []resolve.RequirementVersion{req("a", "1.0"), req("a", "2.0")},
		},
		IDResolver:       client,
		MetadataResolver: client,
		VersionSelector:  exactMatchSelector{},
	}

	v := resolve.NewGraphVisitor()
	if err := d.Resolve(context.Background(), nil, v); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	var selected []string
	for _, n := range v.Graph.Nodes {
		if n.Component.ModuleIdentifier.Name == "a" {
			selected = append(selected, n.Component.Version)
		}
	}
	if diff := cmp.Diff([]string{"2.0"}, selected); diff != "" {
		t.Fatalf("unexpected selected versions of a (-want +got):\n%s", diff)
	}
}

// TestResolveDiamondConflictExcludesLoser exercises a cross-node conflict:
// root -> p -> a:2.0 and root -> q -> a:1.0. Unlike
// TestResolveConflictPicksForcedRootVersion (where both requests on the
// same module come from the root's own selectors and the conflict is
// settled before either version is ever attached to anything), p and q
// reach a from two different nodes in two different traversal batches, so
// a:1.0 can already be wired into the graph as q's dependency by the time
// the conflict against a:2.0 is detected. Only a:2.0 may end up selected,
// and no edge may target a:1.0.
func TestResolveDiamondConflictExcludesLoser(t *testing.T) {
	client := memclient.New(exactMatchSelector{})
	client.AddVersion(mvi("p", "1.0"), []resolve.RequirementVersion{req("a", "2.0")})
	client.AddVersion(mvi("q", "1.0"), []resolve.RequirementVersion{req("a", "1.0")})
	client.AddVersion(mvi("a", "1.0"), nil)
	client.AddVersion(mvi("a", "2.0"), nil)

	d := &resolve.Driver{
		RootResolver: memclient.RootResolver{
			Root:         mvi("root", "1.0"),
			Requirements: []resolve.RequirementVersion{req("p", "1.0"), req("q", "1.0")},
		},
		IDResolver:       client,
		MetadataResolver: client,
		VersionSelector:  exactMatchSelector{},
	}

	v := resolve.NewGraphVisitor()
	if err := d.Resolve(context.Background(), nil, v); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	var aVersions []string
	for _, n := range v.Graph.Nodes {
		if n.Component.ModuleIdentifier.Name == "a" {
			aVersions = append(aVersions, n.Component.Version)
		}
	}
	if diff := cmp.Diff([]string{"2.0"}, aVersions); diff != "" {
		t.Fatalf("unexpected selected versions of a (-want +got):\n%s", diff)
	}

	byID := make(map[resolve.NodeID]resolve.GraphNode, len(v.Graph.Nodes))
	for _, n := range v.Graph.Nodes {
		byID[n.ID] = n
	}
	for _, e := range v.Graph.Edges {
		if byID[e.To].Component.ModuleIdentifier.Name == "a" && byID[e.To].Component.Version != "2.0" {
			t.Fatalf("edge %+v targets the losing version of a", e)
		}
	}
}

// TestResolveToleratesCycle exercises S3: root -> c -> d -> c. Each of c
// and d must be visited exactly once, with no infinite loop.
func TestResolveToleratesCycle(t *testing.T) {
	client := memclient.New(exactMatchSelector{})
	client.AddVersion(mvi("c", "1.0"), []resolve.RequirementVersion{req("d", "1.0")})
	client.AddVersion(mvi("d", "1.0"), []resolve.RequirementVersion{req("c", "1.0")})

	d := &resolve.Driver{
		RootResolver:     memclient.RootResolver{Root: mvi("root", "1.0"), Requirements: []resolve.RequirementVersion{req("c", "1.0")}},
		IDResolver:       client,
		MetadataResolver: client,
		VersionSelector:  exactMatchSelector{},
	}

	v := resolve.NewGraphVisitor()
	if err := d.Resolve(context.Background(), nil, v); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(v.Graph.Nodes) != 3 {
		t.Fatalf("expected exactly 3 nodes (root, c, d) visited once each, got %d: %+v", len(v.Graph.Nodes), v.Graph.Nodes)
	}
	if len(v.Graph.Edges) != 3 {
		t.Fatalf("expected exactly 3 edges (root->c, c->d, d->c), got %d: %+v", len(v.Graph.Edges), v.Graph.Edges)
	}
}

// TestResolveConsumerFirstOrdering exercises P3 directly: root -> a, root ->
// c, a -> b, b -> d, c -> d. Every edge of root must be emitted before any
// edge of a or c (its dependencies), and every edge of a before any edge
// of b.
func TestResolveConsumerFirstOrdering(t *testing.T) {
	client := memclient.New(exactMatchSelector{})
	client.AddVersion(mvi("a", "1.0"), []resolve.RequirementVersion{req("b", "1.0")})
	client.AddVersion(mvi("b", "1.0"), []resolve.RequirementVersion{req("d", "1.0")})
	client.AddVersion(mvi("c", "1.0"), []resolve.RequirementVersion{req("d", "1.0")})
	client.AddVersion(mvi("d", "1.0"), nil)

	d := &resolve.Driver{
		RootResolver: memclient.RootResolver{
			Root:         mvi("root", "1.0"),
			Requirements: []resolve.RequirementVersion{req("a", "1.0"), req("c", "1.0")},
		},
		IDResolver:       client,
		MetadataResolver: client,
		VersionSelector:  exactMatchSelector{},
	}

	v := resolve.NewGraphVisitor()
	if err := d.Resolve(context.Background(), nil, v); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	byID := make(map[resolve.NodeID]resolve.GraphNode, len(v.Graph.Nodes))
	for _, n := range v.Graph.Nodes {
		byID[n.ID] = n
	}
	nameOf := func(id resolve.NodeID) string { return byID[id].Component.Name }

	posOf := func(name string) int {
		for i, e := range v.Graph.Edges {
			if nameOf(e.From) == name {
				return i
			}
		}
		t.Fatalf("no edge found originating from %s", name)
		return -1
	}
	lastPosOf := func(name string) int {
		last := -1
		for i, e := range v.Graph.Edges {
			if nameOf(e.From) == name {
				last = i
			}
		}
		return last
	}

	if lastPosOf("root") >= posOf("a") {
		t.Fatalf("expected all of root's edges before a's first edge; edges: %+v", v.Graph.Edges)
	}
	if lastPosOf("root") >= posOf("c") {
		t.Fatalf("expected all of root's edges before c's first edge; edges: %+v", v.Graph.Edges)
	}
	if lastPosOf("a") >= posOf("b") {
		t.Fatalf("expected a's edge before b's edges; edges: %+v", v.Graph.Edges)
	}
}

// TestResolvePendingDependencyReleaseKeepsOriginalOrigin exercises §4.9: a
// constraint-only edge declared by one node (a) must still be reported as
// originating from a, not from whichever other node (c) happens to carry
// the hard requirement that activates the shared module (d).
func TestResolvePendingDependencyReleaseKeepsOriginalOrigin(t *testing.T) {
	client := memclient.New(exactMatchSelector{})
	client.AddVersion(mvi("a", "1.0"), []resolve.RequirementVersion{
		{
			Module:     resolve.ModuleIdentifier{Group: "g", Name: "d"},
			Constraint: resolve.VersionConstraint{Preferred: "1.0", PreferredCanShortcut: true},
			Type:       dep.NewType(dep.ConstraintOnly),
		},
	})
	client.AddVersion(mvi("c", "1.0"), []resolve.RequirementVersion{req("d", "1.0")})
	client.AddVersion(mvi("d", "1.0"), nil)

	d := &resolve.Driver{
		RootResolver: memclient.RootResolver{
			Root:         mvi("root", "1.0"),
			Requirements: []resolve.RequirementVersion{req("a", "1.0"), req("c", "1.0")},
		},
		IDResolver:       client,
		MetadataResolver: client,
		VersionSelector:  exactMatchSelector{},
	}

	v := resolve.NewGraphVisitor()
	if err := d.Resolve(context.Background(), nil, v); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	byID := make(map[resolve.NodeID]resolve.GraphNode, len(v.Graph.Nodes))
	for _, n := range v.Graph.Nodes {
		byID[n.ID] = n
	}

	var sawAToD bool
	for _, e := range v.Graph.Edges {
		if byID[e.From].Component.Name == "a" && byID[e.To].Component.Name == "d" {
			sawAToD = true
		}
	}
	if !sawAToD {
		t.Fatalf("expected the released constraint-only edge to still originate from a's node; edges: %+v", v.Graph.Edges)
	}
}

// exactMatchSelector is the simplest possible resolve.VersionSelector: a
// selector string is accepted only by the identical version string. It
// lets these tests exercise the driver without depending on
// semverselector's real grammar.
type exactMatchSelector struct{}

func (exactMatchSelector) Accepts(selector, version string) bool { return selector == version }
func (exactMatchSelector) Higher(a, b string) bool               { return a > b }
