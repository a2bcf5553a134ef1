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

/*
Package dep describes the declared nature of a dependency edge: whether it
is a hard requirement, a constraint-only declaration that should not by
itself pull its target into the graph, optional, or forced.
*/
package dep

import (
	"fmt"
	"strings"

	"github.com/modgraph/resolve/internal/attr"
)

// AttrKey names an attribute that can be attached to a Type.
type AttrKey int8

const (
	// Optional marks an edge whose target should not cause resolution to
	// fail if it cannot be found; the edge is recorded but tolerated.
	Optional AttrKey = -0x01

	// ConstraintOnly marks an edge that declares a VersionConstraint on a
	// module without requiring that module to be part of the graph. Such
	// edges are held by the PendingDependenciesHandler until some other,
	// non-constraint edge activates the module (§4.9).
	ConstraintOnly AttrKey = -0x02

	// Forced marks an edge produced by a direct-dependency forcing
	// resolver: its requested version should win conflict tie-breaks
	// against transitively requested versions (§4.1 step 3).
	Forced AttrKey = -0x03

	// FastResolve marks an edge whose target is known cheap enough to
	// resolve that it should never be chosen for the parallel metadata
	// prefetch stage, even if its metadata would otherwise qualify
	// (spec.md §4.5 condition c).
	FastResolve AttrKey = -0x04

	// Reason is a valued attribute recording why an edge was rewritten by
	// a DependencySubstitutionApplicator, for diagnostics.
	Reason AttrKey = 0x01
)

// Type is an immutable-by-convention set of attributes describing a
// dependency edge. Its zero value is a regular, hard, unforced edge.
type Type struct {
	set attr.Set
}

// NewType builds a Type with the given flag attributes set.
func NewType(attrs ...AttrKey) Type {
	var t Type
	for _, a := range attrs {
		t.AddAttr(a, "")
	}
	return t
}

// Clone returns an independent copy of t.
func (t Type) Clone() Type { return Type{set: t.set.Clone()} }

// AddAttr attaches an attribute to t. Negative keys are flags (value is
// ignored); non-negative keys carry a string value.
func (t *Type) AddAttr(key AttrKey, value string) {
	if key < 0 {
		t.set.Mask |= attr.Mask(1 << uint(-key-1))
		return
	}
	t.set.SetAttr(uint8(key), value)
}

// GetAttr reads an attribute from t.
func (t Type) GetAttr(key AttrKey) (value string, ok bool) {
	if key < 0 {
		return "", t.set.Mask&attr.Mask(1<<uint(-key-1)) != 0
	}
	return t.set.GetAttr(uint8(key))
}

// HasAttr is a convenience wrapper around GetAttr for flag-style keys.
func (t Type) HasAttr(key AttrKey) bool {
	_, ok := t.GetAttr(key)
	return ok
}

// IsRegular reports whether t carries no attributes at all.
func (t Type) IsRegular() bool { return t.set.IsEmpty() }

// IsOptional reports whether the edge is Optional.
func (t Type) IsOptional() bool { return t.HasAttr(Optional) }

// IsConstraintOnly reports whether the edge is ConstraintOnly.
func (t Type) IsConstraintOnly() bool { return t.HasAttr(ConstraintOnly) }

// IsForced reports whether the edge was produced by a forcing resolver.
func (t Type) IsForced() bool { return t.HasAttr(Forced) }

// IsFastResolve reports whether the edge is exempt from the parallel
// metadata prefetch stage.
func (t Type) IsFastResolve() bool { return t.HasAttr(FastResolve) }

// Equal reports whether t and other carry the same attributes.
func (t Type) Equal(other Type) bool { return t.set.Equal(other.set) }

// Compare orders Types for deterministic sorting of edges.
func (t Type) Compare(other Type) int { return t.set.Compare(other.set) }

func (t Type) String() string {
	if t.IsRegular() {
		return "reg"
	}
	var parts []string
	if t.HasAttr(Optional) {
		parts = append(parts, "opt")
	}
	if t.HasAttr(ConstraintOnly) {
		parts = append(parts, "constraint")
	}
	if t.HasAttr(Forced) {
		parts = append(parts, "forced")
	}
	t.set.ForEachAttr(func(key uint8, value string) {
		parts = append(parts, fmt.Sprintf("%d=%q", key, value))
	})
	return strings.Join(parts, "|")
}
