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
	"sort"
)

// ResolveContext is whatever the embedding build tool considers the root
// of a resolution: a project, a configuration, a lockfile target. The
// core treats it as opaque and only ever hands it to a
// ResolveContextToComponentResolver.
type ResolveContext interface{}

// ResolveContextToComponentResolver turns a root ResolveContext into the
// root component's identity and its direct requirements.
type ResolveContextToComponentResolver interface {
	ResolveRoot(ctx context.Context, rc ResolveContext) (ModuleVersionIdentifier, []RequirementVersion, error)
}

// DependencyToComponentIdResolver resolves a single selector to a
// component id. It may perform I/O (e.g. a registry lookup to pick the
// concrete version that satisfies a range).
type DependencyToComponentIdResolver interface {
	ResolveComponentID(ctx context.Context, req RequirementVersion) (ModuleVersionIdentifier, ComponentIdentifier, error)
}

// ComponentMetaDataResolver fetches the full metadata (direct
// requirements) of a resolved component. IsFetchingMetadataCheap must
// answer without performing I/O; components for which it returns false
// are candidates for the parallel prefetch stage (§4.5).
type ComponentMetaDataResolver interface {
	Requirements(ctx context.Context, id ModuleVersionIdentifier) ([]RequirementVersion, error)
	IsFetchingMetadataCheap(id ModuleVersionIdentifier) bool
}

// ModuleExclusions intersects exclude rules declared along the path from
// the root to an edge. The zero value (nil ModuleExclusions field on
// ResolveState) excludes nothing.
type ModuleExclusions interface {
	// Excludes reports whether module should be excluded given the
	// exclusion rules accumulated along from: the first incoming edge of
	// the node that declares the requirement (zero for the root node).
	Excludes(from EdgeID, module ModuleIdentifier) bool
}

// ModuleReplacementsData reports whether a module participates in a
// replacement relationship with another module. Participation disables
// the Case A compatible-selection shortcut (§4.4): a module that might be
// replaced cannot be trivially selected without considering the
// replacement graph.
type ModuleReplacementsData interface {
	ParticipatesInReplacements(module ModuleIdentifier) bool
}

// NoopReplacements is a ModuleReplacementsData under which no module
// participates in any replacement. It is the default when a Driver is
// built without an explicit ModuleReplacementsData.
type NoopReplacements struct{}

// ParticipatesInReplacements always returns false.
func (NoopReplacements) ParticipatesInReplacements(ModuleIdentifier) bool { return false }

// DependencySubstitutionApplicator rewrites a requirement before a
// SelectorState is created for it, e.g. to redirect one module's
// coordinates onto another's.
type DependencySubstitutionApplicator interface {
	Substitute(req RequirementVersion) RequirementVersion
}

// IdentitySubstitution is a DependencySubstitutionApplicator that never
// rewrites anything. It is the default when a Driver is built without an
// explicit DependencySubstitutionApplicator.
type IdentitySubstitution struct{}

// Substitute returns req unchanged.
func (IdentitySubstitution) Substitute(req RequirementVersion) RequirementVersion { return req }

// ComponentSelectorConverter converts between a build tool's own selector
// representation and the core's RequirementVersion. Only PassthroughSelectorConverter
// is provided by this package; real build tool integrations supply their own.
type ComponentSelectorConverter interface {
	Convert(req RequirementVersion) RequirementVersion
}

// PassthroughSelectorConverter returns every requirement unchanged.
type PassthroughSelectorConverter struct{}

// Convert returns req unchanged.
func (PassthroughSelectorConverter) Convert(req RequirementVersion) RequirementVersion { return req }

// AttributesSchema declares the set of attribute names a build tool's
// variant-selection machinery knows about. The core only needs to know
// whether a name is declared; the matching algorithm for a declared
// attribute's values belongs to the build tool, not this package.
type AttributesSchema interface {
	HasAttribute(name string) bool
}

// ImmutableAttributesFactory builds typed, interned attribute sets used to
// disambiguate which NodeState configuration a given edge should target,
// when a component exposes more than one configuration under the same
// name prefix (e.g. "runtime" vs "runtime+test-fixtures").
type ImmutableAttributesFactory interface {
	// Concat merges a component's default attributes with those
	// requested by an edge, producing the configuration name to
	// materialize a NodeState under.
	Concat(base string, requested map[string]string) string
}

// MapAttributesFactory is a minimal ImmutableAttributesFactory: it
// concatenates base and the sorted "key=value" pairs of requested with a
// "+" separator. It is the default when a Driver is built without an
// explicit ImmutableAttributesFactory.
type MapAttributesFactory struct{}

// Concat implements ImmutableAttributesFactory.
func (MapAttributesFactory) Concat(base string, requested map[string]string) string {
	if len(requested) == 0 {
		return base
	}
	keys := make([]string, 0, len(requested))
	for k := range requested {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := base
	for _, k := range keys {
		s += "+" + k + "=" + requested[k]
	}
	return s
}

// BuildOperationExecutor exposes the barrier-semantics batch dispatch that
// the parallel metadata stage (§4.5) uses: submit every operation in the
// batch, then block until all have completed. See ErrgroupExecutor for
// the default implementation.
type BuildOperationExecutor interface {
	RunAll(ctx context.Context, ops []func(ctx context.Context) error) error
}
