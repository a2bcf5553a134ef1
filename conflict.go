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

import "sort"

// ConflictResolver is a tie-break rule registered with a ConflictHandler.
// Given the set of candidate versions competing for a module, it returns
// the version it would prefer, or "" to abstain.
type ConflictResolver interface {
	Select(module ModuleIdentifier, candidates []string) string
}

// PotentialConflict describes the outcome of registering a candidate
// version with a ConflictHandler.
type PotentialConflict struct {
	conflict     bool
	participants []ModuleIdentifier
}

// ConflictExists reports whether multiple incompatible versions are in
// play for the registered module.
func (p PotentialConflict) ConflictExists() bool { return p.conflict }

// WithParticipatingModules invokes action for every module dragged into
// the conflict (normally just the one module that was registered, but a
// replacement-aware handler may widen this).
func (p PotentialConflict) WithParticipatingModules(action func(ModuleIdentifier)) {
	for _, m := range p.participants {
		action(m)
	}
}

// ConflictHandler detects, batches and resolves version conflicts across
// modules (§4.7). The core package provides DefaultConflictHandler; a
// build tool may supply its own, e.g. to integrate with a dependency
// constraints file.
type ConflictHandler interface {
	// RegisterResolver adds a tie-break resolver; resolvers registered
	// later take precedence (§4.1 step 3 registers a direct-dependency
	// forcing resolver so it dominates transitive requests).
	RegisterResolver(r ConflictResolver)
	// RegisterModule records a new candidate version for module.
	RegisterModule(module ModuleIdentifier, version string) PotentialConflict
	// HasConflicts reports whether any conflict remains unresolved.
	HasConflicts() bool
	// ResolveNextConflict resolves one pending conflict, invoking action
	// with the winning module id and version.
	ResolveNextConflict(action func(module ModuleIdentifier, version string))
}

// DefaultConflictHandler is the package's ConflictHandler implementation.
// It tracks, per module, the set of candidate versions that have been
// registered; a module has a pending conflict whenever more than one
// distinct candidate version is outstanding. Resolvers are consulted in
// reverse registration order (last registered wins ties), falling back to
// the module's VersionSelector to pick the highest version.
type DefaultConflictHandler struct {
	versionSelector VersionSelector

	resolvers []ConflictResolver

	candidates map[ModuleIdentifier]map[string]bool
	pending    []ModuleIdentifier // modules with an unresolved conflict, in registration order
}

// NewDefaultConflictHandler creates a DefaultConflictHandler that breaks
// ties using sel for version ordering when no registered ConflictResolver
// expresses an opinion.
func NewDefaultConflictHandler(sel VersionSelector) *DefaultConflictHandler {
	return &DefaultConflictHandler{
		versionSelector: sel,
		candidates:      make(map[ModuleIdentifier]map[string]bool),
	}
}

// RegisterResolver implements ConflictHandler.
func (h *DefaultConflictHandler) RegisterResolver(r ConflictResolver) {
	h.resolvers = append(h.resolvers, r)
}

// RegisterModule implements ConflictHandler.
func (h *DefaultConflictHandler) RegisterModule(module ModuleIdentifier, version string) PotentialConflict {
	set, ok := h.candidates[module]
	if !ok {
		set = make(map[string]bool)
		h.candidates[module] = set
	}
	wasConflicted := len(set) > 1
	set[version] = true

	if len(set) <= 1 {
		return PotentialConflict{conflict: false}
	}
	if !wasConflicted {
		h.pending = append(h.pending, module)
	}
	return PotentialConflict{conflict: true, participants: []ModuleIdentifier{module}}
}

// HasConflicts implements ConflictHandler.
func (h *DefaultConflictHandler) HasConflicts() bool { return len(h.pending) > 0 }

// ResolveNextConflict implements ConflictHandler.
func (h *DefaultConflictHandler) ResolveNextConflict(action func(module ModuleIdentifier, version string)) {
	if len(h.pending) == 0 {
		return
	}
	module := h.pending[0]
	h.pending = h.pending[1:]

	set := h.candidates[module]
	versions := make([]string, 0, len(set))
	for v := range set {
		versions = append(versions, v)
	}
	sort.Strings(versions)

	winner := ""
	for i := len(h.resolvers) - 1; i >= 0 && winner == ""; i-- {
		winner = h.resolvers[i].Select(module, versions)
	}
	if winner == "" {
		winner = versions[0]
		for _, v := range versions[1:] {
			if h.versionSelector.Higher(v, winner) {
				winner = v
			}
		}
	}

	// Only this winner remains a live candidate; the rest have lost.
	h.candidates[module] = map[string]bool{winner: true}
	action(module, winner)
}

// RootForcingResolver is the direct-dependency forcing resolver registered
// by Driver.Resolve per §4.1 step 3: constraints declared directly on the
// root dominate transitive ones. Force records which module/version pairs
// were requested directly by the root.
type RootForcingResolver struct {
	forced map[ModuleIdentifier]string
}

// NewRootForcingResolver creates an empty RootForcingResolver.
func NewRootForcingResolver() *RootForcingResolver {
	return &RootForcingResolver{forced: make(map[ModuleIdentifier]string)}
}

// Force records that module was requested directly by the root at
// version.
func (r *RootForcingResolver) Force(module ModuleIdentifier, version string) {
	r.forced[module] = version
}

// Select implements ConflictResolver: it prefers the version forced by a
// direct root dependency, if one of the candidates matches it.
func (r *RootForcingResolver) Select(module ModuleIdentifier, candidates []string) string {
	forced, ok := r.forced[module]
	if !ok {
		return ""
	}
	for _, c := range candidates {
		if c == forced {
			return forced
		}
	}
	return ""
}
