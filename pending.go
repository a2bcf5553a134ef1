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

// pendingEdge is a constraint-only requirement held back until some other
// edge activates its module.
type pendingEdge struct {
	from NodeID
	req  RequirementVersion
}

// PendingDependenciesHandler wraps edges declared only as constraints (no
// hard requirement, dep.ConstraintOnly set): they do not immediately
// enqueue their target for traversal. They become active only when some
// other, non-constraint edge requires the same module (§4.9).
type PendingDependenciesHandler struct {
	deferred map[ModuleIdentifier][]pendingEdge
	active   map[ModuleIdentifier]bool
}

// NewPendingDependenciesHandler creates an empty handler.
func NewPendingDependenciesHandler() *PendingDependenciesHandler {
	return &PendingDependenciesHandler{
		deferred: make(map[ModuleIdentifier][]pendingEdge),
		active:   make(map[ModuleIdentifier]bool),
	}
}

// Defer holds req back instead of returning it from computeOutgoingEdges
// immediately.
func (h *PendingDependenciesHandler) Defer(from NodeID, req RequirementVersion) {
	h.deferred[req.Module] = append(h.deferred[req.Module], pendingEdge{from: from, req: req})
}

// Activate marks module as required by a non-constraint edge and returns
// any previously deferred edges for it, releasing them into the normal
// outgoing-edge collection (§4.9: "deferred edges are released").
func (h *PendingDependenciesHandler) Activate(module ModuleIdentifier) []pendingEdge {
	h.active[module] = true
	edges := h.deferred[module]
	delete(h.deferred, module)
	return edges
}

// IsActive reports whether module has already been activated by some
// non-constraint edge.
func (h *PendingDependenciesHandler) IsActive(module ModuleIdentifier) bool {
	return h.active[module]
}

// filterPending partitions reqs declared by a node's metadata into those
// that should produce an edge immediately (hard requirements, or
// constraints on already-active modules) and those that should be
// deferred. Any requirement on a module that is activated by this very
// call also releases the module's previously deferred edges — which may
// have been declared by a *different* node entirely — so each returned
// pendingEdge carries its own true origin rather than being attributed to
// from, the node whose metadata triggered this call.
func (h *PendingDependenciesHandler) filterPending(from NodeID, reqs []RequirementVersion) []pendingEdge {
	var result []pendingEdge
	for _, req := range reqs {
		if req.Type.IsConstraintOnly() && !h.IsActive(req.Module) {
			h.Defer(from, req)
			continue
		}
		if !req.Type.IsConstraintOnly() && !h.IsActive(req.Module) {
			result = append(result, h.Activate(req.Module)...)
		}
		result = append(result, pendingEdge{from: from, req: req})
	}
	return result
}
