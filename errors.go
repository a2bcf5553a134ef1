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
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// RootUnresolvableError is returned by Driver.Resolve when the
// ResolveContextToComponentResolver cannot identify the root component or
// its direct requirements (§7 item 1). It is always fatal: resolution
// cannot proceed without a root.
type RootUnresolvableError struct {
	Context ResolveContext
	Err     error
}

func (e *RootUnresolvableError) Error() string {
	return fmt.Sprintf("resolve: could not resolve root context %v: %v", e.Context, e.Err)
}

func (e *RootUnresolvableError) Unwrap() error { return e.Err }

// EdgeFailureKind distinguishes the two non-fatal per-edge failure modes
// of §7.
type EdgeFailureKind int

const (
	// UnresolvableSelector means the DependencyToComponentIdResolver could
	// not turn the edge's requirement into a component id (§7 item 2).
	UnresolvableSelector EdgeFailureKind = iota
	// MetadataFetchFailure means the edge's target component resolved, but
	// fetching its metadata failed, either during prefetch or at
	// attachment (§7 item 3).
	MetadataFetchFailure
)

func (k EdgeFailureKind) String() string {
	switch k {
	case UnresolvableSelector:
		return "unresolvable selector"
	case MetadataFetchFailure:
		return "metadata fetch failure"
	default:
		return "unknown edge failure"
	}
}

// EdgeError records a non-fatal failure against one EdgeState. Resolution
// continues around it: the edge's origin node is simply left without that
// particular dependency attached. A caller that wants strict,
// fail-the-whole-resolve semantics for non-optional edges can inspect
// ResolutionErrors after a successful Resolve call and decide for itself.
type EdgeError struct {
	Edge     EdgeID
	Module   ModuleIdentifier
	Kind     EdgeFailureKind
	Optional bool
	Err      error
}

func (e *EdgeError) Error() string {
	return fmt.Sprintf("resolve: edge %d (%s): %s: %v", e.Edge, e.Module, e.Kind, e.Err)
}

func (e *EdgeError) Unwrap() error { return e.Err }

// ResolutionErrors collects every EdgeError surfaced while assembling the
// final graph. A non-empty ResolutionErrors does not by itself mean
// Driver.Resolve returned an error: whether a partial graph with missing
// edges is acceptable is a decision left to the caller, consistent with
// §7's framing of items 2 and 3 as degrading gracefully rather than
// aborting the traversal.
type ResolutionErrors struct {
	Errors []*EdgeError
}

func (r *ResolutionErrors) add(e *EdgeError) { r.Errors = append(r.Errors, e) }

func (r *ResolutionErrors) HasErrors() bool { return len(r.Errors) > 0 }

// AsError flattens the collected failures into a single error via
// go-multierror, convenient for a caller that wants one err != nil check
// after a Resolve call rather than inspecting Errors directly.
func (r *ResolutionErrors) AsError() error {
	if len(r.Errors) == 0 {
		return nil
	}
	merr := &multierror.Error{}
	for _, e := range r.Errors {
		merr = multierror.Append(merr, e)
	}
	return merr
}

func (r *ResolutionErrors) Error() string {
	if err := r.AsError(); err != nil {
		return err.Error()
	}
	return "resolve: no edge failures"
}
