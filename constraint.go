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

// VersionSelector is the delegated collaborator that knows how to parse and
// match a single version-selector string against a concrete version
// string. The core resolver never interprets selector syntax itself; it
// only asks a VersionSelector whether a given version is accepted or
// rejected, and only compares two candidate concrete versions via Higher
// when conflict resolution needs a winner. See the semverselector
// subpackage for the default, semver-based implementation.
type VersionSelector interface {
	// Accepts reports whether the version string satisfies the selector
	// string (e.g. a range such as "[1.0,2.0)").
	Accepts(selector, version string) bool

	// Higher reports whether a sorts after b according to this selector's
	// notion of version ordering.
	Higher(a, b string) bool
}

// VersionConstraint is a single dependency declaration's requested
// constraint: a preferred selector (the accept set) and an optional
// rejected selector (the veto set), each with an independent flag
// controlling whether, once some other selector has already chosen a
// version, this selector may be skipped during compatible-selection
// (§4.4).
type VersionConstraint struct {
	// Preferred is the accept-set selector string. An empty Preferred
	// means this constraint carries no positive requirement. If Rejected
	// is empty too, the selector neither agrees nor disagrees with any
	// candidate (§4.4.1 rule 3); if only Rejected is set, agrees reports
	// false for every version.
	Preferred string
	// PreferredCanShortcut allows tryCompatibleSelection to treat a
	// version already chosen by another selector as acceptable to this
	// one without re-running full matching, provided Accepts agrees.
	PreferredCanShortcut bool

	// Rejected is an optional veto-set selector string.
	Rejected string
	// RejectedCanShortcut mirrors PreferredCanShortcut for the veto set.
	RejectedCanShortcut bool
}

// IsEmpty reports whether the constraint carries neither a preferred nor a
// rejected selector.
func (c VersionConstraint) IsEmpty() bool {
	return c.Preferred == "" && c.Rejected == ""
}

// agrees reports whether this constraint agrees that version is
// acceptable, per the positive reading of §4.4.1:
//
//	"a selector 'agrees' when it has a preferred selector that permits
//	shortcutting and accepts version, AND either has no rejected selector
//	or one that does not reject version."
//
// A constraint with neither a Preferred nor a Rejected selector is not
// asked this question by allSelectorsAgreeWith (rule 3: selectors without
// a constraint are ignored). A constraint with only a Rejected selector is
// asked, and agrees returns false for it.
func (c VersionConstraint) agrees(sel VersionSelector, version string) bool {
	if c.Preferred == "" {
		return false
	}
	if !c.PreferredCanShortcut {
		return false
	}
	if !sel.Accepts(c.Preferred, version) {
		return false
	}
	if c.Rejected != "" && sel.Accepts(c.Rejected, version) {
		return false
	}
	return true
}
