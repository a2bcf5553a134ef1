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
Package attr provides a compact set of keyed attributes.

It is an implementation detail of the dep package, which layers dependency
edge semantics (optional, constraint-only, forced...) on top of it.
*/
package attr

import "strings"

// A Mask is a bitmask of reserved, no-valued attributes whose presence in a
// Set is itself the signal. All eight bits may be used; their meaning is
// defined by the caller.
type Mask uint8

// Set is a collection of attributes: a small Mask of flag-like attributes
// plus a map of arbitrary uint8 keys to string values.
//
// The zero value of Set is empty and ready to use.
type Set struct {
	Mask Mask

	attrs    map[uint8]string
	attrBits uint64 // which keys are present in attrs, for fast Compare/IsEmpty
}

// SetAttr adds a valued attribute, replacing any existing one with the same
// key. Keys must be < 64.
func (s *Set) SetAttr(key uint8, value string) {
	if key >= 64 {
		panic("attr: key too large")
	}
	if s.attrs == nil {
		s.attrs = make(map[uint8]string)
	}
	s.attrs[key] = value
	s.attrBits |= 1 << uint(key)
}

// GetAttr retrieves a valued attribute.
func (s Set) GetAttr(key uint8) (value string, ok bool) {
	value, ok = s.attrs[key]
	return
}

// Clone returns a deep copy of the Set.
func (s Set) Clone() Set {
	c := Set{Mask: s.Mask, attrBits: s.attrBits}
	if len(s.attrs) > 0 {
		c.attrs = make(map[uint8]string, len(s.attrs))
		for k, v := range s.attrs {
			c.attrs[k] = v
		}
	}
	return c
}

// IsEmpty reports whether the Set is equivalent to its zero value.
func (s Set) IsEmpty() bool {
	return s.Mask == 0 && len(s.attrs) == 0
}

// Equal reports whether s and other hold the same attributes.
func (s Set) Equal(other Set) bool { return s.Compare(other) == 0 }

// Compare returns -1, 0 or 1 depending on whether s sorts before, the same
// as, or after other. Ordering is by Mask, then by the sorted keys and
// values present in attrs.
func (s Set) Compare(other Set) int {
	if s.Mask != other.Mask {
		if s.Mask < other.Mask {
			return -1
		}
		return 1
	}
	if s.attrBits != other.attrBits {
		if s.attrBits < other.attrBits {
			return -1
		}
		return 1
	}
	for key := uint8(0); key < 64; key++ {
		if s.attrBits&(1<<uint(key)) == 0 {
			continue
		}
		a, b := s.attrs[key], other.attrs[key]
		if a != b {
			return strings.Compare(a, b)
		}
	}
	return 0
}

// ForEachAttr calls f for every valued attribute in the set, in ascending
// key order.
func (s Set) ForEachAttr(f func(key uint8, value string)) {
	for key := uint8(0); key < 64; key++ {
		if s.attrBits&(1<<uint(key)) == 0 {
			continue
		}
		f(key, s.attrs[key])
	}
}
