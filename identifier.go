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
Package resolve builds the transitive graph of module versions required to
satisfy a root resolution context, resolving version conflicts and
emitting the result to a visitor in consumer-first order.

The Driver type performs the resolution; its collaborators (the resolvers
that answer "what versions exist" and "what does this version depend on",
the ConflictHandler, the BuildOperationExecutor) are described as
interfaces so that a caller can wire in their own repository access,
parsing and thread-pool implementations. See the memclient and
semverselector subpackages for minimal, in-memory implementations usable
in tests.
*/
package resolve

import (
	"fmt"
	"sync"

	"github.com/golang/groupcache/lru"
)

// ModuleIdentifier identifies a module irrespective of version.
type ModuleIdentifier struct {
	Group string
	Name  string
}

func (m ModuleIdentifier) String() string { return m.Group + ":" + m.Name }

// Compare orders ModuleIdentifiers by group then name.
func (m ModuleIdentifier) Compare(o ModuleIdentifier) int {
	if m.Group != o.Group {
		if m.Group < o.Group {
			return -1
		}
		return 1
	}
	if m.Name != o.Name {
		if m.Name < o.Name {
			return -1
		}
		return 1
	}
	return 0
}

// ModuleVersionIdentifier identifies one candidate version of a module.
type ModuleVersionIdentifier struct {
	ModuleIdentifier
	Version string
}

func (v ModuleVersionIdentifier) String() string {
	return fmt.Sprintf("%s:%s", v.ModuleIdentifier, v.Version)
}

// Compare orders ModuleVersionIdentifiers by module then version string.
// Version ordering by semantic meaning is the job of a VersionSelector;
// this Compare exists only to give identifiers a total, deterministic
// order for maps and sorted output.
func (v ModuleVersionIdentifier) Compare(o ModuleVersionIdentifier) int {
	if c := v.ModuleIdentifier.Compare(o.ModuleIdentifier); c != 0 {
		return c
	}
	if v.Version != o.Version {
		if v.Version < o.Version {
			return -1
		}
		return 1
	}
	return 0
}

// ComponentIdentifier is an opaque, resolver-assigned identity for one
// resolved module version. Two ModuleVersionIdentifiers that the resolver
// considers the same component (e.g. after a redirect) will map to equal
// ComponentIdentifiers.
type ComponentIdentifier struct {
	opaque string
}

func (c ComponentIdentifier) String() string { return c.opaque }

// NewComponentIdentifier wraps an opaque string produced by a
// DependencyToComponentIdResolver. Callers should otherwise treat
// ComponentIdentifier as a value type with no internal structure.
func NewComponentIdentifier(opaque string) ComponentIdentifier {
	return ComponentIdentifier{opaque: opaque}
}

// IdentifierCache memoizes the mapping from ModuleVersionIdentifier to
// ComponentIdentifier. Entries are immutable once inserted: PutIfAbsent
// never overwrites an existing entry, so concurrent callers racing to
// resolve the same identifier converge on whichever value-equal entry won
// first (§3, §5 — "entries are added, never changed or removed").
//
// It is backed by an LRU so that long-running resolvers (e.g. a build
// daemon resolving many projects over its lifetime) don't grow this cache
// without bound. A cache created with a positive maxEntries evicts its
// least recently used entry once full; NewIdentifierCache(0), the
// Driver's default, never evicts.
type IdentifierCache struct {
	mu    sync.Mutex
	cache *lru.Cache
}

// NewIdentifierCache creates an IdentifierCache holding up to maxEntries
// mappings. A maxEntries of 0 means unbounded.
func NewIdentifierCache(maxEntries int) *IdentifierCache {
	return &IdentifierCache{cache: lru.New(maxEntries)}
}

// Get returns the cached ComponentIdentifier for key, if present.
func (c *IdentifierCache) Get(key ModuleVersionIdentifier) (ComponentIdentifier, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.cache.Get(key)
	if !ok {
		return ComponentIdentifier{}, false
	}
	return v.(ComponentIdentifier), true
}

// PutIfAbsent inserts value for key unless an entry already exists, and
// returns whichever value is now stored for key. This is the
// compare-and-put operation referenced by §5: a losing concurrent writer
// discards its own (value-equal) computation rather than overwriting the
// winner's.
func (c *IdentifierCache) PutIfAbsent(key ModuleVersionIdentifier, value ComponentIdentifier) ComponentIdentifier {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.cache.Get(key); ok {
		return v.(ComponentIdentifier)
	}
	c.cache.Add(key, value)
	return value
}

// Len reports the number of entries currently cached.
func (c *IdentifierCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}
