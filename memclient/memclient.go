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

// Package memclient provides minimal, in-memory implementations of the
// resolve package's external collaborator interfaces, adapted from
// deps.dev/util/resolve's LocalClient. It exists for tests and small
// examples: a real build tool backs these interfaces with registry or
// repository I/O instead.
package memclient

import (
	"context"
	"fmt"
	"sync"

	"github.com/modgraph/resolve"
)

// Client is an in-memory registry of module versions and their direct
// requirements. It implements both resolve.DependencyToComponentIdResolver
// and resolve.ComponentMetaDataResolver.
type Client struct {
	mu sync.RWMutex

	versionSelector resolve.VersionSelector
	versions        map[resolve.ModuleIdentifier][]string
	requirements    map[resolve.ModuleVersionIdentifier][]resolve.RequirementVersion
}

// New creates an empty Client that uses sel to interpret selector strings
// and order versions when resolving a requirement to a concrete version.
func New(sel resolve.VersionSelector) *Client {
	return &Client{
		versionSelector: sel,
		versions:        make(map[resolve.ModuleIdentifier][]string),
		requirements:    make(map[resolve.ModuleVersionIdentifier][]resolve.RequirementVersion),
	}
}

// AddVersion registers vk as an existing version of its module, along with
// the direct requirements it declares. Calling AddVersion again for the
// same ModuleVersionIdentifier replaces its requirements.
func (c *Client) AddVersion(vk resolve.ModuleVersionIdentifier, reqs []resolve.RequirementVersion) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing := c.versions[vk.ModuleIdentifier]
	found := false
	for _, v := range existing {
		if v == vk.Version {
			found = true
			break
		}
	}
	if !found {
		c.versions[vk.ModuleIdentifier] = append(existing, vk.Version)
	}
	c.requirements[vk] = reqs
}

// ResolveComponentID implements resolve.DependencyToComponentIdResolver: it
// picks the highest known version of req.Module accepted by req.Constraint.
func (c *Client) ResolveComponentID(ctx context.Context, req resolve.RequirementVersion) (resolve.ModuleVersionIdentifier, resolve.ComponentIdentifier, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	best := ""
	for _, v := range c.versions[req.Module] {
		if req.Constraint.Preferred != "" && !c.versionSelector.Accepts(req.Constraint.Preferred, v) {
			continue
		}
		if req.Constraint.Rejected != "" && c.versionSelector.Accepts(req.Constraint.Rejected, v) {
			continue
		}
		if best == "" || c.versionSelector.Higher(v, best) {
			best = v
		}
	}
	if best == "" {
		return resolve.ModuleVersionIdentifier{}, resolve.ComponentIdentifier{},
			fmt.Errorf("memclient: no version of %s satisfies %q", req.Module, req.Constraint.Preferred)
	}

	vk := resolve.ModuleVersionIdentifier{ModuleIdentifier: req.Module, Version: best}
	return vk, resolve.NewComponentIdentifier(vk.String()), nil
}

// Requirements implements resolve.ComponentMetaDataResolver.
func (c *Client) Requirements(ctx context.Context, id resolve.ModuleVersionIdentifier) ([]resolve.RequirementVersion, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	reqs, ok := c.requirements[id]
	if !ok {
		return nil, fmt.Errorf("memclient: no metadata registered for %s", id)
	}
	return reqs, nil
}

// IsFetchingMetadataCheap implements resolve.ComponentMetaDataResolver. An
// in-memory lookup is always cheap, so nothing here is worth the parallel
// prefetch stage's goroutine overhead.
func (c *Client) IsFetchingMetadataCheap(id resolve.ModuleVersionIdentifier) bool { return true }

// RootResolver is a fixed resolve.ResolveContextToComponentResolver useful
// in tests that don't need to resolve the root dynamically from a
// ResolveContext: it always returns the same root identity and direct
// requirements regardless of the ResolveContext passed to Resolve.
type RootResolver struct {
	Root         resolve.ModuleVersionIdentifier
	Requirements []resolve.RequirementVersion
}

// ResolveRoot implements resolve.ResolveContextToComponentResolver.
func (r RootResolver) ResolveRoot(ctx context.Context, rc resolve.ResolveContext) (resolve.ModuleVersionIdentifier, []resolve.RequirementVersion, error) {
	return r.Root, r.Requirements, nil
}
