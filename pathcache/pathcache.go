// Package pathcache memoizes tree-resolver results per absolute
// logical path, invalidated by a change in the observed root commit's
// tree sha. It exists so that repeated operations on the same path
// (an attribute read, then a byte-channel open, say) don't each
// re-walk from the tree root.
package pathcache

import (
	"sync"

	"github.com/gitjfs/gitjfs/objstore"
	"github.com/gitjfs/gitjfs/resolver"
)

// entry is the two-slot cache record for one absolute path: the
// follow-except-final result (real) and the follow-all result
// (link). Per the coherence rule, a non-symlink follow-except-final
// result fills both slots; a symlink result fills only real until a
// follow-all pass also fills link.
type entry struct {
	rootTree objstore.OID
	real     *resolver.Ref
	link     *resolver.Ref
}

// Cache is a per-path memoization table. The zero value is usable.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[string]*entry)}
}

// Lookup returns the cached result for path under policy, given the
// tree currently observed at the path's root commit. A stale entry
// (rootTree mismatch) is treated as a miss and dropped. NoFollow is
// never served from cache: it disagrees with FollowExceptFinal on a
// mid-path symlink (NoFollow rejects it outright; FollowExceptFinal
// expands it), so the two can't safely share the "real" slot, and
// NoFollow is rare enough (only ReadSymbolicLink, and ToRealPath with
// noFollow set, use it) that it doesn't need its own.
func (c *Cache) Lookup(path string, rootTree objstore.OID, policy resolver.FollowPolicy) (resolver.Ref, bool) {
	if policy == resolver.NoFollow {
		return resolver.Ref{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[path]
	if !ok || e.rootTree != rootTree {
		if ok {
			delete(c.entries, path)
		}
		return resolver.Ref{}, false
	}

	switch policy {
	case resolver.FollowExceptFinal:
		if e.real != nil {
			return *e.real, true
		}
	case resolver.FollowAll:
		if e.link != nil {
			return *e.link, true
		}
	}
	return resolver.Ref{}, false
}

// Store records a fresh resolver result for path, resolved under
// policy against rootTree. A FollowExceptFinal result fills the real
// slot, and also the link slot when it is not a symlink, since
// follow-except-final and follow-all agree on non-symlinks; a symlink
// result leaves link to be filled by a later FollowAll resolution. A
// FollowAll result fills only the link slot: it may be the target of
// a trailing symlink, so it says nothing about the real slot. NoFollow
// results are never cached (see Lookup).
func (c *Cache) Store(path string, rootTree objstore.OID, policy resolver.FollowPolicy, ref resolver.Ref) {
	if policy == resolver.NoFollow {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[path]
	if !ok || e.rootTree != rootTree {
		e = &entry{rootTree: rootTree}
		c.entries[path] = e
	}

	r := ref
	if policy == resolver.FollowAll || ref.Mode != objstore.ModeSymlink {
		e.link = &r
	}
	if policy == resolver.FollowExceptFinal {
		e.real = &r
	}
}

// Invalidate drops every cached entry at once. Lookup and Store
// already discard a single stale entry on a root-tree mismatch, so
// nothing in this module needs to call Invalidate for a moved ref.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}
