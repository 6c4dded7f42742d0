package surface

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheKey identifies one node's rendered output: the node's stable identity
// plus a content fingerprint. A hit means "this node, with this exact
// content, was rendered before" — the cached Surface can be reused verbatim
// instead of re-walking the widget's Render method.
type cacheKey struct {
	NodeID      uint32
	Fingerprint uint64
}

// Cache memoizes rendered node output keyed by (node id, fingerprint),
// generalizing the teacher's per-cell Cell.IsDirty/ClearDirty tracking
// (cell.go) to whole-subtree granularity: a node whose fingerprint hasn't
// changed since the last frame skips rendering entirely. Backed by
// github.com/hashicorp/golang-lru/v2 rather than a hand-rolled eviction
// policy.
type Cache struct {
	lru    *lru.Cache[cacheKey, *Surface]
	hits   uint64
	misses uint64
}

// NewCache creates a render cache holding up to size entries. A size <= 0
// is treated as 1 (the underlying LRU requires a positive capacity).
func NewCache(size int) *Cache {
	if size <= 0 {
		size = 1
	}
	l, _ := lru.New[cacheKey, *Surface](size)
	return &Cache{lru: l}
}

// Get looks up a previously cached render for (nodeID, fingerprint).
func (c *Cache) Get(nodeID uint32, fingerprint uint64) (*Surface, bool) {
	s, ok := c.lru.Get(cacheKey{NodeID: nodeID, Fingerprint: fingerprint})
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return s, ok
}

// Put stores a rendered surface for (nodeID, fingerprint). Callers should
// pass a Clone if the surface is mutated afterward, since the cache holds
// the pointer it's given.
func (c *Cache) Put(nodeID uint32, fingerprint uint64, s *Surface) {
	c.lru.Add(cacheKey{NodeID: nodeID, Fingerprint: fingerprint}, s)
}

// Invalidate drops the cached render stored under (nodeID, fingerprint).
// Entries for the same nodeID under other fingerprints are left in place.
func (c *Cache) Invalidate(nodeID uint32, fingerprint uint64) {
	c.lru.Remove(cacheKey{NodeID: nodeID, Fingerprint: fingerprint})
}

// Len returns the number of entries currently cached.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Stats returns the cumulative hit/miss counts since the cache was created.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits, c.misses
}
