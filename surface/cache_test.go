package surface

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCacheMissThenHit(t *testing.T) {
	c := NewCache(8)

	_, ok := c.Get(1, 100)
	require.False(t, ok, "expected miss on empty cache")

	s := New(2, 2)
	c.Put(1, 100, s)

	got, ok := c.Get(1, 100)
	require.True(t, ok, "expected hit returning the stored surface")
	require.Same(t, s, got)

	hits, misses := c.Stats()
	require.Equal(t, uint64(1), hits)
	require.Equal(t, uint64(1), misses)
}

func TestCacheFingerprintChangeIsMiss(t *testing.T) {
	c := NewCache(8)
	c.Put(1, 100, New(1, 1))

	_, ok := c.Get(1, 200)
	require.False(t, ok, "expected miss for changed fingerprint under same node id")
}

func TestCacheInvalidate(t *testing.T) {
	c := NewCache(8)
	c.Put(1, 100, New(1, 1))
	c.Invalidate(1, 100)

	_, ok := c.Get(1, 100)
	require.False(t, ok, "expected miss after invalidating entry")
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2)
	c.Put(1, 1, New(1, 1))
	c.Put(2, 2, New(1, 1))
	c.Put(3, 3, New(1, 1)) // evicts node 1's entry

	_, ok := c.Get(1, 1)
	require.False(t, ok, "expected LRU eviction of the oldest entry")
	_, ok = c.Get(2, 2)
	require.True(t, ok, "expected node 2's entry to survive")
}
