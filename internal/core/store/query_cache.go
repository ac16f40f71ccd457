package store

import (
	"encoding/binary"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// QueryCache memoizes EntitiesWith results. Keys are canonicalized
// (order-independent) component-id sets, so a query for (A, B) and one for
// (B, A) share an entry. Results are defensively copied both in and out;
// callers may freely mutate what they get back.
//
// The cache is internally synchronized: lookups under the store's shared
// lock may race with each other, while invalidations only ever run under
// the store's exclusive lock.
type QueryCache struct {
	mu      sync.RWMutex
	entries map[uint64]*cacheEntry

	hits   atomic.Int64
	misses atomic.Int64
}

type cacheEntry struct {
	componentIDs []int64 // sorted; doubles as a collision guard
	entities     map[int64]struct{}
}

// CacheStats is a point-in-time view of cache effectiveness.
type CacheStats struct {
	Hits   int64
	Misses int64
	Size   int
}

func (s CacheStats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

func NewQueryCache() *QueryCache {
	return &QueryCache{entries: make(map[uint64]*cacheEntry)}
}

// Get returns a copy of the cached entity set for the canonical form of
// componentIDs, or nil if the query is not cached. Hit/miss counters are
// updated either way.
func (c *QueryCache) Get(componentIDs []int64) map[int64]struct{} {
	key, sorted := canonicalKey(componentIDs)

	c.mu.RLock()
	entry, ok := c.entries[key]
	if ok && !slices.Equal(entry.componentIDs, sorted) {
		ok = false
	}
	var copied map[int64]struct{}
	if ok {
		copied = copyEntitySet(entry.entities)
	}
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return nil
	}
	c.hits.Add(1)
	return copied
}

// Put stores a defensive copy of entities under the canonical form of
// componentIDs.
func (c *QueryCache) Put(componentIDs []int64, entities map[int64]struct{}) {
	key, sorted := canonicalKey(componentIDs)
	entry := &cacheEntry{componentIDs: sorted, entities: copyEntitySet(entities)}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// InvalidateComponent drops every entry whose key mentions componentID.
// Entries over unrelated components stay valid.
func (c *QueryCache) InvalidateComponent(componentID int64) {
	c.mu.Lock()
	for key, entry := range c.entries {
		if _, found := slices.BinarySearch(entry.componentIDs, componentID); found {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// InvalidateAll drops every entry. Used when entity membership itself may
// have changed (create, delete, reset).
func (c *QueryCache) InvalidateAll() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

// Stats returns current hit/miss counters and entry count.
func (c *QueryCache) Stats() CacheStats {
	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()
	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   size,
	}
}

// ResetStats zeroes the hit/miss counters without touching entries.
func (c *QueryCache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
}

// canonicalKey sorts a copy of the ids and hashes them with xxhash. The
// sorted slice is returned alongside the digest so entries can verify exact
// key equality on lookup.
func canonicalKey(componentIDs []int64) (uint64, []int64) {
	sorted := slices.Clone(componentIDs)
	slices.Sort(sorted)

	digest := xxhash.New()
	var buf [8]byte
	for _, id := range sorted {
		binary.LittleEndian.PutUint64(buf[:], uint64(id))
		_, _ = digest.Write(buf[:])
	}
	return digest.Sum64(), sorted
}

func copyEntitySet(src map[int64]struct{}) map[int64]struct{} {
	dst := make(map[int64]struct{}, len(src))
	for id := range src {
		dst[id] = struct{}{}
	}
	return dst
}
