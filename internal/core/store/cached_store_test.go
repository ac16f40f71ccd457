package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempestsim/tempest/internal/core/observability/log"
)

func newTestCachedStore(t *testing.T, maxEntities, maxComponents int) (*CachedStore, *QueryCache) {
	t.Helper()
	cache := NewQueryCache()
	base := NewArrayStore(Config{MaxEntities: maxEntities, MaxComponents: maxComponents}, log.Nop())
	return NewCachedStore(base, cache), cache
}

func TestCachedStore_QueryMatchesSupersetSemantics(t *testing.T) {
	s, _ := newTestCachedStore(t, 100, 10)

	require.NoError(t, s.AttachComponents(1, []int64{100, 200, 300}, []float32{1, 1, 1}))
	require.NoError(t, s.AttachComponents(2, []int64{100, 200}, []float32{1, 1}))
	require.NoError(t, s.AttachComponent(3, 100, 1))

	// Same result warm or cold, and regardless of id order inside the query.
	for i := 0; i < 3; i++ {
		assert.Equal(t, map[int64]struct{}{1: {}, 2: {}}, s.EntitiesWith(100, 200))
		assert.Equal(t, map[int64]struct{}{1: {}, 2: {}}, s.EntitiesWith(200, 100))
		assert.Equal(t, map[int64]struct{}{1: {}}, s.EntitiesWith(300, 100))
	}
}

func TestCachedStore_RepeatQueryIsHit(t *testing.T) {
	s, cache := newTestCachedStore(t, 100, 10)

	require.NoError(t, s.AttachComponent(1, 100, 1))
	cache.ResetStats()

	s.EntitiesWith(100, 200)
	assert.Equal(t, int64(1), cache.Stats().Misses)

	s.EntitiesWith(200, 100)
	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestCachedStore_EntityLifecycleInvalidatesEverything(t *testing.T) {
	s, cache := newTestCachedStore(t, 100, 10)

	require.NoError(t, s.AttachComponent(1, 100, 1))
	s.EntitiesWith(100)
	s.EntitiesWith(200)
	require.Equal(t, 2, cache.Stats().Size)

	require.NoError(t, s.CreateEntity(2))
	assert.Equal(t, 0, cache.Stats().Size)

	s.EntitiesWith(100)
	s.DeleteEntity(2)
	assert.Equal(t, 0, cache.Stats().Size)
}

func TestCachedStore_MutationInvalidationIsScoped(t *testing.T) {
	s, cache := newTestCachedStore(t, 100, 10)

	require.NoError(t, s.AttachComponent(1, 100, 1))
	require.NoError(t, s.AttachComponent(1, 200, 1))

	s.EntitiesWith(100)
	s.EntitiesWith(200)
	s.EntitiesWith(100, 200)
	cache.ResetStats()

	// Touching 100 drops the entries mentioning it, but not the 200 entry.
	require.NoError(t, s.AttachComponent(1, 100, 2))

	s.EntitiesWith(200)
	assert.Equal(t, int64(1), cache.Stats().Hits)

	s.EntitiesWith(100)
	s.EntitiesWith(100, 200)
	assert.Equal(t, int64(2), cache.Stats().Misses)
}

func TestCachedStore_RemoveComponentInvalidates(t *testing.T) {
	s, cache := newTestCachedStore(t, 100, 10)

	require.NoError(t, s.AttachComponent(1, 100, 1))
	assert.Equal(t, map[int64]struct{}{1: {}}, s.EntitiesWith(100))

	s.RemoveComponent(1, 100)
	cache.ResetStats()

	assert.Empty(t, s.EntitiesWith(100))
	assert.Equal(t, int64(1), cache.Stats().Misses)
}

// Mirrors the canonical walkthrough: membership queries stay correct across
// cache warmth and value-only mutations.
func TestCachedStore_ValueMutationScenario(t *testing.T) {
	const (
		positionX = int64(1)
		positionY = int64(2)
	)
	s, cache := newTestCachedStore(t, 100000, 100)

	require.NoError(t, s.CreateEntity(1))
	require.NoError(t, s.AttachComponent(1, positionX, 5.0))
	require.NoError(t, s.AttachComponent(1, positionY, 10.0))
	cache.ResetStats()

	assert.Equal(t, map[int64]struct{}{1: {}}, s.EntitiesWith(positionX))
	assert.Equal(t, int64(1), cache.Stats().Misses)

	assert.Equal(t, map[int64]struct{}{1: {}}, s.EntitiesWith(positionX))
	assert.Equal(t, int64(1), cache.Stats().Hits)

	// Changing the value invalidates the entry; membership is unchanged.
	require.NoError(t, s.AttachComponent(1, positionX, 50.0))

	assert.Equal(t, map[int64]struct{}{1: {}}, s.EntitiesWith(positionX))
	assert.Equal(t, int64(2), cache.Stats().Misses)
	assert.Equal(t, float32(50.0), s.GetComponent(1, positionX))
}

func TestCachedStore_ResetClearsDataAndCache(t *testing.T) {
	s, cache := newTestCachedStore(t, 100, 10)

	require.NoError(t, s.AttachComponent(1, 100, 1))
	s.EntitiesWith(100)

	s.Reset()

	assert.Equal(t, 0, cache.Stats().Size)
	assert.Equal(t, 0, s.EntityCount())
	assert.Empty(t, s.EntitiesWith(100))
}
