package store

var _ EntityComponentStore = (*CachedStore)(nil)

// CachedStore decorates an EntityComponentStore with query memoization.
//
// Invalidation is scoped to keep the cache effective under a simulation's
// per-tick mutation rate: entity lifecycle changes wipe everything (any
// query's membership may change), while value mutations only drop entries
// whose key mentions a touched component.
type CachedStore struct {
	inner EntityComponentStore
	cache *QueryCache
}

func NewCachedStore(inner EntityComponentStore, cache *QueryCache) *CachedStore {
	return &CachedStore{inner: inner, cache: cache}
}

// Cache exposes the underlying query cache for diagnostics.
func (s *CachedStore) Cache() *QueryCache {
	return s.cache
}

func (s *CachedStore) CreateEntity(id int64) error {
	if err := s.inner.CreateEntity(id); err != nil {
		return err
	}
	s.cache.InvalidateAll()
	return nil
}

func (s *CachedStore) DeleteEntity(id int64) {
	s.inner.DeleteEntity(id)
	s.cache.InvalidateAll()
}

func (s *CachedStore) AttachComponent(id, componentID int64, value float32) error {
	if err := s.inner.AttachComponent(id, componentID, value); err != nil {
		return err
	}
	s.cache.InvalidateComponent(componentID)
	return nil
}

func (s *CachedStore) AttachComponents(id int64, componentIDs []int64, values []float32) error {
	if err := s.inner.AttachComponents(id, componentIDs, values); err != nil {
		return err
	}
	for _, cid := range componentIDs {
		s.cache.InvalidateComponent(cid)
	}
	return nil
}

func (s *CachedStore) RemoveComponent(id, componentID int64) {
	s.inner.RemoveComponent(id, componentID)
	s.cache.InvalidateComponent(componentID)
}

func (s *CachedStore) GetComponent(id, componentID int64) float32 {
	return s.inner.GetComponent(id, componentID)
}

func (s *CachedStore) GetComponents(id int64, componentIDs []int64, buf []float32) error {
	return s.inner.GetComponents(id, componentIDs, buf)
}

func (s *CachedStore) HasComponent(id, componentID int64) bool {
	return s.inner.HasComponent(id, componentID)
}

func (s *CachedStore) EntitiesWith(componentIDs ...int64) map[int64]struct{} {
	if cached := s.cache.Get(componentIDs); cached != nil {
		return cached
	}
	result := s.inner.EntitiesWith(componentIDs...)
	s.cache.Put(componentIDs, result)
	return result
}

func (s *CachedStore) EntityCount() int {
	return s.inner.EntityCount()
}

func (s *CachedStore) Reset() {
	s.inner.Reset()
	s.cache.InvalidateAll()
}
