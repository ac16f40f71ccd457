package store

import "sync"

var _ EntityComponentStore = (*LockingStore)(nil)

// LockingStore decorates an EntityComponentStore with a single read/write
// lock: mutations take the lock exclusively, reads and queries share it.
// A batch attach appears atomic to concurrent readers because no reader can
// acquire the lock while the batch is applied.
//
// LockingStore must be the outermost decorator (locking wraps caching wraps
// the array store); New enforces this.
type LockingStore struct {
	inner EntityComponentStore
	mu    sync.RWMutex
}

func NewLockingStore(inner EntityComponentStore) *LockingStore {
	return &LockingStore{inner: inner}
}

func (s *LockingStore) CreateEntity(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.CreateEntity(id)
}

func (s *LockingStore) DeleteEntity(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.DeleteEntity(id)
}

func (s *LockingStore) AttachComponent(id, componentID int64, value float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.AttachComponent(id, componentID, value)
}

func (s *LockingStore) AttachComponents(id int64, componentIDs []int64, values []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.AttachComponents(id, componentIDs, values)
}

func (s *LockingStore) RemoveComponent(id, componentID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.RemoveComponent(id, componentID)
}

func (s *LockingStore) GetComponent(id, componentID int64) float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inner.GetComponent(id, componentID)
}

func (s *LockingStore) GetComponents(id int64, componentIDs []int64, buf []float32) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inner.GetComponents(id, componentIDs, buf)
}

func (s *LockingStore) HasComponent(id, componentID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inner.HasComponent(id, componentID)
}

func (s *LockingStore) EntitiesWith(componentIDs ...int64) map[int64]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inner.EntitiesWith(componentIDs...)
}

func (s *LockingStore) EntityCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inner.EntityCount()
}

func (s *LockingStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.Reset()
}
