package store

import (
	"fmt"
	"sync"
)

// PermissionRegistry records the write level of every component defined in a
// container. Modules register their components when they load.
type PermissionRegistry struct {
	mu     sync.RWMutex
	levels map[int64]Level
}

func NewPermissionRegistry() *PermissionRegistry {
	return &PermissionRegistry{levels: make(map[int64]Level)}
}

func (r *PermissionRegistry) Register(c Component) {
	r.mu.Lock()
	r.levels[c.ID] = c.Permission
	r.mu.Unlock()
}

// LevelOf returns the registered level for a component id. Unregistered
// components default to public.
func (r *PermissionRegistry) LevelOf(componentID int64) Level {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.levels[componentID]
}

var _ EntityComponentStore = (*PermissionedStore)(nil)

// PermissionedStore is a scoped store view handed to module code. Writes to
// components registered above the view's level are rejected; reads pass
// through unchanged.
type PermissionedStore struct {
	inner    EntityComponentStore
	registry *PermissionRegistry
	level    Level
}

func NewPermissionedStore(inner EntityComponentStore, registry *PermissionRegistry, level Level) *PermissionedStore {
	return &PermissionedStore{inner: inner, registry: registry, level: level}
}

func (s *PermissionedStore) checkWrite(componentID int64) error {
	if s.registry.LevelOf(componentID) > s.level {
		return fmt.Errorf("%w: component %d", ErrPermissionDenied, componentID)
	}
	return nil
}

func (s *PermissionedStore) CreateEntity(id int64) error {
	return s.inner.CreateEntity(id)
}

func (s *PermissionedStore) DeleteEntity(id int64) {
	s.inner.DeleteEntity(id)
}

func (s *PermissionedStore) AttachComponent(id, componentID int64, value float32) error {
	if err := s.checkWrite(componentID); err != nil {
		return err
	}
	return s.inner.AttachComponent(id, componentID, value)
}

func (s *PermissionedStore) AttachComponents(id int64, componentIDs []int64, values []float32) error {
	for _, cid := range componentIDs {
		if err := s.checkWrite(cid); err != nil {
			return err
		}
	}
	return s.inner.AttachComponents(id, componentIDs, values)
}

func (s *PermissionedStore) RemoveComponent(id, componentID int64) {
	if s.checkWrite(componentID) != nil {
		return
	}
	s.inner.RemoveComponent(id, componentID)
}

func (s *PermissionedStore) GetComponent(id, componentID int64) float32 {
	return s.inner.GetComponent(id, componentID)
}

func (s *PermissionedStore) GetComponents(id int64, componentIDs []int64, buf []float32) error {
	return s.inner.GetComponents(id, componentIDs, buf)
}

func (s *PermissionedStore) HasComponent(id, componentID int64) bool {
	return s.inner.HasComponent(id, componentID)
}

func (s *PermissionedStore) EntitiesWith(componentIDs ...int64) map[int64]struct{} {
	return s.inner.EntitiesWith(componentIDs...)
}

func (s *PermissionedStore) EntityCount() int {
	return s.inner.EntityCount()
}

// Reset is kernel-only; module views must not clear the container.
func (s *PermissionedStore) Reset() {
	if s.level >= LevelKernel {
		s.inner.Reset()
	}
}
