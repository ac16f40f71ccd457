package store

import (
	"fmt"
	"math"

	"github.com/tempestsim/tempest/internal/core/observability/log"
)

// Null is the sentinel for an absent component value. NaN is used so that a
// plain equality check against any real value fails, which lets filter code
// skip explicit presence checks.
var Null = float32(math.NaN())

// IsNull reports whether v is the absent-value sentinel.
func IsNull(v float32) bool {
	return v != v
}

// EntityComponentStore is the per-container component storage contract.
//
// Entities are caller-supplied positive int64 handles. Component values are
// float32 scalars; an unattached (entity, component) pair reads as Null.
// Read operations on an unknown entity return Null/false rather than an
// error; structural violations (bad ids, exhausted capacity, mismatched
// buffers) surface as errors to the immediate caller.
type EntityComponentStore interface {
	// CreateEntity registers id. Creating an existing entity is a no-op.
	CreateEntity(id int64) error
	// DeleteEntity removes id and clears all its component values. Deleting
	// an unknown entity is a no-op.
	DeleteEntity(id int64)

	// AttachComponent sets a single component value, creating the entity if
	// it does not exist yet.
	AttachComponent(id, componentID int64, value float32) error
	// AttachComponents applies an index-corresponding batch as a unit: either
	// every pair is applied or none is.
	AttachComponents(id int64, componentIDs []int64, values []float32) error
	// RemoveComponent clears one component value. Unknown entity or
	// component is a no-op.
	RemoveComponent(id, componentID int64)

	// GetComponent returns the value or Null.
	GetComponent(id, componentID int64) float32
	// GetComponents reads a batch into the caller-supplied buffer so the
	// tick loop can query without allocating.
	GetComponents(id int64, componentIDs []int64, buf []float32) error
	// HasComponent reports whether the entity has a non-Null value attached.
	HasComponent(id, componentID int64) bool

	// EntitiesWith returns the entities whose attached component set is a
	// superset of componentIDs. No ids matches every entity.
	EntitiesWith(componentIDs ...int64) map[int64]struct{}

	// EntityCount returns the number of live entities.
	EntityCount() int

	// Reset clears all entity and component data but keeps allocated
	// structures for reuse.
	Reset()
}

// Config fixes store capacity at construction. Exceeding either bound at
// runtime is a hard error, never silent growth.
type Config struct {
	MaxEntities   int `yaml:"max_entities"`
	MaxComponents int `yaml:"max_components"`
}

func (c Config) Validate() error {
	if c.MaxEntities <= 0 {
		return fmt.Errorf("%w: max_entities must be positive, got %d", ErrInvalidConfig, c.MaxEntities)
	}
	if c.MaxComponents <= 0 {
		return fmt.Errorf("%w: max_components must be positive, got %d", ErrInvalidConfig, c.MaxComponents)
	}
	return nil
}

// New builds the production store stack. Composition order is a
// construction-time contract: locking wraps caching wraps the array store,
// so cache fills happen under the shared lock and invalidations under the
// exclusive lock. The QueryCache handle is returned for metrics consumers.
func New(cfg Config, logger log.Log) (EntityComponentStore, *QueryCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	cache := NewQueryCache()
	base := NewArrayStore(cfg, logger)
	return NewLockingStore(NewCachedStore(base, cache)), cache, nil
}
