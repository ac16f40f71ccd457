package store

import (
	"fmt"

	"github.com/tempestsim/tempest/internal/core/observability/log"
)

var _ EntityComponentStore = (*ArrayStore)(nil)

// ArrayStore is the base EntityComponentStore implementation. Component
// values live in one flat float32 pool where each entity occupies a
// contiguous row of maxComponents cells. Rows freed by entity deletion are
// reclaimed FIFO for new entities, so the pool never fragments or grows.
//
// ArrayStore performs no locking of its own; concurrency is the
// responsibility of the LockingStore decorator.
type ArrayStore struct {
	maxEntities   int
	maxComponents int

	pool        []float32
	entityRow   map[int64]int // entity id -> offset of its row in pool
	compCol     map[int64]int // component id -> column inside a row
	reclaimed   []int         // freed row offsets, reused in FIFO order
	nextFreeRow int

	log log.Log
}

// NewArrayStore allocates a store with fixed capacity. The pool is allocated
// up front and reused across Reset calls.
func NewArrayStore(cfg Config, logger log.Log) *ArrayStore {
	s := &ArrayStore{
		maxEntities:   cfg.MaxEntities,
		maxComponents: cfg.MaxComponents,
		pool:          make([]float32, cfg.MaxEntities*cfg.MaxComponents),
		entityRow:     make(map[int64]int, cfg.MaxEntities),
		compCol:       make(map[int64]int, cfg.MaxComponents),
		log:           logger,
	}
	fillNull(s.pool)
	return s
}

func fillNull(p []float32) {
	for i := range p {
		p[i] = Null
	}
}

func (s *ArrayStore) CreateEntity(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: entity id %d", ErrOutOfRange, id)
	}
	if _, ok := s.entityRow[id]; ok {
		return nil
	}
	_, err := s.allocateRow(id)
	return err
}

func (s *ArrayStore) DeleteEntity(id int64) {
	row, ok := s.entityRow[id]
	if !ok {
		return
	}
	fillNull(s.pool[row : row+s.maxComponents])
	s.reclaimed = append(s.reclaimed, row)
	delete(s.entityRow, id)
}

func (s *ArrayStore) AttachComponent(id, componentID int64, value float32) error {
	row, err := s.rowFor(id)
	if err != nil {
		return err
	}
	col, err := s.colFor(componentID)
	if err != nil {
		return err
	}
	s.pool[row+col] = value
	return nil
}

func (s *ArrayStore) AttachComponents(id int64, componentIDs []int64, values []float32) error {
	if len(componentIDs) != len(values) {
		return fmt.Errorf("%w: %d component ids, %d values", ErrBufferMismatch, len(componentIDs), len(values))
	}
	// Validate the whole batch before touching the pool so it applies as a
	// unit or not at all. Repeated ids count one column.
	var newIDs map[int64]struct{}
	for _, cid := range componentIDs {
		if cid <= 0 {
			return fmt.Errorf("%w: component id %d", ErrOutOfRange, cid)
		}
		if _, ok := s.compCol[cid]; ok {
			continue
		}
		if newIDs == nil {
			newIDs = make(map[int64]struct{}, len(componentIDs))
		}
		newIDs[cid] = struct{}{}
	}
	if len(s.compCol)+len(newIDs) > s.maxComponents {
		return fmt.Errorf("%w: component table full (%d)", ErrCapacityExceeded, s.maxComponents)
	}
	row, err := s.rowFor(id)
	if err != nil {
		return err
	}
	for i, cid := range componentIDs {
		col, err := s.colFor(cid)
		if err != nil {
			return err
		}
		s.pool[row+col] = values[i]
	}
	return nil
}

func (s *ArrayStore) RemoveComponent(id, componentID int64) {
	row, ok := s.entityRow[id]
	if !ok {
		return
	}
	col, ok := s.compCol[componentID]
	if !ok {
		return
	}
	s.pool[row+col] = Null
}

func (s *ArrayStore) GetComponent(id, componentID int64) float32 {
	row, ok := s.entityRow[id]
	if !ok {
		return Null
	}
	col, ok := s.compCol[componentID]
	if !ok {
		return Null
	}
	return s.pool[row+col]
}

func (s *ArrayStore) GetComponents(id int64, componentIDs []int64, buf []float32) error {
	if len(componentIDs) != len(buf) {
		return fmt.Errorf("%w: %d component ids, %d buffer cells", ErrBufferMismatch, len(componentIDs), len(buf))
	}
	row, ok := s.entityRow[id]
	if !ok {
		fillNull(buf)
		return nil
	}
	for i, cid := range componentIDs {
		col, ok := s.compCol[cid]
		if !ok {
			buf[i] = Null
			continue
		}
		buf[i] = s.pool[row+col]
	}
	return nil
}

func (s *ArrayStore) HasComponent(id, componentID int64) bool {
	return !IsNull(s.GetComponent(id, componentID))
}

func (s *ArrayStore) EntitiesWith(componentIDs ...int64) map[int64]struct{} {
	result := make(map[int64]struct{})
	for id, row := range s.entityRow {
		if s.rowHasAll(row, componentIDs) {
			result[id] = struct{}{}
		}
	}
	return result
}

func (s *ArrayStore) EntityCount() int {
	return len(s.entityRow)
}

func (s *ArrayStore) Reset() {
	s.log.Debug("store reset",
		log.Int("entities", len(s.entityRow)),
		log.Int("components", len(s.compCol)),
	)
	fillNull(s.pool)
	clear(s.entityRow)
	clear(s.compCol)
	s.reclaimed = s.reclaimed[:0]
	s.nextFreeRow = 0
}

func (s *ArrayStore) rowHasAll(row int, componentIDs []int64) bool {
	for _, cid := range componentIDs {
		col, ok := s.compCol[cid]
		if !ok || IsNull(s.pool[row+col]) {
			return false
		}
	}
	return true
}

// rowFor returns the entity's row offset, allocating one if the entity does
// not exist yet.
func (s *ArrayStore) rowFor(id int64) (int, error) {
	if id <= 0 {
		return 0, fmt.Errorf("%w: entity id %d", ErrOutOfRange, id)
	}
	if row, ok := s.entityRow[id]; ok {
		return row, nil
	}
	return s.allocateRow(id)
}

func (s *ArrayStore) allocateRow(id int64) (int, error) {
	var row int
	switch {
	case s.nextFreeRow < s.maxEntities:
		row = s.nextFreeRow * s.maxComponents
		s.nextFreeRow++
	case len(s.reclaimed) > 0:
		row = s.reclaimed[0]
		s.reclaimed = s.reclaimed[1:]
	default:
		s.log.Warn("entity pool full", log.Int("max_entities", s.maxEntities))
		return 0, fmt.Errorf("%w: entity pool full (%d)", ErrCapacityExceeded, s.maxEntities)
	}
	s.entityRow[id] = row
	return row, nil
}

func (s *ArrayStore) colFor(componentID int64) (int, error) {
	if componentID <= 0 {
		return 0, fmt.Errorf("%w: component id %d", ErrOutOfRange, componentID)
	}
	if col, ok := s.compCol[componentID]; ok {
		return col, nil
	}
	if len(s.compCol) >= s.maxComponents {
		s.log.Warn("component table full", log.Int("max_components", s.maxComponents))
		return 0, fmt.Errorf("%w: component table full (%d)", ErrCapacityExceeded, s.maxComponents)
	}
	col := len(s.compCol)
	s.compCol[componentID] = col
	return col, nil
}
