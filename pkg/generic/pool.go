// Package generic holds small type-parameterized utilities shared across
// the kernel.
package generic

import "sync"

// Pool is a typed wrapper over sync.Pool.
type Pool[T any] struct {
	pool sync.Pool
}

func NewPool[T any](generate func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return generate()
			},
		},
	}
}

// NewBufferPool pools float32 scratch buffers for component batch reads.
// Buffers come out with zero length and at least the given capacity; callers
// reslice to the read width and put them back length-zero.
func NewBufferPool(capacity int) *Pool[[]float32] {
	return NewPool(func() []float32 {
		return make([]float32, 0, capacity)
	})
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	p.pool.Put(value)
}
