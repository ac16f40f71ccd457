package generic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolReusesValues(t *testing.T) {
	p := NewPool(func() []float32 { return make([]float32, 0, 8) })

	buf := p.Get()
	assert.Equal(t, 8, cap(buf))
	p.Put(buf[:0])

	again := p.Get()
	assert.Empty(t, again)
}

func TestBufferPoolShape(t *testing.T) {
	p := NewBufferPool(16)

	buf := p.Get()
	assert.Empty(t, buf)
	assert.GreaterOrEqual(t, cap(buf), 16)

	buf = append(buf, 1, 2, 3)
	p.Put(buf[:0])
	assert.Empty(t, p.Get())
}
