package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempestsim/tempest/internal/core/observability/log"
)

func TestPermissionedStore_GatesWritesByLevel(t *testing.T) {
	base := NewArrayStore(Config{MaxEntities: 10, MaxComponents: 8}, log.Nop())
	registry := NewPermissionRegistry()
	registry.Register(Component{ID: 100, Name: "HEALTH", Permission: LevelModule})
	registry.Register(Component{ID: 200, Name: "ENTITY_ID", Permission: LevelKernel})

	public := NewPermissionedStore(base, registry, LevelPublic)
	module := NewPermissionedStore(base, registry, LevelModule)

	assert.ErrorIs(t, public.AttachComponent(1, 100, 1), ErrPermissionDenied)
	assert.ErrorIs(t, module.AttachComponent(1, 200, 1), ErrPermissionDenied)
	require.NoError(t, module.AttachComponent(1, 100, 1))

	// Unregistered components default to public.
	require.NoError(t, public.AttachComponent(1, 300, 1))

	// Reads are never gated.
	assert.Equal(t, float32(1), public.GetComponent(1, 100))

	// Reset is a kernel-only operation.
	public.Reset()
	assert.Equal(t, 1, base.EntityCount())
}

func TestPermissionedStore_BatchRejectedBeforeApply(t *testing.T) {
	base := NewArrayStore(Config{MaxEntities: 10, MaxComponents: 8}, log.Nop())
	registry := NewPermissionRegistry()
	registry.Register(Component{ID: 200, Name: "LOCKED", Permission: LevelKernel})

	public := NewPermissionedStore(base, registry, LevelPublic)

	err := public.AttachComponents(1, []int64{100, 200}, []float32{1, 2})
	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.True(t, IsNull(base.GetComponent(1, 100)))
}
