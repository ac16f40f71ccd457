package entitymod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempestsim/tempest/internal/core/bench"
	"github.com/tempestsim/tempest/internal/core/command"
	"github.com/tempestsim/tempest/internal/core/module"
	"github.com/tempestsim/tempest/internal/core/observability/log"
	"github.com/tempestsim/tempest/internal/core/store"
)

func newModule(t *testing.T) (*Module, *module.Context) {
	t.Helper()
	s, _, err := store.New(store.Config{MaxEntities: 64, MaxComponents: 16}, log.Nop())
	require.NoError(t, err)
	ctx := module.NewContext(s, bench.NewRecorder(), log.Nop())
	mod, err := New(ctx)
	require.NoError(t, err)
	return mod.(*Module), ctx
}

func TestSpawnAttachesIdentity(t *testing.T) {
	m, _ := newModule(t)

	id, err := m.Spawn(7, 99)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	assert.Equal(t, float32(1), m.store.GetComponent(id, m.entityID.ID))
	assert.Equal(t, float32(7), m.store.GetComponent(id, m.matchID.ID))
	assert.Equal(t, float32(99), m.store.GetComponent(id, m.ownerID.ID))
}

func TestSpawnAllocatesMonotonicIDs(t *testing.T) {
	m, _ := newModule(t)

	a, err := m.Spawn(1, 1)
	require.NoError(t, err)
	b, err := m.Spawn(1, 1)
	require.NoError(t, err)
	assert.Equal(t, a+1, b)
}

func TestDestroyRemovesEntity(t *testing.T) {
	m, _ := newModule(t)

	id, err := m.Spawn(1, 1)
	require.NoError(t, err)
	m.Destroy(id)

	assert.False(t, m.store.HasComponent(id, m.entityID.ID))
	assert.Zero(t, m.store.EntityCount())
}

func TestSpawnCommand(t *testing.T) {
	m, _ := newModule(t)
	cmds := m.Commands()
	require.Len(t, cmds, 2)

	spawn := cmds[0]
	assert.Equal(t, "entity.spawn", spawn.Name())
	require.NoError(t, spawn.Execute(command.Payload{"match_id": 3, "owner_id": 4}))
	assert.Equal(t, 1, m.store.EntityCount())

	assert.Error(t, spawn.Execute(command.Payload{"owner_id": 4}))
	assert.Error(t, spawn.Execute(nil))
}

func TestDestroyCommand(t *testing.T) {
	m, _ := newModule(t)
	id, err := m.Spawn(1, 1)
	require.NoError(t, err)

	destroy := m.Commands()[1]
	assert.Equal(t, "entity.destroy", destroy.Name())
	require.NoError(t, destroy.Execute(command.Payload{"entity_id": id}))
	assert.Zero(t, m.store.EntityCount())

	assert.Error(t, destroy.Execute(nil))
}

func TestExportsRegistered(t *testing.T) {
	m, ctx := newModule(t)

	exp, err := module.Exports[Exports](ctx)
	require.NoError(t, err)
	assert.Equal(t, m.entityID, exp.EntityComponent())
	assert.Equal(t, m.matchID, exp.MatchComponent())
}
