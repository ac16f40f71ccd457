package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempestsim/tempest/internal/core/command"
	"github.com/tempestsim/tempest/internal/core/module"
	"github.com/tempestsim/tempest/internal/core/observability/log"
	"github.com/tempestsim/tempest/internal/core/store"
)

type fixedModule struct {
	name    string
	version string
	comps   []store.Component
	flag    store.Component
}

func (m *fixedModule) Name() string                   { return m.name }
func (m *fixedModule) Version() string                { return m.version }
func (m *fixedModule) Components() []store.Component  { return m.comps }
func (m *fixedModule) FlagComponent() store.Component { return m.flag }
func (m *fixedModule) Systems() []module.System       { return nil }
func (m *fixedModule) Commands() []command.Command    { return nil }

type fixedResolver struct{ mods []module.Module }

func (r *fixedResolver) ResolveAllModules() ([]module.Module, error) { return r.mods, nil }

func TestBuildOrdersEntitiesAscending(t *testing.T) {
	s, _, err := store.New(store.Config{MaxEntities: 64, MaxComponents: 16}, log.Nop())
	require.NoError(t, err)

	entityID := store.Component{ID: store.NextComponentID(), Name: "ENTITY_ID"}
	posX := store.Component{ID: store.NextComponentID(), Name: "POSITION_X"}
	mod := &fixedModule{
		name:    "spatial",
		version: "1.0",
		comps:   []store.Component{entityID, posX},
		flag:    entityID,
	}

	for _, id := range []int64{7, 2, 5} {
		require.NoError(t, s.AttachComponent(id, entityID.ID, float32(id)))
		require.NoError(t, s.AttachComponent(id, posX.ID, float32(id)*10))
	}

	b := NewBuilder(s, &fixedResolver{mods: []module.Module{mod}}, log.Nop())
	snap, err := b.Build(3)
	require.NoError(t, err)

	assert.Equal(t, int64(3), snap.Tick)
	require.Len(t, snap.Modules, 1)
	md := snap.Modules[0]
	assert.Equal(t, "spatial", md.Name)
	assert.Equal(t, "1.0", md.Version)
	require.Len(t, md.Components, 2)
	assert.Equal(t, []float32{2, 5, 7}, md.Components[0].Values)
	assert.Equal(t, []float32{20, 50, 70}, md.Components[1].Values)
}

func TestBuildSkipsUnflaggedEntities(t *testing.T) {
	s, _, err := store.New(store.Config{MaxEntities: 64, MaxComponents: 16}, log.Nop())
	require.NoError(t, err)

	entityID := store.Component{ID: store.NextComponentID(), Name: "ENTITY_ID"}
	other := store.Component{ID: store.NextComponentID(), Name: "OTHER"}
	mod := &fixedModule{name: "m", version: "1.0", comps: []store.Component{entityID}, flag: entityID}

	require.NoError(t, s.AttachComponent(1, entityID.ID, 1))
	require.NoError(t, s.AttachComponent(2, other.ID, 2))

	b := NewBuilder(s, &fixedResolver{mods: []module.Module{mod}}, log.Nop())
	snap, err := b.Build(1)
	require.NoError(t, err)

	assert.Equal(t, []float32{1}, snap.Modules[0].Components[0].Values)
}

func TestBuildForMatchFilters(t *testing.T) {
	s, _, err := store.New(store.Config{MaxEntities: 64, MaxComponents: 16}, log.Nop())
	require.NoError(t, err)

	entityID := store.Component{ID: store.NextComponentID(), Name: "ENTITY_ID"}
	matchID := store.Component{ID: store.NextComponentID(), Name: "MATCH_ID"}
	mod := &fixedModule{
		name:    "entity",
		version: "1.0",
		comps:   []store.Component{entityID, matchID},
		flag:    entityID,
	}

	require.NoError(t, s.AttachComponents(1, []int64{entityID.ID, matchID.ID}, []float32{1, 100}))
	require.NoError(t, s.AttachComponents(2, []int64{entityID.ID, matchID.ID}, []float32{2, 200}))
	require.NoError(t, s.AttachComponent(3, entityID.ID, 3))

	b := NewBuilder(s, &fixedResolver{mods: []module.Module{mod}}, log.Nop())
	snap, err := b.BuildForMatch(1, matchID.ID, 100)
	require.NoError(t, err)

	assert.Equal(t, []float32{1}, snap.Modules[0].Components[0].Values)
	assert.Equal(t, []float32{100}, snap.Modules[0].Components[1].Values)
}
