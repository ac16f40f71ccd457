// Package entitymod provides entity lifecycle as a module: identity, match
// and owner tracking, spawn/destroy commands, and an export other modules
// use to allocate entities.
package entitymod

import (
	"fmt"
	"sync/atomic"

	"github.com/tempestsim/tempest/internal/core/command"
	"github.com/tempestsim/tempest/internal/core/module"
	"github.com/tempestsim/tempest/internal/core/observability/log"
	"github.com/tempestsim/tempest/internal/core/store"
)

const (
	ModuleName  = "entity"
	FactoryName = "tempest.entity"
	version     = "1.0.0"
)

// Exports is the capability entitymod publishes for other modules.
type Exports interface {
	// Spawn allocates a fresh entity id and attaches identity components.
	Spawn(matchID, ownerID int64) (int64, error)
	// Destroy removes the entity and all its components.
	Destroy(entityID int64)
	// EntityComponent is the identity column other modules may include in
	// their snapshot sections.
	EntityComponent() store.Component
	// MatchComponent scopes entities to a match.
	MatchComponent() store.Component
}

func init() {
	module.Register(FactoryName, module.FactoryFunc(New))
}

// Module implements module.Module and Exports.
type Module struct {
	store store.EntityComponentStore
	log   log.Log

	entityID store.Component
	matchID  store.Component
	ownerID  store.Component

	nextID atomic.Int64
}

var (
	_ module.Module = (*Module)(nil)
	_ Exports       = (*Module)(nil)
)

func New(ctx *module.Context) (module.Module, error) {
	m := &Module{
		store:    ctx.Store,
		log:      ctx.Log,
		entityID: ctx.ProtectedComponent("ENTITY_ID", store.LevelModule),
		matchID:  ctx.ProtectedComponent("MATCH_ID", store.LevelModule),
		ownerID:  ctx.ProtectedComponent("OWNER_ID", store.LevelModule),
	}
	ctx.RegisterExports(Exports(m))
	return m, nil
}

func (m *Module) Name() string    { return ModuleName }
func (m *Module) Version() string { return version }

func (m *Module) Components() []store.Component {
	return []store.Component{m.entityID, m.matchID, m.ownerID}
}

func (m *Module) FlagComponent() store.Component { return m.entityID }

func (m *Module) Systems() []module.System { return nil }

func (m *Module) Commands() []command.Command {
	return []command.Command{
		command.NewFunc("entity.spawn",
			map[string]string{"match_id": "int64", "owner_id": "int64"},
			m.spawnCommand,
		),
		command.NewFunc("entity.destroy",
			map[string]string{"entity_id": "int64"},
			m.destroyCommand,
		),
	}
}

func (m *Module) Spawn(matchID, ownerID int64) (int64, error) {
	id := m.nextID.Add(1)
	err := m.store.AttachComponents(id,
		[]int64{m.entityID.ID, m.matchID.ID, m.ownerID.ID},
		[]float32{float32(id), float32(matchID), float32(ownerID)},
	)
	if err != nil {
		return 0, fmt.Errorf("spawn entity %d: %w", id, err)
	}
	m.log.Debug("entity spawned",
		log.Int64("entity", id),
		log.Int64("match", matchID),
	)
	return id, nil
}

func (m *Module) Destroy(entityID int64) {
	m.store.DeleteEntity(entityID)
}

func (m *Module) EntityComponent() store.Component { return m.entityID }
func (m *Module) MatchComponent() store.Component  { return m.matchID }

func (m *Module) spawnCommand(p command.Payload) error {
	matchID, ok := p.Int64("match_id")
	if !ok {
		return fmt.Errorf("entity.spawn: missing match_id")
	}
	ownerID, ok := p.Int64("owner_id")
	if !ok {
		return fmt.Errorf("entity.spawn: missing owner_id")
	}
	_, err := m.Spawn(matchID, ownerID)
	return err
}

func (m *Module) destroyCommand(p command.Payload) error {
	entityID, ok := p.Int64("entity_id")
	if !ok {
		return fmt.Errorf("entity.destroy: missing entity_id")
	}
	m.Destroy(entityID)
	return nil
}
