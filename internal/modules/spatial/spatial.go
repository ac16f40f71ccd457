// Package spatial tracks entity position and velocity and integrates
// movement each tick. Its export is the canonical way other modules read or
// write positions.
package spatial

import (
	"fmt"

	"github.com/tempestsim/tempest/internal/core/command"
	"github.com/tempestsim/tempest/internal/core/module"
	"github.com/tempestsim/tempest/internal/core/observability/log"
	"github.com/tempestsim/tempest/internal/core/store"
)

const (
	ModuleName  = "spatial"
	FactoryName = "tempest.spatial"
	version     = "1.0.0"
)

// Exports is the capability spatial publishes for other modules.
type Exports interface {
	Position(entityID int64) (x, y float32)
	SetPosition(entityID int64, x, y float32) error
	Velocity(entityID int64) (vx, vy float32)
	SetVelocity(entityID int64, vx, vy float32) error
	// Moving returns the entities carrying both position and velocity.
	Moving() map[int64]struct{}
}

func init() {
	module.Register(FactoryName, module.FactoryFunc(New))
}

// Module implements module.Module and Exports.
type Module struct {
	store store.EntityComponentStore
	log   log.Log

	posX store.Component
	posY store.Component
	velX store.Component
	velY store.Component
}

var (
	_ module.Module = (*Module)(nil)
	_ Exports       = (*Module)(nil)
)

func New(ctx *module.Context) (module.Module, error) {
	m := &Module{
		store: ctx.Store,
		log:   ctx.Log,
		posX:  ctx.Component("POSITION_X"),
		posY:  ctx.Component("POSITION_Y"),
		velX:  ctx.Component("VELOCITY_X"),
		velY:  ctx.Component("VELOCITY_Y"),
	}
	ctx.RegisterExports(Exports(m))
	return m, nil
}

func (m *Module) Name() string    { return ModuleName }
func (m *Module) Version() string { return version }

func (m *Module) Components() []store.Component {
	return []store.Component{m.posX, m.posY, m.velX, m.velY}
}

func (m *Module) FlagComponent() store.Component { return m.posX }

func (m *Module) Systems() []module.System {
	return []module.System{
		module.SystemFunc{SystemName: "movement", Fn: m.integrate},
	}
}

func (m *Module) Commands() []command.Command {
	return []command.Command{
		command.NewFunc("spatial.place",
			map[string]string{"entity_id": "int64", "x": "float32", "y": "float32"},
			m.placeCommand,
		),
		command.NewFunc("spatial.move",
			map[string]string{"entity_id": "int64", "vx": "float32", "vy": "float32"},
			m.moveCommand,
		),
	}
}

// integrate advances every moving entity by its velocity, one step per tick.
func (m *Module) integrate(tick int64) error {
	for id := range m.Moving() {
		x, y := m.Position(id)
		vx, vy := m.Velocity(id)
		if err := m.SetPosition(id, x+vx, y+vy); err != nil {
			return fmt.Errorf("movement tick %d entity %d: %w", tick, id, err)
		}
	}
	return nil
}

func (m *Module) Position(entityID int64) (float32, float32) {
	return m.store.GetComponent(entityID, m.posX.ID),
		m.store.GetComponent(entityID, m.posY.ID)
}

func (m *Module) SetPosition(entityID int64, x, y float32) error {
	return m.store.AttachComponents(entityID,
		[]int64{m.posX.ID, m.posY.ID}, []float32{x, y})
}

func (m *Module) Velocity(entityID int64) (float32, float32) {
	return m.store.GetComponent(entityID, m.velX.ID),
		m.store.GetComponent(entityID, m.velY.ID)
}

func (m *Module) SetVelocity(entityID int64, vx, vy float32) error {
	return m.store.AttachComponents(entityID,
		[]int64{m.velX.ID, m.velY.ID}, []float32{vx, vy})
}

func (m *Module) Moving() map[int64]struct{} {
	return m.store.EntitiesWith(m.posX.ID, m.posY.ID, m.velX.ID, m.velY.ID)
}

func (m *Module) placeCommand(p command.Payload) error {
	entityID, ok := p.Int64("entity_id")
	if !ok {
		return fmt.Errorf("spatial.place: missing entity_id")
	}
	x, _ := p.Float32("x")
	y, _ := p.Float32("y")
	return m.SetPosition(entityID, x, y)
}

func (m *Module) moveCommand(p command.Payload) error {
	entityID, ok := p.Int64("entity_id")
	if !ok {
		return fmt.Errorf("spatial.move: missing entity_id")
	}
	vx, _ := p.Float32("vx")
	vy, _ := p.Float32("vy")
	return m.SetVelocity(entityID, vx, vy)
}
