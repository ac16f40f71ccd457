// Package physics applies gravity to flagged entities by adjusting their
// velocity through the spatial module's export. It demonstrates a
// cross-module dependency: the export is resolved lazily on first use and a
// missing provider is a fatal error for every subsequent tick.
package physics

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/tempestsim/tempest/internal/core/command"
	"github.com/tempestsim/tempest/internal/core/module"
	"github.com/tempestsim/tempest/internal/core/observability/log"
	"github.com/tempestsim/tempest/internal/core/store"
	"github.com/tempestsim/tempest/internal/modules/spatial"
)

const (
	ModuleName  = "physics"
	FactoryName = "tempest.physics"
	version     = "1.0.0"

	defaultGravity = float32(9.81)
)

func init() {
	module.Register(FactoryName, module.FactoryFunc(New))
}

type Module struct {
	ctx     *module.Context
	store   store.EntityComponentStore
	log     log.Log
	gravity float32

	gravityScale store.Component

	spatialOnce sync.Once
	spatial     spatial.Exports
	spatialErr  error
}

var _ module.Module = (*Module)(nil)

func New(ctx *module.Context) (module.Module, error) {
	m := &Module{
		ctx:          ctx,
		store:        ctx.Store,
		log:          ctx.Log,
		gravity:      defaultGravity,
		gravityScale: ctx.Component("GRAVITY_SCALE"),
	}
	if raw, ok := ctx.Params["gravity"]; ok {
		g, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return nil, fmt.Errorf("physics: bad gravity param %q: %w", raw, err)
		}
		m.gravity = float32(g)
	}
	return m, nil
}

func (m *Module) Name() string                   { return ModuleName }
func (m *Module) Version() string                { return version }
func (m *Module) Components() []store.Component  { return []store.Component{m.gravityScale} }
func (m *Module) FlagComponent() store.Component { return m.gravityScale }

func (m *Module) Systems() []module.System {
	return []module.System{
		module.SystemFunc{SystemName: "gravity", Fn: m.applyGravity},
	}
}

func (m *Module) Commands() []command.Command {
	return []command.Command{
		command.NewFunc("physics.enable_gravity",
			map[string]string{"entity_id": "int64", "scale": "float32"},
			m.enableGravityCommand,
		),
		command.NewFunc("physics.disable_gravity",
			map[string]string{"entity_id": "int64"},
			m.disableGravityCommand,
		),
	}
}

// spatialExports resolves the spatial capability once. Module load order is
// not guaranteed, so resolution happens at first use, not at construction.
func (m *Module) spatialExports() (spatial.Exports, error) {
	m.spatialOnce.Do(func() {
		m.spatial, m.spatialErr = module.Exports[spatial.Exports](m.ctx)
		if m.spatialErr != nil {
			m.log.Error("spatial export unavailable, gravity disabled",
				log.Err(m.spatialErr))
		}
	})
	return m.spatial, m.spatialErr
}

func (m *Module) applyGravity(tick int64) error {
	sp, err := m.spatialExports()
	if err != nil {
		return err
	}
	for id := range m.store.EntitiesWith(m.gravityScale.ID) {
		scale := m.store.GetComponent(id, m.gravityScale.ID)
		vx, vy := sp.Velocity(id)
		if store.IsNull(vx) {
			vx = 0
		}
		if store.IsNull(vy) {
			vy = 0
		}
		if err := sp.SetVelocity(id, vx, vy-m.gravity*scale); err != nil {
			return fmt.Errorf("gravity tick %d entity %d: %w", tick, id, err)
		}
	}
	return nil
}

func (m *Module) enableGravityCommand(p command.Payload) error {
	entityID, ok := p.Int64("entity_id")
	if !ok {
		return fmt.Errorf("physics.enable_gravity: missing entity_id")
	}
	scale, ok := p.Float32("scale")
	if !ok {
		scale = 1
	}
	return m.store.AttachComponent(entityID, m.gravityScale.ID, scale)
}

func (m *Module) disableGravityCommand(p command.Payload) error {
	entityID, ok := p.Int64("entity_id")
	if !ok {
		return fmt.Errorf("physics.disable_gravity: missing entity_id")
	}
	m.store.RemoveComponent(entityID, m.gravityScale.ID)
	return nil
}
