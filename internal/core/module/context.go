package module

import (
	"fmt"
	"sync"

	"github.com/tempestsim/tempest/internal/core/bench"
	"github.com/tempestsim/tempest/internal/core/observability/log"
	"github.com/tempestsim/tempest/internal/core/store"
)

// Context is handed to every factory at construction time. It carries the
// container's store view, the benchmark hook, the component id table, and
// the cross-module export table.
//
// Store is a module-level permissioned view: reads pass through, writes to
// components registered above LevelModule are rejected.
//
// Export lookup is lazy on the consumer side because module load order is
// not guaranteed: a module must not call Exports during construction, only
// on first use inside a system or command.
type Context struct {
	Store store.EntityComponentStore
	Bench *bench.Recorder
	Log   log.Log

	// Params carries the current bundle's manifest parameters. It is
	// replaced per bundle during scanning.
	Params map[string]string

	perms *store.PermissionRegistry

	mu         sync.RWMutex
	exports    []any
	components map[string]store.Component
}

func NewContext(s store.EntityComponentStore, rec *bench.Recorder, logger log.Log) *Context {
	perms := store.NewPermissionRegistry()
	return &Context{
		Store:      store.NewPermissionedStore(s, perms, store.LevelModule),
		Bench:      rec,
		Log:        logger,
		perms:      perms,
		components: map[string]store.Component{},
	}
}

// Component interns a component definition by name: the first call mints the
// id, every later call returns the same definition. Factories re-run on hot
// reload keep addressing the columns their previous incarnation attached
// values to.
func (c *Context) Component(name string) store.Component {
	return c.ProtectedComponent(name, store.LevelPublic)
}

// ProtectedComponent interns a component with a write permission level. The
// level is fixed by whichever call interns the name first.
func (c *Context) ProtectedComponent(name string, level store.Level) store.Component {
	c.mu.Lock()
	defer c.mu.Unlock()
	if comp, ok := c.components[name]; ok {
		return comp
	}
	comp := store.Component{ID: store.NextComponentID(), Name: name, Permission: level}
	c.perms.Register(comp)
	c.components[name] = comp
	return comp
}

// Permissions exposes the registry so the container can build differently
// scoped store views for external callers.
func (c *Context) Permissions() *store.PermissionRegistry { return c.perms }

// RegisterExports publishes a typed capability for other modules to consume.
func (c *Context) RegisterExports(v any) {
	if v == nil {
		return
	}
	c.mu.Lock()
	c.exports = append(c.exports, v)
	c.mu.Unlock()
}

// ClearExports drops all published exports. Called by the manager on reset
// so reconstructed modules re-register fresh instances. Interned components
// survive: ids stay stable across reloads.
func (c *Context) ClearExports() {
	c.mu.Lock()
	c.exports = nil
	c.mu.Unlock()
}

// Exports resolves the first registered export implementing T. Resolution
// failure is fatal to the consuming module and must not be ignored.
func Exports[T any](c *Context) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, v := range c.exports {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: %T", ErrExportsNotFound, zero)
}
