// Package container wires store, modules, command queue, and snapshot
// builder into an isolated simulation environment driven by a tick loop.
package container

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tempestsim/tempest/internal/core/bench"
	"github.com/tempestsim/tempest/internal/core/command"
	"github.com/tempestsim/tempest/internal/core/module"
	"github.com/tempestsim/tempest/internal/core/observability/log"
	"github.com/tempestsim/tempest/internal/core/snapshot"
	"github.com/tempestsim/tempest/internal/core/store"
)

// Status is the container lifecycle state.
type Status int32

const (
	StatusCreated Status = iota
	StatusRunning
	StatusPaused
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Container is an isolated simulation environment. One tick goroutine
// drives Advance; external request goroutines may query the store and
// enqueue commands concurrently.
type Container struct {
	id  string
	cfg Config
	log log.Log

	store   store.EntityComponentStore
	public  store.EntityComponentStore
	cache   *store.QueryCache
	modCtx  *module.Context
	modules *module.Manager
	queue   *command.Queue
	bench   *bench.Recorder

	builder *snapshot.Builder
	current atomic.Pointer[snapshot.Snapshot]

	status  atomic.Int32
	tick    atomic.Int64
	metrics metricsRecorder
}

// New builds a container from the config. Store capacity is allocated here
// and never changes afterwards.
func New(cfg Config, logger log.Log) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	logger = logger.With(log.String("container", cfg.Name), log.String("id", id))

	s, cache, err := store.New(cfg.storeConfig(), logger)
	if err != nil {
		return nil, err
	}

	rec := bench.NewRecorder()
	modCtx := module.NewContext(s, rec, logger)
	manager := module.NewManager(cfg.BundleDir, modCtx, logger)

	c := &Container{
		id:      id,
		cfg:     cfg,
		log:     logger,
		store:   s,
		public:  store.NewPermissionedStore(s, modCtx.Permissions(), store.LevelPublic),
		cache:   cache,
		modCtx:  modCtx,
		modules: manager,
		queue:   command.NewQueue(logger),
		bench:   rec,
		builder: snapshot.NewBuilder(s, manager, logger),
	}
	c.current.Store(snapshot.Empty())
	c.status.Store(int32(StatusCreated))
	return c, nil
}

func (c *Container) ID() string           { return c.id }
func (c *Container) Name() string         { return c.cfg.Name }
func (c *Container) Tick() int64          { return c.tick.Load() }
func (c *Container) Status() Status       { return Status(c.status.Load()) }
func (c *Container) Metrics() TickMetrics { return c.metrics.snapshot() }

// Store exposes the store to external request threads. The view is
// public-level: ad hoc reads and writes to public components pass through,
// writes to module- or kernel-protected components are rejected.
func (c *Container) Store() store.EntityComponentStore { return c.public }

// Modules exposes the manager for list/install/reload management calls.
func (c *Container) Modules() *module.Manager { return c.modules }

// Start scans the bundle directory and moves the container to running.
func (c *Container) Start() error {
	if !c.status.CompareAndSwap(int32(StatusCreated), int32(StatusRunning)) &&
		!c.status.CompareAndSwap(int32(StatusPaused), int32(StatusRunning)) {
		return fmt.Errorf("%w: start from %s", ErrInvalidState, c.Status())
	}
	if err := c.modules.ReloadInstalled(); err != nil {
		c.status.Store(int32(StatusStopped))
		return err
	}
	c.log.Info("container started")
	return nil
}

// Pause suspends tick processing. Enqueued commands stay queued.
func (c *Container) Pause() error {
	if !c.status.CompareAndSwap(int32(StatusRunning), int32(StatusPaused)) {
		return fmt.Errorf("%w: pause from %s", ErrInvalidState, c.Status())
	}
	c.log.Info("container paused")
	return nil
}

// Stop is terminal. A stopped container cannot be restarted.
func (c *Container) Stop() {
	prev := Status(c.status.Swap(int32(StatusStopped)))
	if prev != StatusStopped {
		c.log.Info("container stopped", log.Int64("tick", c.tick.Load()))
	}
}

// Advance executes one tick: drain queued commands, run every system in
// module registration order, rebuild the snapshot. Commands and systems
// mutate the store before the snapshot is taken, so the snapshot always
// reflects fully settled state for the tick.
//
// A failing system is logged and skipped for the tick; it does not abort
// the remaining systems.
func (c *Container) Advance() error {
	if c.Status() != StatusRunning {
		return fmt.Errorf("%w: advance from %s", ErrInvalidState, c.Status())
	}
	started := time.Now()
	tick := c.tick.Add(1)

	cmdScope := c.bench.Begin("commands")
	c.queue.ExecuteCommands(c.cfg.CommandsPerTick)
	cmdScope.End()

	mods, err := c.modules.ResolveAllModules()
	if err != nil {
		return err
	}
	for _, mod := range mods {
		for _, sys := range mod.Systems() {
			c.runSystem(mod.Name(), sys, tick)
		}
	}

	snapScope := c.bench.Begin("snapshot")
	snap, err := c.builder.Build(tick)
	snapScope.End()
	if err != nil {
		return err
	}
	c.current.Store(snap)

	c.metrics.record(time.Since(started))
	return nil
}

func (c *Container) runSystem(modName string, sys module.System, tick int64) {
	scope := c.bench.Begin(modName + "." + sys.Name())
	defer scope.End()
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("system panicked",
				log.String("system", sys.Name()),
				log.Int64("tick", tick),
				log.Any("panic", r),
			)
		}
	}()
	if err := sys.Update(tick); err != nil {
		c.log.Error("system failed",
			log.String("system", sys.Name()),
			log.Int64("tick", tick),
			log.Err(err),
		)
	}
}

// EnqueueCommand resolves a command by name across loaded modules and
// appends it with the payload. Submission is fire-and-forget; execution
// failures surface through CommandErrors.
func (c *Container) EnqueueCommand(name string, payload command.Payload) error {
	mods, err := c.modules.ResolveAllModules()
	if err != nil {
		return err
	}
	for _, mod := range mods {
		for _, cmd := range mod.Commands() {
			if cmd.Name() == name {
				c.queue.Enqueue(cmd, payload)
				return nil
			}
		}
	}
	return fmt.Errorf("%w: %s", ErrCommandNotFound, name)
}

// CommandErrors drains the queue's accumulated execution failures.
func (c *Container) CommandErrors() []*command.ExecutionError {
	return c.queue.Errors()
}

// QueueSize reports pending commands.
func (c *Container) QueueSize() int { return c.queue.Size() }

// Snapshot returns the most recent tick's snapshot.
func (c *Container) Snapshot() *snapshot.Snapshot { return c.current.Load() }

// BuildMatchSnapshot produces an on-demand snapshot restricted to one match.
func (c *Container) BuildMatchSnapshot(matchComponentID, matchID int64) (*snapshot.Snapshot, error) {
	return c.builder.BuildForMatch(c.tick.Load(), matchComponentID, matchID)
}

// DrainMeasurements hands the tick's timing scopes to an observability
// consumer and clears them.
func (c *Container) DrainMeasurements() []bench.Measurement {
	return c.bench.Drain()
}

// CacheStats reports query cache effectiveness.
func (c *Container) CacheStats() store.CacheStats { return c.cache.Stats() }

// AutoAdvance drives Advance on the configured interval until the context
// is canceled or the container stops. Paused containers skip ticks.
func (c *Container) AutoAdvance(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			switch c.Status() {
			case StatusStopped:
				return nil
			case StatusPaused:
				continue
			case StatusRunning:
				if err := c.Advance(); err != nil {
					c.log.Error("tick failed", log.Err(err))
				}
			default:
				continue
			}
		}
	}
}
