package snapshot

import (
	"sort"

	"github.com/tempestsim/tempest/internal/core/module"
	"github.com/tempestsim/tempest/internal/core/observability/log"
	"github.com/tempestsim/tempest/internal/core/store"
	"github.com/tempestsim/tempest/pkg/generic"
)

// ModuleResolver yields the modules whose components a snapshot exports.
type ModuleResolver interface {
	ResolveAllModules() ([]module.Module, error)
}

// Builder assembles full snapshots from current store contents. Every store
// read goes through the locked store, so values are copied out under lock
// and assembled lock-free afterwards.
type Builder struct {
	store    store.EntityComponentStore
	resolver ModuleResolver
	log      log.Log
	buffers  *generic.Pool[[]float32]
}

func NewBuilder(s store.EntityComponentStore, resolver ModuleResolver, logger log.Log) *Builder {
	return &Builder{
		store:    s,
		resolver: resolver,
		log:      logger,
		buffers:  generic.NewBufferPool(64),
	}
}

// Build produces a full snapshot for the given tick: every component value
// of every module-flagged entity, grouped by module, entities in ascending
// id order.
func (b *Builder) Build(tick int64) (*Snapshot, error) {
	return b.build(tick, nil)
}

// BuildForMatch restricts the snapshot to entities whose match component
// equals matchID. Entities without the component are excluded.
func (b *Builder) BuildForMatch(tick int64, matchComponentID, matchID int64) (*Snapshot, error) {
	want := float32(matchID)
	return b.build(tick, func(entityID int64) bool {
		v := b.store.GetComponent(entityID, matchComponentID)
		return !store.IsNull(v) && v == want
	})
}

func (b *Builder) build(tick int64, include func(entityID int64) bool) (*Snapshot, error) {
	mods, err := b.resolver.ResolveAllModules()
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Tick: tick, Modules: make([]ModuleData, 0, len(mods))}
	for _, mod := range mods {
		snap.Modules = append(snap.Modules, b.buildModule(mod, include))
	}
	return snap, nil
}

func (b *Builder) buildModule(mod module.Module, include func(entityID int64) bool) ModuleData {
	comps := mod.Components()
	matched := b.store.EntitiesWith(mod.FlagComponent().ID)

	ids := make([]int64, 0, len(matched))
	for id := range matched {
		if include != nil && !include(id) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	md := ModuleData{
		Name:       mod.Name(),
		Version:    mod.Version(),
		Components: make([]ComponentData, len(comps)),
	}
	for i, c := range comps {
		md.Components[i] = ComponentData{
			Name:   c.Name,
			Values: make([]float32, len(ids)),
		}
	}

	compIDs := store.ComponentIDs(comps)
	buf := b.buffer(len(compIDs))
	defer b.buffers.Put(buf[:0])

	for row, id := range ids {
		if err := b.store.GetComponents(id, compIDs, buf); err != nil {
			b.log.Warn("snapshot read failed",
				log.String("module", mod.Name()),
				log.Int64("entity", id),
				log.Err(err),
			)
			continue
		}
		for i := range compIDs {
			md.Components[i].Values[row] = buf[i]
		}
	}
	return md
}

func (b *Builder) buffer(n int) []float32 {
	buf := b.buffers.Get()
	if cap(buf) < n {
		return make([]float32, n)
	}
	return buf[:n]
}
