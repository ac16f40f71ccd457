package store

import "sync/atomic"

// Level controls which callers may write a component. Reads are never gated.
type Level uint8

const (
	// LevelPublic components may be written through any store view.
	LevelPublic Level = iota
	// LevelModule components may only be written by the defining module's
	// systems and commands.
	LevelModule
	// LevelKernel components are reserved for the kernel itself.
	LevelKernel
)

// Component describes a named scalar value slot. Components are defined by
// modules at load time; their ids must be unique within a container.
type Component struct {
	ID         int64
	Name       string
	Permission Level
}

var nextComponentID atomic.Int64

// NextComponentID hands out process-unique component ids for module
// definitions. Ids start at 1; 0 is never a valid component id.
func NextComponentID() int64 {
	return nextComponentID.Add(1)
}

// ComponentIDs extracts the id list from component definitions, preserving
// order.
func ComponentIDs(components []Component) []int64 {
	ids := make([]int64, len(components))
	for i, c := range components {
		ids[i] = c.ID
	}
	return ids
}
