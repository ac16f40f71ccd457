// Package module defines the pluggable capability unit of the simulation
// kernel and the manager that discovers, instantiates, and hot-reloads such
// units from bundle manifests on disk.
package module

import (
	"github.com/tempestsim/tempest/internal/core/command"
	"github.com/tempestsim/tempest/internal/core/store"
)

// System is a per-tick behavior unit. Systems registered by one module run
// in the order the module returns them; across modules they run in module
// registration order.
type System interface {
	Name() string
	Update(tick int64) error
}

// Module is a named bundle of components, systems, and commands forming one
// engine capability. Instances are produced by a Factory and cached by the
// Manager under Name().
type Module interface {
	Name() string
	Version() string

	// Components lists every component the module defines. The snapshot
	// builder exports these per matched entity.
	Components() []store.Component

	// FlagComponent marks the entities the module tracks. An entity carrying
	// this component is included in the module's snapshot section.
	FlagComponent() store.Component

	Systems() []System
	Commands() []command.Command
}

// SystemFunc adapts a plain function to the System interface.
type SystemFunc struct {
	SystemName string
	Fn         func(tick int64) error
}

func (s SystemFunc) Name() string { return s.SystemName }

func (s SystemFunc) Update(tick int64) error { return s.Fn(tick) }
