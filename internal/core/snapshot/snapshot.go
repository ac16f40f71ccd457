// Package snapshot produces immutable per-tick views of store contents for
// external export, plus delta compression between consecutive ticks.
package snapshot

import "sort"

// DefaultVersion is used when version metadata is unavailable, such as when
// rebuilding a snapshot from the legacy map format.
const DefaultVersion = "0.0.0"

// EntityIDComponent is the component column carrying entity identity. Delta
// computation keys on it to classify entities as added, modified, or
// removed.
const EntityIDComponent = "ENTITY_ID"

// ComponentData is one component column: the value of a single component
// for every matched entity, in ascending entity id order.
type ComponentData struct {
	Name   string    `json:"name"`
	Values []float32 `json:"values"`
}

// ModuleData groups the component columns one module exports.
type ModuleData struct {
	Name       string          `json:"name"`
	Version    string          `json:"version"`
	Components []ComponentData `json:"components"`
}

// Snapshot is an immutable view of store contents at the end of a tick.
// Consumers must not mutate it; the builder never reuses its slices.
type Snapshot struct {
	Tick    int64        `json:"tick"`
	Modules []ModuleData `json:"modules"`
}

// Empty returns a snapshot with no module data.
func Empty() *Snapshot {
	return &Snapshot{}
}

// Module returns the named module section.
func (s *Snapshot) Module(name string) (ModuleData, bool) {
	for _, m := range s.Modules {
		if m.Name == name {
			return m, true
		}
	}
	return ModuleData{}, false
}

// ToLegacy converts to the flat module → component → values map format used
// by older exporters. Tick and version metadata do not survive.
func (s *Snapshot) ToLegacy() map[string]map[string][]float32 {
	out := make(map[string]map[string][]float32, len(s.Modules))
	for _, mod := range s.Modules {
		comps := make(map[string][]float32, len(mod.Components))
		for _, c := range mod.Components {
			values := make([]float32, len(c.Values))
			copy(values, c.Values)
			comps[c.Name] = values
		}
		out[mod.Name] = comps
	}
	return out
}

// FromLegacy rebuilds a snapshot from the flat map format. Modules and
// components come out in sorted name order and versions reset to
// DefaultVersion.
func FromLegacy(legacy map[string]map[string][]float32) *Snapshot {
	s := &Snapshot{Modules: make([]ModuleData, 0, len(legacy))}

	moduleNames := make([]string, 0, len(legacy))
	for name := range legacy {
		moduleNames = append(moduleNames, name)
	}
	sort.Strings(moduleNames)

	for _, modName := range moduleNames {
		comps := legacy[modName]
		compNames := make([]string, 0, len(comps))
		for name := range comps {
			compNames = append(compNames, name)
		}
		sort.Strings(compNames)

		md := ModuleData{
			Name:       modName,
			Version:    DefaultVersion,
			Components: make([]ComponentData, 0, len(comps)),
		}
		for _, compName := range compNames {
			values := make([]float32, len(comps[compName]))
			copy(values, comps[compName])
			md.Components = append(md.Components, ComponentData{Name: compName, Values: values})
		}
		s.Modules = append(s.Modules, md)
	}
	return s
}
