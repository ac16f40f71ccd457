package snapshot

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNoEntityColumn is returned when a delta's change columns lack the
// entity id column classification depends on. Full-snapshot sections without
// the column are not errors; they are simply not delta-tracked.
var ErrNoEntityColumn = errors.New("snapshot: module has no entity id column")

// Delta describes the change between two consecutive full snapshots.
type Delta struct {
	Tick    int64         `json:"tick"`
	Modules []ModuleDelta `json:"modules"`
}

// ModuleDelta carries per-module changes in the same columnar layout as a
// full snapshot: Added and Modified hold component columns covering only the
// affected entities, Removed lists entity ids absent from the current tick.
type ModuleDelta struct {
	Name     string          `json:"name"`
	Version  string          `json:"version"`
	Added    []ComponentData `json:"added,omitempty"`
	Modified []ComponentData `json:"modified,omitempty"`
	Removed  []int64         `json:"removed,omitempty"`
}

// moduleIndex gives row lookup by entity id over one module section.
type moduleIndex struct {
	data ModuleData
	rows map[int64]int
}

func indexModule(md ModuleData) (*moduleIndex, bool) {
	var entityCol []float32
	for _, c := range md.Components {
		if c.Name == EntityIDComponent {
			entityCol = c.Values
			break
		}
	}
	if entityCol == nil {
		return nil, false
	}
	rows := make(map[int64]int, len(entityCol))
	for row, v := range entityCol {
		rows[int64(v)] = row
	}
	return &moduleIndex{data: md, rows: rows}, true
}

func (idx *moduleIndex) rowEquals(other *moduleIndex, myRow, otherRow int) bool {
	for i, c := range idx.data.Components {
		if c.Values[myRow] != other.data.Components[i].Values[otherRow] {
			return false
		}
	}
	return true
}

// selectRows projects the module's columns down to the given rows.
func (idx *moduleIndex) selectRows(rows []int) []ComponentData {
	if len(rows) == 0 {
		return nil
	}
	out := make([]ComponentData, len(idx.data.Components))
	for i, c := range idx.data.Components {
		values := make([]float32, len(rows))
		for j, row := range rows {
			values[j] = c.Values[row]
		}
		out[i] = ComponentData{Name: c.Name, Values: values}
	}
	return out
}

// ComputeDelta classifies every entity of current against baseline: present
// only in current → added, present in both with any differing value →
// modified, present only in baseline → removed. A module absent from the
// baseline contributes all of its entities as added. Module sections without
// an entity id column cannot be classified and are omitted from the delta;
// consumers fall back to the full snapshot for those.
func ComputeDelta(baseline, current *Snapshot) (*Delta, error) {
	baseIdx := make(map[string]*moduleIndex)
	if baseline != nil {
		for _, md := range baseline.Modules {
			if idx, ok := indexModule(md); ok {
				baseIdx[md.Name] = idx
			}
		}
	}

	delta := &Delta{Tick: current.Tick}
	for _, md := range current.Modules {
		cur, ok := indexModule(md)
		if !ok {
			continue
		}
		base := baseIdx[md.Name]

		var addedRows, modifiedRows []int
		var removed []int64

		curIDs := sortedIDs(cur.rows)
		for _, id := range curIDs {
			row := cur.rows[id]
			if base == nil {
				addedRows = append(addedRows, row)
				continue
			}
			baseRow, ok := base.rows[id]
			switch {
			case !ok:
				addedRows = append(addedRows, row)
			case !cur.rowEquals(base, row, baseRow):
				modifiedRows = append(modifiedRows, row)
			}
		}
		if base != nil {
			for _, id := range sortedIDs(base.rows) {
				if _, ok := cur.rows[id]; !ok {
					removed = append(removed, id)
				}
			}
		}

		delta.Modules = append(delta.Modules, ModuleDelta{
			Name:     md.Name,
			Version:  md.Version,
			Added:    cur.selectRows(addedRows),
			Modified: cur.selectRows(modifiedRows),
			Removed:  removed,
		})
	}
	return delta, nil
}

// ApplyDelta reconstructs the current snapshot from a baseline and the delta
// computed against it. Entities come out in ascending id order, matching the
// builder's layout.
func ApplyDelta(baseline *Snapshot, delta *Delta) (*Snapshot, error) {
	baseIdx := make(map[string]*moduleIndex)
	if baseline != nil {
		for _, md := range baseline.Modules {
			if idx, ok := indexModule(md); ok {
				baseIdx[md.Name] = idx
			}
		}
	}

	out := &Snapshot{Tick: delta.Tick}
	for _, mdelta := range delta.Modules {
		md, err := applyModuleDelta(baseIdx[mdelta.Name], mdelta)
		if err != nil {
			return nil, err
		}
		out.Modules = append(out.Modules, md)
	}
	return out, nil
}

func applyModuleDelta(base *moduleIndex, mdelta ModuleDelta) (ModuleData, error) {
	// entity id → row values keyed by component name
	merged := map[int64]map[string]float32{}
	var compNames []string

	if base != nil {
		for _, c := range base.data.Components {
			compNames = append(compNames, c.Name)
		}
		removed := make(map[int64]struct{}, len(mdelta.Removed))
		for _, id := range mdelta.Removed {
			removed[id] = struct{}{}
		}
		for id, row := range base.rows {
			if _, gone := removed[id]; gone {
				continue
			}
			values := make(map[string]float32, len(base.data.Components))
			for _, c := range base.data.Components {
				values[c.Name] = c.Values[row]
			}
			merged[id] = values
		}
	}

	for _, cols := range [][]ComponentData{mdelta.Modified, mdelta.Added} {
		if len(cols) == 0 {
			continue
		}
		if compNames == nil {
			for _, c := range cols {
				compNames = append(compNames, c.Name)
			}
		}
		idx, ok := indexModule(ModuleData{Name: mdelta.Name, Components: cols})
		if !ok {
			return ModuleData{}, fmt.Errorf("%w: %s", ErrNoEntityColumn, mdelta.Name)
		}
		for id, row := range idx.rows {
			values := make(map[string]float32, len(cols))
			for _, c := range cols {
				values[c.Name] = c.Values[row]
			}
			merged[id] = values
		}
	}

	ids := make([]int64, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	md := ModuleData{
		Name:       mdelta.Name,
		Version:    mdelta.Version,
		Components: make([]ComponentData, len(compNames)),
	}
	for i, name := range compNames {
		values := make([]float32, len(ids))
		for j, id := range ids {
			values[j] = merged[id][name]
		}
		md.Components[i] = ComponentData{Name: name, Values: values}
	}
	return md, nil
}

func sortedIDs(rows map[int64]int) []int64 {
	ids := make([]int64, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
