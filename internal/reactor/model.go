package reactor

import (
	"fmt"
	"slices"
)

// Model is a complete engine input. Build one with NewModel; accessors return
// copies so a built model cannot be modified.
type Model struct {
	parameter float64
	materials []Material
	geometry  Geometry
	settings  Settings
	tallies   []Tally
}

// NewModel validates the parts and freezes them into a Model.
func NewModel(parameter float64, materials []Material, geometry Geometry, settings Settings, tallies ...Tally) (*Model, error) {
	m := &Model{
		parameter: parameter,
		materials: cloneMaterials(materials),
		geometry:  cloneGeometry(geometry),
		settings:  settings,
		tallies:   cloneTallies(tallies),
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Parameter returns the value the model was built for.
func (m *Model) Parameter() float64 { return m.parameter }

// Materials returns a copy of the materials.
func (m *Model) Materials() []Material { return cloneMaterials(m.materials) }

// Geometry returns a copy of the geometry.
func (m *Model) Geometry() Geometry { return cloneGeometry(m.geometry) }

// Settings returns the run settings.
func (m *Model) Settings() Settings { return m.settings }

// Tallies returns a copy of the tallies.
func (m *Model) Tallies() []Tally { return cloneTallies(m.tallies) }

// Material looks up a material by ID.
func (m *Model) Material(id int) (Material, bool) {
	for _, mat := range m.materials {
		if mat.ID == id {
			return mat.clone(), true
		}
	}
	return Material{}, false
}

func (m *Model) validate() error {
	if len(m.materials) == 0 {
		return fmt.Errorf("model has no materials")
	}
	ids := make(map[int]bool, len(m.materials))
	for _, mat := range m.materials {
		if err := mat.Validate(); err != nil {
			return err
		}
		if ids[mat.ID] {
			return fmt.Errorf("duplicate material id: %d", mat.ID)
		}
		ids[mat.ID] = true
	}
	if err := m.geometry.Validate(); err != nil {
		return fmt.Errorf("geometry: %w", err)
	}
	for _, c := range m.geometry.Root.Cells {
		if !c.IsVoid() && !ids[c.Material] {
			return fmt.Errorf("cell %d is filled with unknown material %d", c.ID, c.Material)
		}
	}
	if err := m.settings.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	for _, t := range m.tallies {
		if err := t.Validate(); err != nil {
			return err
		}
		for _, f := range t.Filters {
			for _, bin := range f.Bins {
				if _, ok := m.geometry.Cell(bin); !ok {
					return fmt.Errorf("tally %d filters unknown cell %d", t.ID, bin)
				}
			}
		}
	}
	return nil
}

func cloneMaterials(in []Material) []Material {
	out := make([]Material, len(in))
	for i, m := range in {
		out[i] = m.clone()
	}
	return out
}

func cloneGeometry(g Geometry) Geometry {
	surfaces := make([]Surface, len(g.Surfaces))
	for i, s := range g.Surfaces {
		s.Coeffs = slices.Clone(s.Coeffs)
		surfaces[i] = s
	}
	g.Surfaces = surfaces
	g.Root.Cells = slices.Clone(g.Root.Cells)
	return g
}

func cloneTallies(in []Tally) []Tally {
	out := make([]Tally, len(in))
	for i, t := range in {
		filters := make([]Filter, len(t.Filters))
		for j, f := range t.Filters {
			f.Bins = slices.Clone(f.Bins)
			filters[j] = f
		}
		t.Filters = filters
		t.Nuclides = slices.Clone(t.Nuclides)
		t.Scores = slices.Clone(t.Scores)
		out[i] = t
	}
	return out
}
