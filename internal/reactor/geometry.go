package reactor

import (
	"fmt"
	"slices"
)

// Cell is a region filled with a material, or void when Material is zero.
type Cell struct {
	ID       int
	Name     string
	Material int
	Region   Region
}

// IsVoid reports whether the cell has no material.
func (c Cell) IsVoid() bool {
	return c.Material == 0
}

// Universe is a named set of cells.
type Universe struct {
	ID    int
	Name  string
	Cells []Cell
}

// Geometry is the root universe plus every surface its cells reference.
type Geometry struct {
	Root     Universe
	Surfaces []Surface
}

// NewGeometry builds a geometry and checks that every region references a
// known surface.
func NewGeometry(root Universe, surfaces ...Surface) (Geometry, error) {
	g := Geometry{
		Root: Universe{
			ID:    root.ID,
			Name:  root.Name,
			Cells: slices.Clone(root.Cells),
		},
		Surfaces: slices.Clone(surfaces),
	}
	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}

// Surface looks up a surface by ID.
func (g Geometry) Surface(id int) (Surface, bool) {
	for _, s := range g.Surfaces {
		if s.ID == id {
			return s, true
		}
	}
	return Surface{}, false
}

// Cell looks up a cell of the root universe by ID.
func (g Geometry) Cell(id int) (Cell, bool) {
	for _, c := range g.Root.Cells {
		if c.ID == id {
			return c, true
		}
	}
	return Cell{}, false
}

// Validate checks IDs and surface references.
func (g Geometry) Validate() error {
	if len(g.Root.Cells) == 0 {
		return fmt.Errorf("root universe %d has no cells", g.Root.ID)
	}
	surfaces := make(map[int]bool, len(g.Surfaces))
	for _, s := range g.Surfaces {
		if surfaces[s.ID] {
			return fmt.Errorf("duplicate surface id: %d", s.ID)
		}
		if err := s.Validate(); err != nil {
			return err
		}
		surfaces[s.ID] = true
	}
	cells := make(map[int]bool, len(g.Root.Cells))
	for _, c := range g.Root.Cells {
		if c.ID <= 0 {
			return fmt.Errorf("cell %q: id must be positive", c.Name)
		}
		if cells[c.ID] {
			return fmt.Errorf("duplicate cell id: %d", c.ID)
		}
		cells[c.ID] = true
		if c.Region == nil {
			return fmt.Errorf("cell %d: region is required", c.ID)
		}
		for _, id := range SurfaceIDs(c.Region) {
			if !surfaces[id] {
				return fmt.Errorf("cell %d references unknown surface %d", c.ID, id)
			}
		}
	}
	return nil
}
