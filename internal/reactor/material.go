package reactor

import (
	"fmt"
	"slices"
)

// Density units understood by the engine.
const (
	UnitsGramsPerCC    = "g/cm3"
	UnitsGramsPerCCAlt = "g/cc"
	UnitsAtomPerBarnCM = "atom/b-cm"
)

// Element is a natural element entry, optionally enriched in U-235.
type Element struct {
	Symbol     string
	Fraction   float64 // atom fraction
	Enrichment float64 // wt% U-235, zero for natural composition
}

// Nuclide is a single-nuclide entry.
type Nuclide struct {
	Name     string
	Fraction float64 // atom fraction
}

// Material is a value object. With* methods return modified copies and never
// alias the receiver's slices.
type Material struct {
	ID           int
	Name         string
	Density      float64
	DensityUnits string
	Elements     []Element
	Nuclides     []Nuclide
	SAlphaBeta   []string
}

// NewMaterial returns an empty material.
func NewMaterial(id int, name string) Material {
	return Material{ID: id, Name: name}
}

func (m Material) clone() Material {
	m.Elements = slices.Clone(m.Elements)
	m.Nuclides = slices.Clone(m.Nuclides)
	m.SAlphaBeta = slices.Clone(m.SAlphaBeta)
	return m
}

// WithDensity sets the density.
func (m Material) WithDensity(units string, value float64) Material {
	out := m.clone()
	out.DensityUnits = units
	out.Density = value
	return out
}

// WithElement adds a natural element.
func (m Material) WithElement(symbol string, fraction float64) Material {
	return m.WithEnrichedElement(symbol, fraction, 0)
}

// WithEnrichedElement adds an element with a U-235 enrichment in wt%.
func (m Material) WithEnrichedElement(symbol string, fraction, enrichment float64) Material {
	out := m.clone()
	out.Elements = append(out.Elements, Element{Symbol: symbol, Fraction: fraction, Enrichment: enrichment})
	return out
}

// WithNuclide adds a nuclide.
func (m Material) WithNuclide(name string, fraction float64) Material {
	out := m.clone()
	out.Nuclides = append(out.Nuclides, Nuclide{Name: name, Fraction: fraction})
	return out
}

// WithoutNuclide removes every entry of the named nuclide.
func (m Material) WithoutNuclide(name string) Material {
	out := m.clone()
	out.Nuclides = slices.DeleteFunc(out.Nuclides, func(n Nuclide) bool { return n.Name == name })
	return out
}

// WithSAlphaBeta adds a thermal scattering table.
func (m Material) WithSAlphaBeta(table string) Material {
	out := m.clone()
	out.SAlphaBeta = append(out.SAlphaBeta, table)
	return out
}

// Validate checks that the material can be exported.
func (m Material) Validate() error {
	if m.ID <= 0 {
		return fmt.Errorf("material %q: id must be positive, got %d", m.Name, m.ID)
	}
	switch m.DensityUnits {
	case UnitsGramsPerCC, UnitsGramsPerCCAlt, UnitsAtomPerBarnCM:
	default:
		return fmt.Errorf("material %d: unsupported density units %q", m.ID, m.DensityUnits)
	}
	if m.Density <= 0 {
		return fmt.Errorf("material %d: density must be positive, got %g", m.ID, m.Density)
	}
	if len(m.Elements)+len(m.Nuclides) == 0 {
		return fmt.Errorf("material %d: no elements or nuclides", m.ID)
	}
	for _, e := range m.Elements {
		if e.Symbol == "" || e.Fraction < 0 {
			return fmt.Errorf("material %d: invalid element entry %+v", m.ID, e)
		}
		if e.Enrichment != 0 && e.Symbol != "U" {
			return fmt.Errorf("material %d: enrichment is only supported for U, got %s", m.ID, e.Symbol)
		}
	}
	for _, n := range m.Nuclides {
		if n.Name == "" || n.Fraction < 0 {
			return fmt.Errorf("material %d: invalid nuclide entry %+v", m.ID, n)
		}
	}
	return nil
}
