package reactor

import (
	"fmt"
	"slices"
)

// RunModeEigenvalue is the k-eigenvalue calculation mode.
const RunModeEigenvalue = "eigenvalue"

// SpatialKind is the shape of the initial source distribution.
type SpatialKind string

const (
	SpatialBox   SpatialKind = "box"
	SpatialPoint SpatialKind = "point"
)

// Source is the initial fission source guess.
type Source struct {
	Kind            SpatialKind
	Lower           [3]float64 // box
	Upper           [3]float64 // box
	Point           [3]float64 // point
	OnlyFissionable bool
}

// BoxSource samples uniformly in a box.
func BoxSource(lower, upper [3]float64, onlyFissionable bool) Source {
	return Source{Kind: SpatialBox, Lower: lower, Upper: upper, OnlyFissionable: onlyFissionable}
}

// PointSource starts every particle at xyz.
func PointSource(xyz [3]float64) Source {
	return Source{Kind: SpatialPoint, Point: xyz}
}

// Settings controls the transport run.
type Settings struct {
	RunMode       string
	Batches       int
	Inactive      int
	Particles     int
	Source        Source
	OutputTallies bool
}

// Validate checks the batch structure and source.
func (s Settings) Validate() error {
	if s.RunMode != RunModeEigenvalue {
		return fmt.Errorf("unsupported run mode %q", s.RunMode)
	}
	if s.Particles <= 0 {
		return fmt.Errorf("particles must be positive, got %d", s.Particles)
	}
	if s.Inactive < 0 || s.Batches <= s.Inactive {
		return fmt.Errorf("batches %d must exceed inactive %d", s.Batches, s.Inactive)
	}
	if s.Source.Kind == SpatialBox {
		for i := range 3 {
			if s.Source.Lower[i] >= s.Source.Upper[i] {
				return fmt.Errorf("source box lower corner must be below upper corner")
			}
		}
	} else if s.Source.Kind != SpatialPoint {
		return fmt.Errorf("unknown source kind %q", s.Source.Kind)
	}
	return nil
}

// FilterCell selects events in listed cells.
const FilterCell = "cell"

// Filter restricts a tally to bins.
type Filter struct {
	ID   int
	Kind string
	Bins []int
}

// Tally scores reaction rates.
type Tally struct {
	ID       int
	Name     string
	Filters  []Filter
	Nuclides []string
	Scores   []string
}

// CellTally scores the given reactions of nuclides in one cell.
func CellTally(id int, cell Cell, nuclides, scores []string) Tally {
	return Tally{
		ID:       id,
		Filters:  []Filter{{ID: id, Kind: FilterCell, Bins: []int{cell.ID}}},
		Nuclides: slices.Clone(nuclides),
		Scores:   slices.Clone(scores),
	}
}

// Validate checks that the tally has scores.
func (t Tally) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("tally id must be positive, got %d", t.ID)
	}
	if len(t.Scores) == 0 {
		return fmt.Errorf("tally %d has no scores", t.ID)
	}
	for _, f := range t.Filters {
		if f.Kind != FilterCell || len(f.Bins) == 0 {
			return fmt.Errorf("tally %d: unsupported filter %+v", t.ID, f)
		}
	}
	return nil
}
