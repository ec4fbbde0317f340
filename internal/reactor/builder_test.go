package reactor

import (
	"math"
	"strings"
	"testing"

	"github.com/GoSim-25-26J-441/keff-search/pkg/config"
)

func newTestBuilder(t *testing.T) *PinCellBuilder {
	t.Helper()
	b, err := NewPinCellBuilder(config.DefaultPinCell())
	if err != nil {
		t.Fatalf("NewPinCellBuilder: %v", err)
	}
	return b
}

func TestPinCellBuilderBoronFraction(t *testing.T) {
	b := newTestBuilder(t)
	model, err := b.Build(1500)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if model.Parameter() != 1500 {
		t.Fatalf("expected parameter 1500, got %g", model.Parameter())
	}

	water, ok := model.Material(WaterMaterialID)
	if !ok {
		t.Fatalf("expected water material")
	}
	var boron *Element
	for i := range water.Elements {
		if water.Elements[i].Symbol == "B" {
			boron = &water.Elements[i]
		}
	}
	if boron == nil {
		t.Fatalf("expected boron in water, got %+v", water.Elements)
	}
	if math.Abs(boron.Fraction-1.5e-3) > 1e-15 {
		t.Fatalf("expected boron fraction 1.5e-3, got %g", boron.Fraction)
	}
	if water.Density != 0.741 || water.DensityUnits != UnitsGramsPerCC {
		t.Fatalf("unexpected water density %g %s", water.Density, water.DensityUnits)
	}

	fuel, _ := model.Material(FuelMaterialID)
	if fuel.Name != "1.6% Fuel" || fuel.Elements[0].Enrichment != 1.6 {
		t.Fatalf("unexpected fuel %+v", fuel)
	}
}

func TestPinCellBuilderGeometry(t *testing.T) {
	model, err := newTestBuilder(t).Build(1000)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	g := model.Geometry()
	if g.Root.ID != 0 || g.Root.Name != "root universe" {
		t.Fatalf("unexpected root universe %+v", g.Root)
	}
	want := map[int]string{
		FuelCellID:      "-1",
		CladCellID:      "1 -2",
		ModeratorCellID: "2 3 -4 5 -6",
	}
	for id, region := range want {
		c, ok := g.Cell(id)
		if !ok {
			t.Fatalf("missing cell %d", id)
		}
		if c.Region.String() != region {
			t.Fatalf("cell %d region = %q, want %q", id, c.Region.String(), region)
		}
	}
	if len(g.Surfaces) != 6 {
		t.Fatalf("expected 6 surfaces, got %d", len(g.Surfaces))
	}
	s, _ := g.Surface(4)
	if s.Boundary != Reflective || s.Coeffs[0] != 0.63 {
		t.Fatalf("unexpected max-x plane %+v", s)
	}

	settings := model.Settings()
	if settings.Batches != 300 || settings.Inactive != 200 || settings.Particles != 10000 {
		t.Fatalf("unexpected settings %+v", settings)
	}
	if settings.Source.Kind != SpatialBox || !settings.Source.OnlyFissionable {
		t.Fatalf("expected fissionable box source, got %+v", settings.Source)
	}
	if settings.Source.Lower != [3]float64{-0.63, -0.63, -10} || settings.Source.Upper != [3]float64{0.63, 0.63, 10} {
		t.Fatalf("unexpected source bounds %+v", settings.Source)
	}
	if settings.OutputTallies {
		t.Fatalf("tally output should be disabled")
	}
}

func TestPinCellBuilderRejectsNegativePPM(t *testing.T) {
	if _, err := newTestBuilder(t).Build(-1); err == nil {
		t.Fatalf("expected error for negative ppm")
	}
}

func TestNewPinCellBuilderValidates(t *testing.T) {
	params := config.DefaultPinCell()
	params.CladOuterRadius = 0.2
	_, err := NewPinCellBuilder(params)
	if err == nil || !strings.Contains(err.Error(), "invalid pin cell") {
		t.Fatalf("expected invalid pin cell error, got %v", err)
	}
}

func TestModelIsImmutable(t *testing.T) {
	model, err := newTestBuilder(t).Build(1200)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	mats := model.Materials()
	mats[0].Elements[0].Enrichment = 99
	mats[0].Name = "tampered"

	g := model.Geometry()
	g.Surfaces[0].Coeffs[2] = 42
	g.Root.Cells[0].Material = 3

	fuel, _ := model.Material(FuelMaterialID)
	if fuel.Name != "1.6% Fuel" || fuel.Elements[0].Enrichment != 1.6 {
		t.Fatalf("model materials were modified through a copy: %+v", fuel)
	}
	g2 := model.Geometry()
	if g2.Surfaces[0].Coeffs[2] != 0.39218 || g2.Root.Cells[0].Material != FuelMaterialID {
		t.Fatalf("model geometry was modified through a copy")
	}
}

func TestBuildIsPure(t *testing.T) {
	b := newTestBuilder(t)
	m1, _ := b.Build(1750)
	m2, _ := b.Build(1750)
	w1, _ := m1.Material(WaterMaterialID)
	w2, _ := m2.Material(WaterMaterialID)
	if w1.Elements[2] != w2.Elements[2] {
		t.Fatalf("expected identical boron entries, got %+v and %+v", w1.Elements[2], w2.Elements[2])
	}
}

func TestGapPinCell(t *testing.T) {
	model, err := GapPinCell()
	if err != nil {
		t.Fatalf("GapPinCell: %v", err)
	}
	gap, ok := model.Geometry().Cell(2)
	if !ok || !gap.IsVoid() || gap.Region.String() != "1 -2" {
		t.Fatalf("unexpected gap cell %+v", gap)
	}
	water, _ := model.Material(3)
	if len(water.Nuclides) != 1 || water.Nuclides[0].Name != "H1" {
		t.Fatalf("expected O16 removed from water nuclides, got %+v", water.Nuclides)
	}
	if len(water.Elements) != 1 || water.Elements[0].Symbol != "O" {
		t.Fatalf("expected natural oxygen element, got %+v", water.Elements)
	}
	if len(water.SAlphaBeta) != 1 || water.SAlphaBeta[0] != "c_H_in_H2O" {
		t.Fatalf("expected thermal scattering table, got %v", water.SAlphaBeta)
	}
	tallies := model.Tallies()
	if len(tallies) != 1 || tallies[0].Filters[0].Bins[0] != 1 || len(tallies[0].Scores) != 4 {
		t.Fatalf("unexpected tallies %+v", tallies)
	}
	if model.Settings().Source.Kind != SpatialPoint {
		t.Fatalf("expected point source")
	}
}

func TestNewModelValidation(t *testing.T) {
	fuel := NewMaterial(1, "fuel").WithDensity(UnitsGramsPerCC, 10).WithEnrichedElement("U", 1, 3)
	cyl := ZCylinder(1, 0.4)
	settings := Settings{RunMode: RunModeEigenvalue, Batches: 10, Inactive: 5, Particles: 100, Source: PointSource([3]float64{})}
	geometry, err := NewGeometry(Universe{Cells: []Cell{{ID: 1, Material: 1, Region: cyl.Neg()}}}, cyl)
	if err != nil {
		t.Fatalf("NewGeometry: %v", err)
	}

	tests := []struct {
		name      string
		materials []Material
		geometry  Geometry
		settings  Settings
		tallies   []Tally
		wantErr   string
	}{
		{"no materials", nil, geometry, settings, nil, "no materials"},
		{"duplicate material", []Material{fuel, fuel}, geometry, settings, nil, "duplicate material"},
		{"bad density", []Material{fuel.WithDensity("lb/in3", 1)}, geometry, settings, nil, "unsupported density units"},
		{"enriched oxygen", []Material{fuel.WithEnrichedElement("O", 2, 5)}, geometry, settings, nil, "only supported for U"},
		{"unknown fill", []Material{NewMaterial(7, "x").WithDensity(UnitsGramsPerCC, 1).WithElement("H", 1)}, geometry, settings, nil, "unknown material"},
		{"bad batches", []Material{fuel}, geometry, Settings{RunMode: RunModeEigenvalue, Batches: 5, Inactive: 5, Particles: 1, Source: PointSource([3]float64{})}, nil, "must exceed inactive"},
		{"bad tally", []Material{fuel}, geometry, settings, []Tally{{ID: 1, Scores: []string{"flux"}, Filters: []Filter{{ID: 1, Kind: FilterCell, Bins: []int{9}}}}}, "unknown cell"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewModel(0, tt.materials, tt.geometry, tt.settings, tt.tallies...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := NewGeometry(Universe{Cells: []Cell{{ID: 1, Region: Halfspace{Surface: 8}}}}, cyl); err == nil {
		t.Fatalf("expected unknown surface error")
	}
}

func TestMaterialWithMethodsDoNotAlias(t *testing.T) {
	base := NewMaterial(1, "water").WithDensity(UnitsGramsPerCC, 1).WithNuclide("H1", 2)
	a := base.WithNuclide("O16", 1)
	b := base.WithNuclide("O17", 1)
	if a.Nuclides[1].Name != "O16" || b.Nuclides[1].Name != "O17" {
		t.Fatalf("derived materials share storage: %+v %+v", a.Nuclides, b.Nuclides)
	}
	if len(base.Nuclides) != 1 {
		t.Fatalf("base material changed: %+v", base.Nuclides)
	}
}
