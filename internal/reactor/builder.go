package reactor

import (
	"fmt"

	"github.com/GoSim-25-26J-441/keff-search/pkg/config"
)

// Builder maps one scalar parameter to a complete model. Implementations must
// be pure: the same parameter always yields an equivalent model.
type Builder interface {
	Build(param float64) (*Model, error)
}

// BuilderFunc adapts a function to the Builder interface.
type BuilderFunc func(param float64) (*Model, error)

// Build calls f(param).
func (f BuilderFunc) Build(param float64) (*Model, error) {
	return f(param)
}

// Material, cell and surface IDs of the pin-cell model.
const (
	FuelMaterialID  = 1
	CladMaterialID  = 2
	WaterMaterialID = 3

	FuelCellID      = 1
	CladCellID      = 2
	ModeratorCellID = 3

	fuelOuterSurfaceID = 1
	cladOuterSurfaceID = 2
	prismFirstID       = 3
)

// PinCellBuilder builds a reflected PWR pin cell with borated water, where
// the parameter is the boron concentration in ppm.
type PinCellBuilder struct {
	Params config.PinCell
}

// NewPinCellBuilder validates params and returns a builder.
func NewPinCellBuilder(params config.PinCell) (*PinCellBuilder, error) {
	if err := config.ValidatePinCell(&params); err != nil {
		return nil, fmt.Errorf("invalid pin cell: %w", err)
	}
	return &PinCellBuilder{Params: params}, nil
}

// Build returns the pin-cell model at the given boron concentration.
func (b *PinCellBuilder) Build(ppm float64) (*Model, error) {
	if ppm < 0 {
		return nil, fmt.Errorf("boron concentration cannot be negative, got %g ppm", ppm)
	}
	p := b.Params
	label := fmt.Sprintf("%g%%", p.FuelEnrichment)

	fuel := NewMaterial(FuelMaterialID, label+" Fuel").
		WithDensity(UnitsGramsPerCC, p.FuelDensity).
		WithEnrichedElement("U", 1, p.FuelEnrichment).
		WithElement("O", 2)

	zircaloy := NewMaterial(CladMaterialID, "Zircaloy").
		WithDensity(UnitsGramsPerCC, p.CladDensity).
		WithElement("Zr", 1)

	// Boron is added at its ppm fraction, neglecting the rest of boric acid.
	water := NewMaterial(WaterMaterialID, "Borated Water").
		WithDensity(UnitsGramsPerCC, p.WaterDensity).
		WithElement("H", 2).
		WithElement("O", 1).
		WithElement("B", ppm*1e-6)

	fuelOuter := ZCylinder(fuelOuterSurfaceID, p.FuelOuterRadius).WithName("fuel outer radius")
	cladOuter := ZCylinder(cladOuterSurfaceID, p.CladOuterRadius).WithName("clad outer radius")
	box, inside := RectangularPrism(prismFirstID, p.Pitch, p.Pitch, Reflective)

	cells := []Cell{
		{ID: FuelCellID, Name: label + " Fuel", Material: FuelMaterialID, Region: fuelOuter.Neg()},
		{ID: CladCellID, Name: label + " Clad", Material: CladMaterialID, Region: And(fuelOuter.Pos(), cladOuter.Neg())},
		{ID: ModeratorCellID, Name: label + " Moderator", Material: WaterMaterialID, Region: And(cladOuter.Pos(), inside)},
	}
	geometry, err := NewGeometry(Universe{ID: 0, Name: "root universe", Cells: cells},
		append([]Surface{fuelOuter, cladOuter}, box...)...)
	if err != nil {
		return nil, fmt.Errorf("pin cell geometry: %w", err)
	}

	half := p.Pitch / 2
	settings := Settings{
		RunMode:       RunModeEigenvalue,
		Batches:       p.Batches,
		Inactive:      p.Inactive,
		Particles:     p.Particles,
		Source:        BoxSource([3]float64{-half, -half, -p.Height / 2}, [3]float64{half, half, p.Height / 2}, true),
		OutputTallies: p.TallyOutput,
	}

	return NewModel(ppm, []Material{fuel, zircaloy, water}, geometry, settings)
}

// GapPinCell returns a fixed pin cell with a void gap between fuel and clad, 3%
// enriched fuel given by nuclides, light water with thermal scattering data,
// and a fuel reaction-rate tally.
func GapPinCell() (*Model, error) {
	uo2 := NewMaterial(1, "uo2").
		WithNuclide("U235", 0.03).
		WithNuclide("U238", 0.97).
		WithNuclide("O16", 2.0).
		WithDensity(UnitsGramsPerCC, 10.0)
	zirconium := NewMaterial(2, "zirconium").
		WithElement("Zr", 1.0).
		WithDensity(UnitsGramsPerCC, 6.6)
	water := NewMaterial(3, "h2o").
		WithNuclide("H1", 2.0).
		WithNuclide("O16", 1.0).
		WithDensity(UnitsGramsPerCC, 1.0).
		WithSAlphaBeta("c_H_in_H2O").
		WithoutNuclide("O16").
		WithElement("O", 1.0)

	fuelOR := ZCylinder(1, 0.39)
	cladIR := ZCylinder(2, 0.40)
	cladOR := ZCylinder(3, 0.46)
	const pitch = 1.26
	box, inside := RectangularPrism(4, pitch, pitch, Reflective)

	fuel := Cell{ID: 1, Name: "fuel", Material: uo2.ID, Region: fuelOR.Neg()}
	cells := []Cell{
		fuel,
		{ID: 2, Name: "air gap", Region: And(fuelOR.Pos(), cladIR.Neg())},
		{ID: 3, Name: "clad", Material: zirconium.ID, Region: And(cladIR.Pos(), cladOR.Neg())},
		{ID: 4, Name: "moderator", Material: water.ID, Region: And(inside, cladOR.Pos())},
	}
	geometry, err := NewGeometry(Universe{ID: 0, Cells: cells}, append([]Surface{fuelOR, cladIR, cladOR}, box...)...)
	if err != nil {
		return nil, fmt.Errorf("gap pin cell geometry: %w", err)
	}

	settings := Settings{
		RunMode:       RunModeEigenvalue,
		Batches:       100,
		Inactive:      10,
		Particles:     1000,
		Source:        PointSource([3]float64{0, 0, 0}),
		OutputTallies: true,
	}
	tally := CellTally(1, fuel, []string{"U235"}, []string{"total", "fission", "absorption", "(n,gamma)"})

	return NewModel(0, []Material{uo2, zirconium, water}, geometry, settings, tally)
}
