package reactor

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// BoundaryType is the particle boundary condition of a surface.
type BoundaryType string

const (
	Transmission BoundaryType = "transmission"
	Vacuum       BoundaryType = "vacuum"
	Reflective   BoundaryType = "reflective"
)

// SurfaceKind names a quadric surface type in the engine's vocabulary.
type SurfaceKind string

const (
	KindXPlane    SurfaceKind = "x-plane"
	KindYPlane    SurfaceKind = "y-plane"
	KindZPlane    SurfaceKind = "z-plane"
	KindZCylinder SurfaceKind = "z-cylinder"
	KindSphere    SurfaceKind = "sphere"
)

// Surface is a value object.
type Surface struct {
	ID       int
	Name     string
	Kind     SurfaceKind
	Coeffs   []float64
	Boundary BoundaryType
}

// XPlane is the plane x = x0.
func XPlane(id int, x0 float64) Surface {
	return Surface{ID: id, Kind: KindXPlane, Coeffs: []float64{x0}, Boundary: Transmission}
}

// YPlane is the plane y = y0.
func YPlane(id int, y0 float64) Surface {
	return Surface{ID: id, Kind: KindYPlane, Coeffs: []float64{y0}, Boundary: Transmission}
}

// ZPlane is the plane z = z0.
func ZPlane(id int, z0 float64) Surface {
	return Surface{ID: id, Kind: KindZPlane, Coeffs: []float64{z0}, Boundary: Transmission}
}

// ZCylinder is an infinite cylinder of radius r along z, centred on the origin.
func ZCylinder(id int, r float64) Surface {
	return Surface{ID: id, Kind: KindZCylinder, Coeffs: []float64{0, 0, r}, Boundary: Transmission}
}

// Sphere is a sphere of radius r centred on the origin.
func Sphere(id int, r float64) Surface {
	return Surface{ID: id, Kind: KindSphere, Coeffs: []float64{0, 0, 0, r}, Boundary: Transmission}
}

// WithBoundary returns a copy with the given boundary condition.
func (s Surface) WithBoundary(b BoundaryType) Surface {
	s.Coeffs = slices.Clone(s.Coeffs)
	s.Boundary = b
	return s
}

// WithName returns a copy with the given name.
func (s Surface) WithName(name string) Surface {
	s.Coeffs = slices.Clone(s.Coeffs)
	s.Name = name
	return s
}

// Neg is the negative halfspace (inside a cylinder or sphere, below a plane).
func (s Surface) Neg() Region {
	return Halfspace{Surface: s.ID, Positive: false}
}

// Pos is the positive halfspace.
func (s Surface) Pos() Region {
	return Halfspace{Surface: s.ID, Positive: true}
}

// CoeffString renders coefficients separated by spaces.
func (s Surface) CoeffString() string {
	parts := make([]string, len(s.Coeffs))
	for i, c := range s.Coeffs {
		parts[i] = strconv.FormatFloat(c, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

// Validate checks the coefficient count and boundary type.
func (s Surface) Validate() error {
	want := map[SurfaceKind]int{
		KindXPlane:    1,
		KindYPlane:    1,
		KindZPlane:    1,
		KindZCylinder: 3,
		KindSphere:    4,
	}
	n, ok := want[s.Kind]
	if !ok {
		return fmt.Errorf("surface %d: unknown kind %q", s.ID, s.Kind)
	}
	if len(s.Coeffs) != n {
		return fmt.Errorf("surface %d: %s needs %d coefficients, got %d", s.ID, s.Kind, n, len(s.Coeffs))
	}
	if (s.Kind == KindZCylinder || s.Kind == KindSphere) && s.Coeffs[n-1] <= 0 {
		return fmt.Errorf("surface %d: radius must be positive", s.ID)
	}
	switch s.Boundary {
	case Transmission, Vacuum, Reflective:
	default:
		return fmt.Errorf("surface %d: unknown boundary type %q", s.ID, s.Boundary)
	}
	return nil
}

// RectangularPrism returns four planes bounding an infinite prism of the given
// width (x) and height (y) centred on the origin, and the region inside them.
// Surface IDs start at firstID.
func RectangularPrism(firstID int, width, height float64, boundary BoundaryType) ([]Surface, Region) {
	minX := XPlane(firstID, -width/2).WithBoundary(boundary)
	maxX := XPlane(firstID+1, width/2).WithBoundary(boundary)
	minY := YPlane(firstID+2, -height/2).WithBoundary(boundary)
	maxY := YPlane(firstID+3, height/2).WithBoundary(boundary)
	return []Surface{minX, maxX, minY, maxY}, And(minX.Pos(), maxX.Neg(), minY.Pos(), maxY.Neg())
}
