package deck

import (
	"encoding/xml"
	"strconv"

	"github.com/GoSim-25-26J-441/keff-search/internal/reactor"
)

type geometryXML struct {
	XMLName  xml.Name     `xml:"geometry"`
	Cells    []cellXML    `xml:"cell"`
	Surfaces []surfaceXML `xml:"surface"`
}

type cellXML struct {
	ID       int    `xml:"id,attr"`
	Name     string `xml:"name,attr,omitempty"`
	Material string `xml:"material,attr"`
	Region   string `xml:"region,attr,omitempty"`
	Universe int    `xml:"universe,attr"`
}

type surfaceXML struct {
	ID       int    `xml:"id,attr"`
	Name     string `xml:"name,attr,omitempty"`
	Type     string `xml:"type,attr"`
	Coeffs   string `xml:"coeffs,attr"`
	Boundary string `xml:"boundary,attr"`
}

// MarshalGeometry renders geometry.xml. Void cells are written with
// material="void".
func MarshalGeometry(model *reactor.Model) ([]byte, error) {
	g := model.Geometry()
	var doc geometryXML
	for _, c := range g.Root.Cells {
		cx := cellXML{ID: c.ID, Name: c.Name, Material: "void", Universe: g.Root.ID}
		if !c.IsVoid() {
			cx.Material = strconv.Itoa(c.Material)
		}
		if c.Region != nil {
			cx.Region = c.Region.String()
		}
		doc.Cells = append(doc.Cells, cx)
	}
	for _, s := range g.Surfaces {
		doc.Surfaces = append(doc.Surfaces, surfaceXML{
			ID:       s.ID,
			Name:     s.Name,
			Type:     string(s.Kind),
			Coeffs:   s.CoeffString(),
			Boundary: string(s.Boundary),
		})
	}
	return marshal(doc)
}
