package deck

import (
	"encoding/xml"

	"github.com/GoSim-25-26J-441/keff-search/internal/reactor"
)

type materialsXML struct {
	XMLName   xml.Name      `xml:"materials"`
	Materials []materialXML `xml:"material"`
}

type materialXML struct {
	ID       int          `xml:"id,attr"`
	Name     string       `xml:"name,attr,omitempty"`
	Density  densityXML   `xml:"density"`
	Nuclides []nuclideXML `xml:"nuclide"`
	Elements []elementXML `xml:"element"`
	SAB      []sabXML     `xml:"sab"`
}

type densityXML struct {
	Units string `xml:"units,attr"`
	Value string `xml:"value,attr"`
}

type nuclideXML struct {
	Name string `xml:"name,attr"`
	AO   string `xml:"ao,attr"`
}

type elementXML struct {
	Name       string `xml:"name,attr"`
	AO         string `xml:"ao,attr"`
	Enrichment string `xml:"enrichment,attr,omitempty"`
}

type sabXML struct {
	Name string `xml:"name,attr"`
}

// MarshalMaterials renders materials.xml.
func MarshalMaterials(model *reactor.Model) ([]byte, error) {
	var doc materialsXML
	for _, m := range model.Materials() {
		mx := materialXML{
			ID:      m.ID,
			Name:    m.Name,
			Density: densityXML{Units: m.DensityUnits, Value: formatFloat(m.Density)},
		}
		for _, n := range m.Nuclides {
			mx.Nuclides = append(mx.Nuclides, nuclideXML{Name: n.Name, AO: formatFloat(n.Fraction)})
		}
		for _, e := range m.Elements {
			ex := elementXML{Name: e.Symbol, AO: formatFloat(e.Fraction)}
			if e.Enrichment != 0 {
				ex.Enrichment = formatFloat(e.Enrichment)
			}
			mx.Elements = append(mx.Elements, ex)
		}
		for _, table := range m.SAlphaBeta {
			mx.SAB = append(mx.SAB, sabXML{Name: table})
		}
		doc.Materials = append(doc.Materials, mx)
	}
	return marshal(doc)
}
