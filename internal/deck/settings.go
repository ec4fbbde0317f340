package deck

import (
	"encoding/xml"

	"github.com/GoSim-25-26J-441/keff-search/internal/reactor"
)

type settingsXML struct {
	XMLName   xml.Name  `xml:"settings"`
	RunMode   string    `xml:"run_mode"`
	Particles int       `xml:"particles"`
	Batches   int       `xml:"batches"`
	Inactive  int       `xml:"inactive"`
	Source    sourceXML `xml:"source"`
	Output    outputXML `xml:"output"`
}

type sourceXML struct {
	Space spaceXML `xml:"space"`
}

type spaceXML struct {
	Type       string `xml:"type,attr"`
	Parameters string `xml:"parameters"`
}

type outputXML struct {
	Tallies bool `xml:"tallies"`
}

// MarshalSettings renders settings.xml. A box source restricted to fissionable
// material is written as space type "fission".
func MarshalSettings(model *reactor.Model) ([]byte, error) {
	s := model.Settings()
	doc := settingsXML{
		RunMode:   s.RunMode,
		Particles: s.Particles,
		Batches:   s.Batches,
		Inactive:  s.Inactive,
		Output:    outputXML{Tallies: s.OutputTallies},
	}
	switch s.Source.Kind {
	case reactor.SpatialBox:
		kind := "box"
		if s.Source.OnlyFissionable {
			kind = "fission"
		}
		params := append(s.Source.Lower[:], s.Source.Upper[:]...)
		doc.Source.Space = spaceXML{Type: kind, Parameters: joinFloats(params)}
	case reactor.SpatialPoint:
		doc.Source.Space = spaceXML{Type: "point", Parameters: joinFloats(s.Source.Point[:])}
	}
	return marshal(doc)
}
