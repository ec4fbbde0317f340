package deck

import (
	"encoding/xml"
	"strings"

	"github.com/GoSim-25-26J-441/keff-search/internal/reactor"
)

type talliesXML struct {
	XMLName xml.Name    `xml:"tallies"`
	Filters []filterXML `xml:"filter"`
	Tallies []tallyXML  `xml:"tally"`
}

type filterXML struct {
	ID   int    `xml:"id,attr"`
	Type string `xml:"type,attr"`
	Bins string `xml:"bins"`
}

type tallyXML struct {
	ID       int    `xml:"id,attr"`
	Name     string `xml:"name,attr,omitempty"`
	Filters  string `xml:"filters,omitempty"`
	Nuclides string `xml:"nuclides,omitempty"`
	Scores   string `xml:"scores"`
}

// MarshalTallies renders tallies.xml.
func MarshalTallies(model *reactor.Model) ([]byte, error) {
	var doc talliesXML
	for _, t := range model.Tallies() {
		ids := make([]int, 0, len(t.Filters))
		for _, f := range t.Filters {
			doc.Filters = append(doc.Filters, filterXML{ID: f.ID, Type: f.Kind, Bins: joinInts(f.Bins)})
			ids = append(ids, f.ID)
		}
		doc.Tallies = append(doc.Tallies, tallyXML{
			ID:       t.ID,
			Name:     t.Name,
			Filters:  joinInts(ids),
			Nuclides: strings.Join(t.Nuclides, " "),
			Scores:   strings.Join(t.Scores, " "),
		})
	}
	return marshal(doc)
}
