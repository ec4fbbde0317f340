// Package deck writes reactor models as the XML input files read by the
// transport engine.
package deck

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/GoSim-25-26J-441/keff-search/internal/reactor"
)

// Input file names, in the order they are written.
const (
	MaterialsFile = "materials.xml"
	GeometryFile  = "geometry.xml"
	SettingsFile  = "settings.xml"
	TalliesFile   = "tallies.xml"
)

// File is one rendered input file.
type File struct {
	Name string
	Data []byte
}

// Render returns the input files for a model. tallies.xml is omitted when the
// model has no tallies.
func Render(model *reactor.Model) ([]File, error) {
	if model == nil {
		return nil, fmt.Errorf("model is nil")
	}
	type part struct {
		name string
		fn   func(*reactor.Model) ([]byte, error)
	}
	parts := []part{
		{MaterialsFile, MarshalMaterials},
		{GeometryFile, MarshalGeometry},
		{SettingsFile, MarshalSettings},
	}
	if len(model.Tallies()) > 0 {
		parts = append(parts, part{TalliesFile, MarshalTallies})
	}

	files := make([]File, 0, len(parts))
	for _, p := range parts {
		data, err := p.fn(model)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", p.name, err)
		}
		files = append(files, File{Name: p.name, Data: data})
	}
	return files, nil
}

// Write renders the model into dir, creating it if needed, and returns the
// paths written.
func Write(dir string, model *reactor.Model) ([]string, error) {
	files, err := Render(model)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create deck directory: %w", err)
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func marshal(v any) ([]byte, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func joinFloats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = formatFloat(v)
	}
	return strings.Join(parts, " ")
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}
