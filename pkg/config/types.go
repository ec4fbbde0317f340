package config

import (
	"fmt"
	"time"
)

// Config represents the search configuration
type Config struct {
	LogLevel  string  `yaml:"log_level" json:"log_level"`
	LogFormat string  `yaml:"log_format,omitempty" json:"log_format,omitempty"` // json or text
	Search    Search  `yaml:"search" json:"search"`
	Engine    Engine  `yaml:"engine" json:"engine"`
	Model     PinCell `yaml:"model" json:"model"`
	Server    *Server `yaml:"server,omitempty" json:"server,omitempty"`
}

// Search holds the root-finding options
type Search struct {
	Bracket           []float64 `yaml:"bracket" json:"bracket"` // [lo, hi] in ppm
	Target            float64   `yaml:"target" json:"target"`
	Tolerance         float64   `yaml:"tolerance" json:"tolerance"`
	MaxIterations     int       `yaml:"max_iterations" json:"max_iterations"`
	Method            string    `yaml:"method" json:"method"`       // bisect, secant, brentq
	Criterion         string    `yaml:"criterion" json:"criterion"` // value, bracket_width, any
	EvaluationTimeout string    `yaml:"evaluation_timeout,omitempty" json:"evaluation_timeout,omitempty"`
	PrintIterations   bool      `yaml:"print_iterations" json:"print_iterations"`
}

// Engine selects and configures the simulation engine
type Engine struct {
	Kind      string           `yaml:"kind" json:"kind"` // surrogate or command
	Command   *CommandEngine   `yaml:"command,omitempty" json:"command,omitempty"`
	Surrogate *SurrogateEngine `yaml:"surrogate,omitempty" json:"surrogate,omitempty"`
}

// CommandEngine runs an external transport code on exported input decks
type CommandEngine struct {
	Executable   string   `yaml:"executable" json:"executable"`
	Args         []string `yaml:"args,omitempty" json:"args,omitempty"`
	WorkDir      string   `yaml:"work_dir,omitempty" json:"work_dir,omitempty"`
	Threads      int      `yaml:"threads,omitempty" json:"threads,omitempty"`
	KeepWorkDirs bool     `yaml:"keep_work_dirs,omitempty" json:"keep_work_dirs,omitempty"`
}

// SurrogateEngine is an analytic k(ppm) = k0 / (1 + worth*ppm) stand-in for
// the transport code, with optional batch noise.
type SurrogateEngine struct {
	K0    float64 `yaml:"k0" json:"k0"`
	Worth float64 `yaml:"worth" json:"worth"` // per ppm
	Sigma float64 `yaml:"sigma" json:"sigma"` // per-batch standard deviation
	Seed  int64   `yaml:"seed" json:"seed"`
}

// PinCell describes the parametric PWR pin-cell model
type PinCell struct {
	FuelEnrichment  float64 `yaml:"fuel_enrichment" json:"fuel_enrichment"` // wt% U-235
	FuelDensity     float64 `yaml:"fuel_density" json:"fuel_density"`       // g/cm3
	CladDensity     float64 `yaml:"clad_density" json:"clad_density"`       // g/cm3
	WaterDensity    float64 `yaml:"water_density" json:"water_density"`     // g/cm3
	FuelOuterRadius float64 `yaml:"fuel_outer_radius" json:"fuel_outer_radius"`
	CladOuterRadius float64 `yaml:"clad_outer_radius" json:"clad_outer_radius"`
	Pitch           float64 `yaml:"pitch" json:"pitch"`
	Height          float64 `yaml:"height" json:"height"` // axial extent of the source box
	Batches         int     `yaml:"batches" json:"batches"`
	Inactive        int     `yaml:"inactive" json:"inactive"`
	Particles       int     `yaml:"particles" json:"particles"`
	TallyOutput     bool    `yaml:"tally_output" json:"tally_output"`
}

// Server configures the search daemon listeners
type Server struct {
	GRPCAddr string `yaml:"grpc_addr" json:"grpc_addr"`
	HTTPAddr string `yaml:"http_addr" json:"http_addr"`
}

// DefaultConfig returns the configuration of the 1.6% enriched pin-cell
// boron search.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "json",
		Search: Search{
			Bracket:         []float64{1000, 2500},
			Target:          1.0,
			Tolerance:       1e-2,
			MaxIterations:   100,
			Method:          "bisect",
			Criterion:       "value",
			PrintIterations: true,
		},
		Engine: Engine{
			Kind: "surrogate",
			Surrogate: &SurrogateEngine{
				K0:    1.23,
				Worth: 1.25e-4,
				Sigma: 0,
				Seed:  1,
			},
		},
		Model: DefaultPinCell(),
	}
}

// DefaultPinCell returns the pin-cell parameters used in the tutorial model.
func DefaultPinCell() PinCell {
	return PinCell{
		FuelEnrichment:  1.6,
		FuelDensity:     10.31341,
		CladDensity:     6.55,
		WaterDensity:    0.741,
		FuelOuterRadius: 0.39218,
		CladOuterRadius: 0.45720,
		Pitch:           1.26,
		Height:          20,
		Batches:         300,
		Inactive:        200,
		Particles:       10000,
		TallyOutput:     false,
	}
}

// GetEvaluationTimeout parses the evaluation timeout; empty means no timeout
func (s *Search) GetEvaluationTimeout() (time.Duration, error) {
	if s.EvaluationTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.EvaluationTimeout)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration cannot be negative")
	}
	return d, nil
}

// ActiveBatches returns the number of batches that contribute to tallies
func (p *PinCell) ActiveBatches() int {
	return p.Batches - p.Inactive
}
