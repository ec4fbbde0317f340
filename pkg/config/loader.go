package config

import (
	"fmt"
	"os"
	"strings"
)

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}
	if cfg.LogFormat != "" && cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return fmt.Errorf("invalid log_format: %s (must be json or text)", cfg.LogFormat)
	}

	if err := validateSearch(&cfg.Search); err != nil {
		return fmt.Errorf("search validation failed: %w", err)
	}
	if err := validateEngine(&cfg.Engine); err != nil {
		return fmt.Errorf("engine validation failed: %w", err)
	}
	if err := ValidatePinCell(&cfg.Model); err != nil {
		return fmt.Errorf("model validation failed: %w", err)
	}
	return nil
}

// validateSearch validates the search options
func validateSearch(s *Search) error {
	if len(s.Bracket) != 2 {
		return fmt.Errorf("bracket must have exactly two values, got %d", len(s.Bracket))
	}
	if s.Bracket[0] >= s.Bracket[1] {
		return fmt.Errorf("bracket lower bound %g must be below upper bound %g", s.Bracket[0], s.Bracket[1])
	}
	if s.Bracket[0] < 0 {
		return fmt.Errorf("bracket lower bound cannot be negative, got %g", s.Bracket[0])
	}
	if s.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %g", s.Tolerance)
	}
	if s.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be positive, got %d", s.MaxIterations)
	}

	validMethods := map[string]bool{
		"bisect":    true,
		"bisection": true,
		"secant":    true,
		"brentq":    true,
		"brent":     true,
	}
	if !validMethods[strings.ToLower(s.Method)] {
		return fmt.Errorf("invalid method: %s (must be bisect, secant, or brentq)", s.Method)
	}

	validCriteria := map[string]bool{
		"value":         true,
		"bracket_width": true,
		"width":         true,
		"any":           true,
	}
	if !validCriteria[strings.ToLower(s.Criterion)] {
		return fmt.Errorf("invalid criterion: %s (must be value, bracket_width, or any)", s.Criterion)
	}

	if _, err := s.GetEvaluationTimeout(); err != nil {
		return fmt.Errorf("invalid evaluation_timeout %s: %w", s.EvaluationTimeout, err)
	}
	return nil
}

// validateEngine validates the engine selection
func validateEngine(e *Engine) error {
	switch e.Kind {
	case "surrogate":
		if e.Surrogate == nil {
			return fmt.Errorf("surrogate engine requires a surrogate section")
		}
		if e.Surrogate.K0 <= 0 {
			return fmt.Errorf("surrogate k0 must be positive, got %g", e.Surrogate.K0)
		}
		if e.Surrogate.Worth < 0 {
			return fmt.Errorf("surrogate worth cannot be negative, got %g", e.Surrogate.Worth)
		}
		if e.Surrogate.Sigma < 0 {
			return fmt.Errorf("surrogate sigma cannot be negative, got %g", e.Surrogate.Sigma)
		}
	case "command":
		if e.Command == nil || e.Command.Executable == "" {
			return fmt.Errorf("command engine requires an executable")
		}
		if e.Command.Threads < 0 {
			return fmt.Errorf("command threads cannot be negative, got %d", e.Command.Threads)
		}
	default:
		return fmt.Errorf("invalid engine kind: %s (must be surrogate or command)", e.Kind)
	}
	return nil
}

// ValidatePinCell checks the pin-cell geometry and run settings
func ValidatePinCell(p *PinCell) error {
	if p.FuelEnrichment <= 0 || p.FuelEnrichment > 100 {
		return fmt.Errorf("fuel_enrichment must be in (0, 100], got %g", p.FuelEnrichment)
	}
	if p.FuelDensity <= 0 || p.CladDensity <= 0 || p.WaterDensity <= 0 {
		return fmt.Errorf("densities must be positive")
	}
	if p.FuelOuterRadius <= 0 {
		return fmt.Errorf("fuel_outer_radius must be positive, got %g", p.FuelOuterRadius)
	}
	if p.CladOuterRadius <= p.FuelOuterRadius {
		return fmt.Errorf("clad_outer_radius %g must exceed fuel_outer_radius %g", p.CladOuterRadius, p.FuelOuterRadius)
	}
	if p.Pitch/2 <= p.CladOuterRadius {
		return fmt.Errorf("half pitch %g must exceed clad_outer_radius %g", p.Pitch/2, p.CladOuterRadius)
	}
	if p.Height <= 0 {
		return fmt.Errorf("height must be positive, got %g", p.Height)
	}
	if p.Particles <= 0 {
		return fmt.Errorf("particles must be positive, got %d", p.Particles)
	}
	if p.Inactive < 0 {
		return fmt.Errorf("inactive cannot be negative, got %d", p.Inactive)
	}
	if p.Batches <= p.Inactive {
		return fmt.Errorf("batches %d must exceed inactive %d", p.Batches, p.Inactive)
	}
	return nil
}
