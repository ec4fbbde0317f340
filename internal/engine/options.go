package engine

import (
	"fmt"

	"github.com/GoSim-25-26J-441/keff-search/internal/metrics"
	"github.com/GoSim-25-26J-441/keff-search/internal/reactor"
	"github.com/GoSim-25-26J-441/keff-search/internal/search"
	"github.com/GoSim-25-26J-441/keff-search/pkg/config"
)

// OptionsFromConfig converts the search section of the configuration.
func OptionsFromConfig(s config.Search) (search.Options, error) {
	if len(s.Bracket) != 2 {
		return search.Options{}, fmt.Errorf("bracket must have exactly two values, got %d", len(s.Bracket))
	}
	timeout, err := s.GetEvaluationTimeout()
	if err != nil {
		return search.Options{}, fmt.Errorf("evaluation timeout: %w", err)
	}
	criterion, err := search.NewCriterion(s.Criterion, s.Tolerance)
	if err != nil {
		return search.Options{}, err
	}
	return search.Options{
		Bracket:           [2]float64{s.Bracket[0], s.Bracket[1]},
		Target:            s.Target,
		TargetSet:         true,
		Tolerance:         s.Tolerance,
		MaxIterations:     s.MaxIterations,
		Method:            s.Method,
		Criterion:         criterion,
		EvaluationTimeout: timeout,
	}, nil
}

// NewEvaluator wires the pin-cell builder and the configured engine.
func NewEvaluator(cfg *config.Config, m *metrics.Collector) (*ModelEvaluator, error) {
	builder, err := reactor.NewPinCellBuilder(cfg.Model)
	if err != nil {
		return nil, err
	}
	eng, err := New(&cfg.Engine)
	if err != nil {
		return nil, err
	}
	return &ModelEvaluator{Builder: builder, Engine: eng, Metrics: m}, nil
}
