package engine

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/keff-search/internal/metrics"
	"github.com/GoSim-25-26J-441/keff-search/internal/reactor"
	"github.com/GoSim-25-26J-441/keff-search/internal/search"
	"github.com/GoSim-25-26J-441/keff-search/pkg/config"
)

type stubEngine struct {
	err error
}

func (s stubEngine) Name() string { return "stub" }

func (s stubEngine) Run(_ context.Context, m *reactor.Model) (search.Result, error) {
	if s.err != nil {
		return search.Result{}, s.err
	}
	return search.Result{Value: m.Parameter()}, nil
}

func TestModelEvaluator(t *testing.T) {
	builder, err := reactor.NewPinCellBuilder(config.DefaultPinCell())
	if err != nil {
		t.Fatalf("NewPinCellBuilder: %v", err)
	}
	m := metrics.NewCollector()
	ev := &ModelEvaluator{Builder: builder, Engine: stubEngine{}, Metrics: m}

	res, err := ev.Evaluate(context.Background(), 1234)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Value != 1234 {
		t.Fatalf("expected engine to see the built parameter, got %v", res.Value)
	}

	if _, err := ev.Evaluate(context.Background(), -5); err == nil {
		t.Fatalf("expected builder error for negative ppm")
	}

	boom := errors.New("boom")
	ev.Engine = stubEngine{err: boom}
	if _, err := ev.Evaluate(context.Background(), 10); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped engine error, got %v", err)
	}

	if agg := m.EvaluationSummary("stub"); agg == nil || agg.Count != 3 {
		t.Fatalf("expected 3 recorded evaluations, got %+v", agg)
	}
}

func TestSearchWithSurrogate(t *testing.T) {
	cfg := config.DefaultConfig()
	ev, err := NewEvaluator(cfg, nil)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	opts, err := OptionsFromConfig(cfg.Search)
	if err != nil {
		t.Fatalf("OptionsFromConfig: %v", err)
	}

	for _, method := range []string{"bisect", "secant", "brentq"} {
		t.Run(method, func(t *testing.T) {
			o := opts
			o.Method = method
			out, err := search.Search(context.Background(), ev, o)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if math.Abs(out.Result.Value-1.0) > cfg.Search.Tolerance {
				t.Fatalf("keff %v not within tolerance", out.Result.Value)
			}
			// dk/dppm is about -1.1e-4 near 1840 ppm, so a keff tolerance of
			// 1e-2 bounds the error by roughly 100 ppm.
			if math.Abs(out.Root-1840) > 100 {
				t.Fatalf("root %v too far from 1840", out.Root)
			}
		})
	}
}

func TestOptionsFromConfig(t *testing.T) {
	s := config.DefaultConfig().Search
	s.Criterion = "bracket_width"
	s.Tolerance = 5
	s.EvaluationTimeout = "2s"
	opts, err := OptionsFromConfig(s)
	if err != nil {
		t.Fatalf("OptionsFromConfig: %v", err)
	}
	if opts.Bracket != [2]float64{1000, 2500} {
		t.Fatalf("unexpected bracket %v", opts.Bracket)
	}
	if !opts.TargetSet || opts.Target != 1.0 {
		t.Fatalf("expected explicit target 1.0, got %v", opts.Target)
	}
	if opts.Criterion.Name() != "bracket_width" {
		t.Fatalf("unexpected criterion %s", opts.Criterion.Name())
	}
	if opts.EvaluationTimeout != 2*time.Second {
		t.Fatalf("unexpected timeout %v", opts.EvaluationTimeout)
	}

	s.Bracket = []float64{1}
	if _, err := OptionsFromConfig(s); err == nil {
		t.Fatalf("expected bracket error")
	}
	s.Bracket = []float64{1, 2}
	s.Criterion = "bogus"
	if _, err := OptionsFromConfig(s); !errors.Is(err, search.ErrInvalidOptions) {
		t.Fatalf("expected invalid options error, got %v", err)
	}
}
