package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/GoSim-25-26J-441/keff-search/internal/metrics"
	"github.com/GoSim-25-26J-441/keff-search/internal/reactor"
	"github.com/GoSim-25-26J-441/keff-search/internal/search"
)

// ModelEvaluator builds the model at a parameter value and runs it through
// an engine. It implements search.Evaluator.
type ModelEvaluator struct {
	Builder reactor.Builder
	Engine  Engine
	Metrics *metrics.Collector
}

// Evaluate builds and runs the model at x.
func (e *ModelEvaluator) Evaluate(ctx context.Context, x float64) (search.Result, error) {
	start := time.Now()
	res, err := e.evaluate(ctx, x)
	e.Metrics.ObserveEvaluation(e.Engine.Name(), time.Since(start), err)
	return res, err
}

func (e *ModelEvaluator) evaluate(ctx context.Context, x float64) (search.Result, error) {
	model, err := e.Builder.Build(x)
	if err != nil {
		return search.Result{}, fmt.Errorf("build model: %w", err)
	}
	res, err := e.Engine.Run(ctx, model)
	if err != nil {
		return search.Result{}, fmt.Errorf("%s engine: %w", e.Engine.Name(), err)
	}
	return res, nil
}

var _ search.Evaluator = (*ModelEvaluator)(nil)
