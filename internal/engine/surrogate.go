package engine

import (
	"context"
	"fmt"

	"github.com/GoSim-25-26J-441/keff-search/internal/reactor"
	"github.com/GoSim-25-26J-441/keff-search/internal/search"
	"github.com/GoSim-25-26J-441/keff-search/pkg/config"
	"github.com/GoSim-25-26J-441/keff-search/pkg/utils"
)

// SurrogateEngine stands in for the transport code with
// k(ppm) = K0 / (1 + Worth*ppm). With Sigma > 0 every active batch gets
// Gaussian noise of that standard deviation and the result is the batch mean
// with its standard error, as a real eigenvalue run reports it.
type SurrogateEngine struct {
	K0    float64
	Worth float64
	Sigma float64

	rng *utils.RandSource
}

// NewSurrogateEngine creates a surrogate engine from configuration.
func NewSurrogateEngine(cfg config.SurrogateEngine) *SurrogateEngine {
	return &SurrogateEngine{
		K0:    cfg.K0,
		Worth: cfg.Worth,
		Sigma: cfg.Sigma,
		rng:   utils.NewRandSource(cfg.Seed),
	}
}

// Name returns "surrogate".
func (e *SurrogateEngine) Name() string {
	return KindSurrogate
}

// Keff returns the noiseless multiplication factor at ppm.
func (e *SurrogateEngine) Keff(ppm float64) float64 {
	return e.K0 / (1 + e.Worth*ppm)
}

// CriticalPPM returns the concentration where Keff equals target.
func (e *SurrogateEngine) CriticalPPM(target float64) float64 {
	return (e.K0/target - 1) / e.Worth
}

// Run evaluates the model at its boron concentration.
func (e *SurrogateEngine) Run(ctx context.Context, model *reactor.Model) (search.Result, error) {
	if err := ctx.Err(); err != nil {
		return search.Result{}, err
	}
	if model == nil {
		return search.Result{}, fmt.Errorf("model is nil")
	}
	k := e.Keff(model.Parameter())
	if e.Sigma == 0 {
		return search.Result{Value: k}, nil
	}

	settings := model.Settings()
	active := settings.Batches - settings.Inactive
	if active < 2 {
		return search.Result{}, fmt.Errorf("surrogate noise needs at least 2 active batches, got %d", active)
	}
	rng := e.rng
	if rng == nil {
		rng = utils.NewRandSource(1)
		e.rng = rng
	}
	batches := make([]float64, active)
	for i := range batches {
		batches[i] = rng.NormFloat64(k, e.Sigma)
	}
	return search.Result{Value: utils.Mean(batches), StdDev: utils.StdErrOfMean(batches)}, nil
}
