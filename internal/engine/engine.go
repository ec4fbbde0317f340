// Package engine runs reactor models through a simulation engine and adapts
// the result to the root finder.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/GoSim-25-26J-441/keff-search/internal/reactor"
	"github.com/GoSim-25-26J-441/keff-search/internal/search"
	"github.com/GoSim-25-26J-441/keff-search/pkg/config"
)

// Engine kinds accepted in configuration.
const (
	KindSurrogate = "surrogate"
	KindCommand   = "command"
)

// ErrNoKeff is returned when an engine run finishes without a k-effective
// estimate.
var ErrNoKeff = errors.New("no k-effective estimate in engine output")

// Engine runs one simulation of a model and returns its k-effective estimate.
type Engine interface {
	Name() string
	Run(ctx context.Context, model *reactor.Model) (search.Result, error)
}

// New builds the engine selected by cfg.
func New(cfg *config.Engine) (Engine, error) {
	switch cfg.Kind {
	case KindSurrogate:
		if cfg.Surrogate == nil {
			return nil, fmt.Errorf("surrogate engine requires a surrogate section")
		}
		return NewSurrogateEngine(*cfg.Surrogate), nil
	case KindCommand:
		if cfg.Command == nil {
			return nil, fmt.Errorf("command engine requires a command section")
		}
		return NewCommandEngine(*cfg.Command), nil
	default:
		return nil, fmt.Errorf("unknown engine kind %q", cfg.Kind)
	}
}
