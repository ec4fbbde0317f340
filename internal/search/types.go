package search

import (
	"context"
	"fmt"
	"time"

	"github.com/GoSim-25-26J-441/keff-search/pkg/utils"
)

// Result is the outcome of one black-box evaluation: a point estimate and an
// optional one-sigma uncertainty.
type Result struct {
	Value  float64 `json:"value" yaml:"value"`
	StdDev float64 `json:"std_dev,omitempty" yaml:"std_dev,omitempty"`
}

func (r Result) String() string {
	if r.StdDev > 0 {
		return fmt.Sprintf("%.5f +/- %.5f", r.Value, r.StdDev)
	}
	return fmt.Sprintf("%.5f", r.Value)
}

// Evaluator runs the black box for one parameter value.
type Evaluator interface {
	Evaluate(ctx context.Context, x float64) (Result, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, x float64) (Result, error)

// Evaluate calls f(ctx, x).
func (f EvaluatorFunc) Evaluate(ctx context.Context, x float64) (Result, error) {
	return f(ctx, x)
}

// ScalarFunc adapts a plain scalar function without uncertainty.
type ScalarFunc func(x float64) float64

// Evaluate returns f(x) as a Result with zero uncertainty.
func (f ScalarFunc) Evaluate(_ context.Context, x float64) (Result, error) {
	return Result{Value: f(x)}, nil
}

// Evaluation is a single call of the black box, in call order.
type Evaluation struct {
	Index  int     `json:"index"` // 1-based
	Guess  float64 `json:"guess"`
	Result Result  `json:"result"`
}

// Step is one iteration of a strategy after its initial evaluations.
// Lo and Hi bound the interval the strategy keeps after the step.
type Step struct {
	Iteration int     `json:"iteration"` // 1-based
	Guess     float64 `json:"guess"`
	Result    Result  `json:"result"`
	Lo        float64 `json:"lo"`
	Hi        float64 `json:"hi"`
}

// Width returns Hi - Lo.
func (s Step) Width() float64 {
	return s.Hi - s.Lo
}

// History holds every evaluation (boundary evaluations included) and the
// iteration steps of a search.
type History struct {
	Guesses []float64 `json:"guesses"`
	Results []Result  `json:"results"`
	Steps   []Step    `json:"steps"`
}

// Len returns the number of evaluations.
func (h History) Len() int {
	return len(h.Guesses)
}

func (h History) clone() History {
	return History{
		Guesses: append([]float64(nil), h.Guesses...),
		Results: append([]Result(nil), h.Results...),
		Steps:   append([]Step(nil), h.Steps...),
	}
}

// Outcome is the result of a successful search.
type Outcome struct {
	Root      float64 `json:"root"`
	Result    Result  `json:"result"`
	Method    string  `json:"method"`
	Criterion string  `json:"criterion"`
	Reason    string  `json:"reason"`
	History   History `json:"history"`
}

// Iterations returns the number of strategy steps taken.
func (o *Outcome) Iterations() int {
	return len(o.History.Steps)
}

// Options configures a search.
type Options struct {
	// Bracket is [lo, hi] with lo < hi. Secant uses the endpoints as its two
	// starting guesses.
	Bracket [2]float64
	// Target is the value f(x*) should reach. Zero means 1.0 unless
	// TargetSet is true.
	Target    float64
	TargetSet bool
	// Tolerance is passed to the criterion; defaults to DefaultTolerance.
	Tolerance float64
	// MaxIterations caps strategy steps (boundary evaluations excluded).
	MaxIterations int
	// Method names a registered strategy; defaults to "bisect".
	Method string
	// Criterion decides convergence; defaults to ValueCriterion{Tolerance}.
	Criterion Criterion
	// EvaluationTimeout bounds each call of the evaluator when positive.
	EvaluationTimeout time.Duration
	// Progress is called after every successful evaluation.
	Progress func(Evaluation)
}

const (
	DefaultTarget        = 1.0
	DefaultTolerance     = 1e-2
	DefaultMaxIterations = 100
	DefaultMethod        = "bisect"
)

// withDefaults fills zero-valued fields.
func (o Options) withDefaults() Options {
	if !o.TargetSet && o.Target == 0 {
		o.Target = DefaultTarget
	}
	if o.Tolerance == 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Method == "" {
		o.Method = DefaultMethod
	}
	if o.Criterion == nil {
		o.Criterion = ValueCriterion{Tolerance: o.Tolerance}
	}
	return o
}

func (o Options) validate() error {
	lo, hi := o.Bracket[0], o.Bracket[1]
	if !utils.IsFinite(lo) || !utils.IsFinite(hi) {
		return fmt.Errorf("%w: bracket endpoints must be finite, got [%g, %g]", ErrInvalidOptions, lo, hi)
	}
	if lo >= hi {
		return fmt.Errorf("%w: bracket lower bound %g must be below upper bound %g", ErrInvalidOptions, lo, hi)
	}
	if !utils.IsFinite(o.Target) {
		return fmt.Errorf("%w: target must be finite", ErrInvalidOptions)
	}
	if o.Tolerance < 0 {
		return fmt.Errorf("%w: tolerance cannot be negative, got %g", ErrInvalidOptions, o.Tolerance)
	}
	if o.MaxIterations < 0 {
		return fmt.Errorf("%w: max_iterations cannot be negative, got %d", ErrInvalidOptions, o.MaxIterations)
	}
	if o.EvaluationTimeout < 0 {
		return fmt.Errorf("%w: evaluation timeout cannot be negative", ErrInvalidOptions)
	}
	return nil
}
