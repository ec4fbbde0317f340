package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/GoSim-25-26J-441/keff-search/pkg/logger"
	"github.com/GoSim-25-26J-441/keff-search/pkg/utils"
)

// Strategy is a root-finding method. Implementations drive a Tracker, which
// performs and records every evaluation.
type Strategy interface {
	Name() string
	Solve(tr *Tracker) (*Outcome, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Strategy{}
	aliases    = map[string]string{
		"bisection": "bisect",
		"brent":     "brentq",
	}
)

func init() {
	Register(Bisection{})
	Register(Secant{})
	Register(Brent{})
}

// Register adds or replaces a strategy under its name.
func Register(s Strategy) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(s.Name())] = s
}

// Lookup returns the strategy registered under name or an alias of it.
func Lookup(name string) (Strategy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownMethod, name, strings.Join(methodsLocked(), ", "))
	}
	return s, nil
}

// Methods lists the registered strategy names.
func Methods() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return methodsLocked()
}

func methodsLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Search finds x* in opts.Bracket with f(x*) reaching opts.Target.
func Search(ctx context.Context, f Evaluator, opts Options) (*Outcome, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: evaluator is required", ErrInvalidOptions)
	}
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	strategy, err := Lookup(opts.Method)
	if err != nil {
		return nil, err
	}

	tr := &Tracker{ctx: ctx, f: f, opts: opts}
	logger.Debug("search started",
		"method", strategy.Name(),
		"criterion", opts.Criterion.Name(),
		"lo", opts.Bracket[0],
		"hi", opts.Bracket[1],
		"target", opts.Target,
		"tolerance", opts.Tolerance,
		"max_iterations", opts.MaxIterations)

	outcome, err := strategy.Solve(tr)
	if err != nil {
		logger.Debug("search failed", "method", strategy.Name(), "evaluations", tr.history.Len(), "error", err)
		return nil, err
	}
	outcome.Method = strategy.Name()
	outcome.Criterion = opts.Criterion.Name()
	logger.Debug("search converged", "method", outcome.Method, "root", outcome.Root, "iterations", outcome.Iterations())
	return outcome, nil
}

// Tracker evaluates the black box on behalf of a strategy and owns the
// history of one search call.
type Tracker struct {
	ctx     context.Context
	f       Evaluator
	opts    Options
	history History
}

// Options returns the effective options of the search.
func (t *Tracker) Options() Options {
	return t.opts
}

// Residual returns r.Value - target.
func (t *Tracker) Residual(r Result) float64 {
	return r.Value - t.opts.Target
}

// Evaluate calls the black box at x and records the evaluation. Any failure
// is returned as an *EvaluationError carrying the history so far.
func (t *Tracker) Evaluate(x float64) (Result, error) {
	if err := t.ctx.Err(); err != nil {
		return Result{}, t.evaluationError(x, err)
	}

	ctx := t.ctx
	if t.opts.EvaluationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(t.ctx, t.opts.EvaluationTimeout)
		defer cancel()
	}

	res, err := t.f.Evaluate(ctx, x)
	if err != nil {
		// A per-evaluation deadline is an evaluation failure, not a cancellation
		// of the whole search.
		switch {
		case t.ctx.Err() == nil && ctx.Err() != nil && errors.Is(err, context.DeadlineExceeded):
			err = fmt.Errorf("%w after %s: %v", ErrTimeout, t.opts.EvaluationTimeout, err)
		case t.ctx.Err() != nil && !errors.Is(err, t.ctx.Err()):
			err = fmt.Errorf("%w: %v", t.ctx.Err(), err)
		}
		return Result{}, t.evaluationError(x, err)
	}
	if !utils.IsFinite(res.Value) || !utils.IsFinite(res.StdDev) {
		return Result{}, t.evaluationError(x, fmt.Errorf("%w: %v", ErrNonFinite, res))
	}

	t.history.Guesses = append(t.history.Guesses, x)
	t.history.Results = append(t.history.Results, res)
	ev := Evaluation{Index: t.history.Len(), Guess: x, Result: res}
	logger.Debug("search evaluation", "index", ev.Index, "guess", x, "value", res.Value, "std_dev", res.StdDev)
	if t.opts.Progress != nil {
		t.opts.Progress(ev)
	}
	return res, nil
}

// Record appends a strategy step and reports whether it satisfies the
// criterion. A step that hits the target exactly always converges.
func (t *Tracker) Record(step Step) (bool, string) {
	step.Iteration = len(t.history.Steps) + 1
	t.history.Steps = append(t.history.Steps, step)
	if t.Residual(step.Result) == 0 {
		return true, "exact root"
	}
	return t.opts.Criterion.Satisfied(step, t.opts.Target)
}

// Steps returns the number of recorded steps.
func (t *Tracker) Steps() int {
	return len(t.history.Steps)
}

// Converged builds the outcome for a root accepted by the strategy.
func (t *Tracker) Converged(root float64, res Result, reason string) *Outcome {
	return &Outcome{
		Root:    root,
		Result:  res,
		Reason:  reason,
		History: t.history.clone(),
	}
}

// BracketError builds the error for a bracket without a sign change.
func (t *Tracker) BracketError(lo, hi float64, flo, fhi Result) error {
	return &BracketError{
		Lo:      lo,
		Hi:      hi,
		FLo:     flo,
		FHi:     fhi,
		Target:  t.opts.Target,
		History: t.history.clone(),
	}
}

// ConvergenceError builds the error for a search that ran out of iterations
// or stalled. Best is the recorded step closest to the target.
func (t *Tracker) ConvergenceError(reason string) error {
	e := &ConvergenceError{
		MaxIterations: t.opts.MaxIterations,
		Reason:        reason,
		History:       t.history.clone(),
	}
	for i, step := range t.history.Steps {
		if i == 0 || math.Abs(t.Residual(step.Result)) < math.Abs(t.Residual(e.Best.Result)) {
			e.Best = step
		}
	}
	return e
}

func (t *Tracker) evaluationError(x float64, cause error) error {
	return &EvaluationError{
		Guess:   x,
		Cause:   cause,
		History: t.history.clone(),
	}
}

// boundaries evaluates both bracket endpoints. It returns converged=true with
// an outcome if an endpoint hits the target exactly.
func (t *Tracker) boundaries() (flo, fhi Result, outcome *Outcome, err error) {
	lo, hi := t.opts.Bracket[0], t.opts.Bracket[1]
	if flo, err = t.Evaluate(lo); err != nil {
		return
	}
	if fhi, err = t.Evaluate(hi); err != nil {
		return
	}
	switch {
	case t.Residual(flo) == 0:
		outcome = t.Converged(lo, flo, "exact root at lower bound")
	case t.Residual(fhi) == 0:
		outcome = t.Converged(hi, fhi, "exact root at upper bound")
	}
	return
}

// requireSignChange enforces the bracketing precondition.
func (t *Tracker) requireSignChange(flo, fhi Result) error {
	if utils.Sign(t.Residual(flo)) == utils.Sign(t.Residual(fhi)) {
		return t.BracketError(t.opts.Bracket[0], t.opts.Bracket[1], flo, fhi)
	}
	return nil
}
