package search

import (
	"fmt"
	"math"
)

// Secant iterates x[n+1] = x[n] - r[n](x[n]-x[n-1])/(r[n]-r[n-1]) starting from
// the two bracket endpoints. It does not require a sign change, so the search
// may leave the initial interval.
type Secant struct{}

func (Secant) Name() string {
	return "secant"
}

func (Secant) Solve(tr *Tracker) (*Outcome, error) {
	opts := tr.Options()
	x0, x1 := opts.Bracket[0], opts.Bracket[1]

	f0, f1, outcome, err := tr.boundaries()
	if err != nil || outcome != nil {
		return outcome, err
	}
	r0, r1 := tr.Residual(f0), tr.Residual(f1)

	for tr.Steps() < opts.MaxIterations {
		if r1 == r0 {
			return nil, tr.ConvergenceError(fmt.Sprintf("secant stalled: f(%g) and f(%g) are equal", x0, x1))
		}
		x2 := x1 - r1*(x1-x0)/(r1-r0)
		if math.IsNaN(x2) || math.IsInf(x2, 0) {
			return nil, tr.ConvergenceError("secant step diverged")
		}

		y, err := tr.Evaluate(x2)
		if err != nil {
			return nil, err
		}

		lo, hi := math.Min(x1, x2), math.Max(x1, x2)
		if ok, reason := tr.Record(Step{Guess: x2, Result: y, Lo: lo, Hi: hi}); ok {
			return tr.Converged(x2, y, reason), nil
		}
		x0, r0 = x1, r1
		x1, r1 = x2, tr.Residual(y)
	}

	return nil, tr.ConvergenceError(fmt.Sprintf("max iterations (%d) reached", opts.MaxIterations))
}
