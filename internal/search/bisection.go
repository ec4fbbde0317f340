package search

import (
	"fmt"

	"github.com/GoSim-25-26J-441/keff-search/pkg/utils"
)

// Bisection halves the bracket every iteration, keeping the half across which
// f(x)-target changes sign. It is the default strategy.
type Bisection struct{}

func (Bisection) Name() string {
	return "bisect"
}

func (Bisection) Solve(tr *Tracker) (*Outcome, error) {
	opts := tr.Options()
	lo, hi := opts.Bracket[0], opts.Bracket[1]

	flo, fhi, outcome, err := tr.boundaries()
	if err != nil || outcome != nil {
		return outcome, err
	}
	if err := tr.requireSignChange(flo, fhi); err != nil {
		return nil, err
	}
	loSign := utils.Sign(tr.Residual(flo))

	for tr.Steps() < opts.MaxIterations {
		mid := (lo + hi) / 2
		y, err := tr.Evaluate(mid)
		if err != nil {
			return nil, err
		}

		if utils.Sign(tr.Residual(y)) == loSign {
			lo = mid
		} else {
			hi = mid
		}

		if ok, reason := tr.Record(Step{Guess: mid, Result: y, Lo: lo, Hi: hi}); ok {
			return tr.Converged(mid, y, reason), nil
		}
	}

	return nil, tr.ConvergenceError(fmt.Sprintf("max iterations (%d) reached", opts.MaxIterations))
}
