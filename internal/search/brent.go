package search

import (
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/keff-search/pkg/utils"
)

// Brent combines bisection, secant and inverse quadratic interpolation while
// always keeping a bracket around the root. It shares the bisection
// precondition.
type Brent struct{}

func (Brent) Name() string {
	return "brentq"
}

func (Brent) Solve(tr *Tracker) (*Outcome, error) {
	opts := tr.Options()
	a, b := opts.Bracket[0], opts.Bracket[1]

	ya, yb, outcome, err := tr.boundaries()
	if err != nil || outcome != nil {
		return outcome, err
	}
	if err := tr.requireSignChange(ya, yb); err != nil {
		return nil, err
	}

	fa, fb := tr.Residual(ya), tr.Residual(yb)
	c, fc := b, fb
	var d, e float64

	for tr.Steps() < opts.MaxIterations {
		if utils.Sign(fb) == utils.Sign(fc) {
			c, fc = a, fa
			d = b - a
			e = d
		}
		// b is the best estimate, c the bracket partner.
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}

		tol1 := 2 * epsilon * math.Abs(b)
		xm := 0.5 * (c - b)
		if math.Abs(xm) <= tol1 {
			return nil, tr.ConvergenceError(fmt.Sprintf("bracket collapsed at %g without meeting the criterion", b))
		}

		if math.Abs(e) >= tol1 && math.Abs(fa) > math.Abs(fb) {
			var p, q float64
			s := fb / fa
			if a == c {
				p = 2 * xm * s
				q = 1 - s
			} else {
				qq := fa / fc
				r := fb / fc
				p = s * (2*xm*qq*(qq-r) - (b-a)*(r-1))
				q = (qq - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			min1 := 3*xm*q - math.Abs(tol1*q)
			min2 := math.Abs(e * q)
			if 2*p < math.Min(min1, min2) {
				e = d
				d = p / q
			} else {
				d = xm
				e = d
			}
		} else {
			d = xm
			e = d
		}

		a, fa = b, fb
		if math.Abs(d) > tol1 {
			b += d
		} else {
			b += math.Copysign(tol1, xm)
		}

		yb, err := tr.Evaluate(b)
		if err != nil {
			return nil, err
		}
		fb = tr.Residual(yb)

		partner := c
		if utils.Sign(fb) == utils.Sign(fc) {
			partner = a
		}
		step := Step{Guess: b, Result: yb, Lo: math.Min(b, partner), Hi: math.Max(b, partner)}
		if ok, reason := tr.Record(step); ok {
			return tr.Converged(b, yb, reason), nil
		}
	}

	return nil, tr.ConvergenceError(fmt.Sprintf("max iterations (%d) reached", opts.MaxIterations))
}

// epsilon is the float64 machine epsilon.
const epsilon = 2.220446049250313e-16
