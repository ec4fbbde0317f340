package search

import (
	"fmt"
	"math"
	"strings"
)

// Criterion decides whether a step has converged.
type Criterion interface {
	// Satisfied reports convergence for the given step and a human readable reason
	Satisfied(step Step, target float64) (bool, string)
	// Name returns the name of the criterion
	Name() string
}

// ValueCriterion converges when |f(guess) - target| <= Tolerance.
// This is the default.
type ValueCriterion struct {
	Tolerance float64
}

func (c ValueCriterion) Name() string {
	return "value"
}

func (c ValueCriterion) Satisfied(step Step, target float64) (bool, string) {
	residual := math.Abs(step.Result.Value - target)
	if residual <= c.Tolerance {
		return true, fmt.Sprintf("|f(x)-target| = %.3g <= %.3g", residual, c.Tolerance)
	}
	return false, ""
}

// BracketWidthCriterion converges when the interval kept after a step is no
// wider than Tolerance.
type BracketWidthCriterion struct {
	Tolerance float64
}

func (c BracketWidthCriterion) Name() string {
	return "bracket_width"
}

func (c BracketWidthCriterion) Satisfied(step Step, _ float64) (bool, string) {
	width := step.Width()
	if width <= c.Tolerance {
		return true, fmt.Sprintf("bracket width %.3g <= %.3g", width, c.Tolerance)
	}
	return false, ""
}

// AnyCriterion converges as soon as one of its members does.
type AnyCriterion []Criterion

func (c AnyCriterion) Name() string {
	names := make([]string, 0, len(c))
	for _, member := range c {
		names = append(names, member.Name())
	}
	return strings.Join(names, "|")
}

func (c AnyCriterion) Satisfied(step Step, target float64) (bool, string) {
	for _, member := range c {
		if ok, reason := member.Satisfied(step, target); ok {
			return true, fmt.Sprintf("%s: %s", member.Name(), reason)
		}
	}
	return false, ""
}

// NewCriterion builds a criterion by name: "value" (or empty), "bracket_width"
// or "any" (value or bracket width).
func NewCriterion(name string, tolerance float64) (Criterion, error) {
	switch strings.ToLower(name) {
	case "", "value":
		return ValueCriterion{Tolerance: tolerance}, nil
	case "bracket_width", "width":
		return BracketWidthCriterion{Tolerance: tolerance}, nil
	case "any":
		return AnyCriterion{ValueCriterion{Tolerance: tolerance}, BracketWidthCriterion{Tolerance: tolerance}}, nil
	default:
		return nil, fmt.Errorf("%w: unknown criterion %q (must be value, bracket_width or any)", ErrInvalidOptions, name)
	}
}
