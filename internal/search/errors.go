package search

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrBracket        = errors.New("bracket does not contain a sign change")
	ErrEvaluation     = errors.New("evaluation failed")
	ErrConvergence    = errors.New("search did not converge")
	ErrInvalidOptions = errors.New("invalid search options")
	ErrUnknownMethod  = errors.New("unknown search method")
	ErrNonFinite      = errors.New("non-finite result")
	ErrTimeout        = errors.New("evaluation timed out")
)

// BracketError reports that f(lo)-target and f(hi)-target share a sign.
type BracketError struct {
	Lo, Hi   float64
	FLo, FHi Result
	Target   float64
	History  History
}

func (e *BracketError) Error() string {
	return fmt.Sprintf("%s: f(%g)=%g and f(%g)=%g are on the same side of target %g",
		ErrBracket, e.Lo, e.FLo.Value, e.Hi, e.FHi.Value, e.Target)
}

func (e *BracketError) Is(target error) bool {
	return target == ErrBracket
}

// EvaluationError reports a failed or invalid evaluation. It wraps the cause.
type EvaluationError struct {
	Guess   float64
	Cause   error
	History History
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("%s at x=%g after %d evaluations: %v", ErrEvaluation, e.Guess, e.History.Len(), e.Cause)
}

func (e *EvaluationError) Unwrap() []error {
	return []error{ErrEvaluation, e.Cause}
}

// ConvergenceError reports that the iteration cap was reached, or the strategy
// stalled, before the criterion was satisfied.
type ConvergenceError struct {
	MaxIterations int
	Reason        string
	Best          Step
	History       History
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s after %d iterations (%s); best guess %g gave %g",
		ErrConvergence, len(e.History.Steps), e.Reason, e.Best.Guess, e.Best.Result.Value)
}

func (e *ConvergenceError) Is(target error) bool {
	return target == ErrConvergence
}

// Failure classes reported by Classify.
const (
	ClassBracket     = "bracket"
	ClassEvaluation  = "evaluation"
	ClassConvergence = "convergence"
	ClassCancelled   = "cancelled"
	ClassInvalid     = "invalid"
	ClassUnknown     = "unknown"
)

// Classify names the failure class of an error returned by Search.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBracket):
		return ClassBracket
	case errors.Is(err, ErrConvergence):
		return ClassConvergence
	case isCancellation(err):
		return ClassCancelled
	case errors.Is(err, ErrEvaluation):
		return ClassEvaluation
	case errors.Is(err, ErrInvalidOptions), errors.Is(err, ErrUnknownMethod):
		return ClassInvalid
	default:
		return ClassUnknown
	}
}

// PartialHistory extracts the history carried by a search error.
func PartialHistory(err error) (History, bool) {
	var be *BracketError
	if errors.As(err, &be) {
		return be.History, true
	}
	var ee *EvaluationError
	if errors.As(err, &ee) {
		return ee.History, true
	}
	var ce *ConvergenceError
	if errors.As(err, &ce) {
		return ce.History, true
	}
	return History{}, false
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
