package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	hist := History{Guesses: []float64{1000, 2500}, Results: []Result{{Value: 1.1}, {Value: 0.9}}}
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"bracket", &BracketError{History: hist}, ClassBracket},
		{"wrapped bracket", fmt.Errorf("boron search: %w", &BracketError{}), ClassBracket},
		{"evaluation", &EvaluationError{Cause: errors.New("crash")}, ClassEvaluation},
		{"cancelled", &EvaluationError{Cause: context.Canceled}, ClassCancelled},
		{"deadline", &EvaluationError{Cause: context.DeadlineExceeded}, ClassCancelled},
		{"convergence", &ConvergenceError{}, ClassConvergence},
		{"invalid", fmt.Errorf("%w: bad", ErrInvalidOptions), ClassInvalid},
		{"unknown method", fmt.Errorf("%w: newton", ErrUnknownMethod), ClassInvalid},
		{"other", errors.New("disk full"), ClassUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Fatalf("Classify = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPartialHistory(t *testing.T) {
	hist := History{Guesses: []float64{1000, 2500}, Results: []Result{{Value: 1.1}, {Value: 0.9}}}

	for _, err := range []error{
		&BracketError{History: hist},
		&EvaluationError{Cause: errors.New("crash"), History: hist},
		fmt.Errorf("wrapped: %w", &ConvergenceError{History: hist}),
	} {
		got, ok := PartialHistory(err)
		if !ok || got.Len() != 2 {
			t.Fatalf("PartialHistory(%T) = %+v, %v", err, got, ok)
		}
	}

	if _, ok := PartialHistory(errors.New("plain")); ok {
		t.Fatalf("expected no history for a plain error")
	}
}

func TestErrorMessages(t *testing.T) {
	be := &BracketError{Lo: 2000, Hi: 2500, FLo: Result{Value: 500}, FHi: Result{Value: 1000}}
	if !strings.Contains(be.Error(), "same side of target") {
		t.Fatalf("unexpected bracket message: %s", be.Error())
	}

	ee := &EvaluationError{Guess: 1750, Cause: errors.New("segfault")}
	if !strings.Contains(ee.Error(), "x=1750") || !strings.Contains(ee.Error(), "segfault") {
		t.Fatalf("unexpected evaluation message: %s", ee.Error())
	}

	ce := &ConvergenceError{Reason: "max iterations (3) reached", Best: Step{Guess: 1501, Result: Result{Value: 1.02}}}
	if !strings.Contains(ce.Error(), "max iterations (3) reached") {
		t.Fatalf("unexpected convergence message: %s", ce.Error())
	}
}
