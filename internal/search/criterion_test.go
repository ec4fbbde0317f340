package search

import (
	"errors"
	"strings"
	"testing"
)

func TestValueCriterion(t *testing.T) {
	c := ValueCriterion{Tolerance: 0.01}
	if c.Name() != "value" {
		t.Fatalf("expected name value, got %s", c.Name())
	}

	ok, reason := c.Satisfied(Step{Result: Result{Value: 1.005}}, 1.0)
	if !ok {
		t.Fatalf("expected 1.005 to satisfy tolerance 0.01 around 1.0")
	}
	if reason == "" {
		t.Fatalf("expected a reason")
	}

	if ok, _ := c.Satisfied(Step{Result: Result{Value: 0.98}}, 1.0); ok {
		t.Fatalf("expected 0.98 not to satisfy tolerance 0.01 around 1.0")
	}
}

func TestBracketWidthCriterion(t *testing.T) {
	c := BracketWidthCriterion{Tolerance: 5}
	if c.Name() != "bracket_width" {
		t.Fatalf("expected name bracket_width, got %s", c.Name())
	}
	// The result value is irrelevant for this criterion.
	if ok, _ := c.Satisfied(Step{Lo: 1500, Hi: 1504, Result: Result{Value: 3}}, 1.0); !ok {
		t.Fatalf("expected width 4 to satisfy tolerance 5")
	}
	if ok, _ := c.Satisfied(Step{Lo: 1500, Hi: 1510, Result: Result{Value: 1}}, 1.0); ok {
		t.Fatalf("expected width 10 not to satisfy tolerance 5")
	}
}

func TestAnyCriterion(t *testing.T) {
	c := AnyCriterion{ValueCriterion{Tolerance: 0.01}, BracketWidthCriterion{Tolerance: 1}}
	if c.Name() != "value|bracket_width" {
		t.Fatalf("unexpected name %s", c.Name())
	}
	ok, reason := c.Satisfied(Step{Lo: 0, Hi: 0.5, Result: Result{Value: 2}}, 1.0)
	if !ok || !strings.HasPrefix(reason, "bracket_width:") {
		t.Fatalf("expected bracket width member to converge, got %v %q", ok, reason)
	}
	if ok, _ := c.Satisfied(Step{Lo: 0, Hi: 10, Result: Result{Value: 2}}, 1.0); ok {
		t.Fatalf("expected no member to converge")
	}
}

func TestNewCriterion(t *testing.T) {
	tests := []struct {
		name     string
		wantName string
	}{
		{"", "value"},
		{"value", "value"},
		{"width", "bracket_width"},
		{"bracket_width", "bracket_width"},
		{"any", "value|bracket_width"},
	}
	for _, tt := range tests {
		c, err := NewCriterion(tt.name, 0.01)
		if err != nil {
			t.Fatalf("NewCriterion(%q): %v", tt.name, err)
		}
		if c.Name() != tt.wantName {
			t.Fatalf("NewCriterion(%q) name = %s, want %s", tt.name, c.Name(), tt.wantName)
		}
	}

	if _, err := NewCriterion("residual_norm", 0.01); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("expected ErrInvalidOptions, got %v", err)
	}
}
