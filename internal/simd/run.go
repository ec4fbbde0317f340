package simd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/GoSim-25-26J-441/keff-search/internal/engine"
	"github.com/GoSim-25-26J-441/keff-search/internal/search"
	"github.com/GoSim-25-26J-441/keff-search/pkg/config"
)

// RunStatus is the lifecycle state of a search run.
type RunStatus string

const (
	RunStatusUnspecified RunStatus = ""
	RunStatusPending     RunStatus = "PENDING"
	RunStatusRunning     RunStatus = "RUNNING"
	RunStatusCompleted   RunStatus = "COMPLETED"
	RunStatusFailed      RunStatus = "FAILED"
	RunStatusCancelled   RunStatus = "CANCELLED"
)

// IsTerminal reports whether no further transitions are possible.
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled:
		return true
	}
	return false
}

// parseRunStatus parses a status filter; unknown values mean no filter.
func parseRunStatus(statusStr string) RunStatus {
	switch s := RunStatus(strings.ToUpper(statusStr)); s {
	case RunStatusPending, RunStatusRunning, RunStatusCompleted, RunStatusFailed, RunStatusCancelled:
		return s
	default:
		return RunStatusUnspecified
	}
}

// SearchRequest overrides parts of the daemon's base configuration for one
// search. Zero values keep the base setting. Engine may only carry surrogate
// parameters.
type SearchRequest struct {
	Bracket           []float64       `json:"bracket,omitempty"`
	Target            *float64        `json:"target,omitempty"`
	Tolerance         float64         `json:"tolerance,omitempty"`
	MaxIterations     int             `json:"max_iterations,omitempty"`
	Method            string          `json:"method,omitempty"`
	Criterion         string          `json:"criterion,omitempty"`
	EvaluationTimeout string          `json:"evaluation_timeout,omitempty"`
	Engine            *config.Engine  `json:"engine,omitempty"`
	Model             *config.PinCell `json:"model,omitempty"`
	CallbackURL       string          `json:"callback_url,omitempty"`
	CallbackSecret    string          `json:"callback_secret,omitempty"`
}

// Resolve applies the request to a copy of base and validates the result.
func (r *SearchRequest) Resolve(base *config.Config) (*config.Config, error) {
	cfg := *base
	cfg.Search.Bracket = slices.Clone(base.Search.Bracket)
	if r != nil {
		if r.Bracket != nil {
			cfg.Search.Bracket = slices.Clone(r.Bracket)
		}
		if r.Target != nil {
			cfg.Search.Target = *r.Target
		}
		if r.Tolerance != 0 {
			cfg.Search.Tolerance = r.Tolerance
		}
		if r.MaxIterations != 0 {
			cfg.Search.MaxIterations = r.MaxIterations
		}
		if r.Method != "" {
			cfg.Search.Method = r.Method
		}
		if r.Criterion != "" {
			cfg.Search.Criterion = r.Criterion
		}
		if r.EvaluationTimeout != "" {
			cfg.Search.EvaluationTimeout = r.EvaluationTimeout
		}
		if r.Engine != nil {
			eng, err := overrideEngine(base.Engine, r.Engine)
			if err != nil {
				return nil, err
			}
			cfg.Engine = eng
		}
		if r.Model != nil {
			cfg.Model = *r.Model
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return &cfg, nil
}

// overrideEngine applies the engine part of a request. Requests may tune the
// surrogate of a surrogate daemon; the engine kind and the command section
// stay as the daemon was configured.
func overrideEngine(base config.Engine, req *config.Engine) (config.Engine, error) {
	if req.Command != nil {
		return config.Engine{}, fmt.Errorf("%w: engine.command cannot be set per search", ErrInvalidRequest)
	}
	if req.Kind != "" && req.Kind != base.Kind {
		return config.Engine{}, fmt.Errorf("%w: engine kind %q differs from the daemon engine %q", ErrInvalidRequest, req.Kind, base.Kind)
	}
	out := base
	if req.Surrogate != nil {
		if base.Kind != engine.KindSurrogate {
			return config.Engine{}, fmt.Errorf("%w: surrogate parameters need the surrogate engine, daemon runs %q", ErrInvalidRequest, base.Kind)
		}
		surrogate := *req.Surrogate
		out.Surrogate = &surrogate
	}
	return out, nil
}

// RunResult is the root found by a completed search.
type RunResult struct {
	RootPPM    float64 `json:"root_ppm"`
	Keff       float64 `json:"keff"`
	KeffStdDev float64 `json:"keff_std_dev"`
	Reason     string  `json:"reason"`
}

// Run is the externally visible state of a search.
type Run struct {
	ID              string     `json:"id"`
	Status          RunStatus  `json:"status"`
	CreatedAtUnixMs int64      `json:"created_at_unix_ms"`
	StartedAtUnixMs int64      `json:"started_at_unix_ms,omitempty"`
	EndedAtUnixMs   int64      `json:"ended_at_unix_ms,omitempty"`
	Method          string     `json:"method,omitempty"`
	Criterion       string     `json:"criterion,omitempty"`
	Evaluations     int        `json:"evaluations"`
	Iterations      int        `json:"iterations"`
	Result          *RunResult `json:"result,omitempty"`
	Error           string     `json:"error,omitempty"`
	ErrorClass      string     `json:"error_class,omitempty"`
}

// RunRecord is a run together with its input, resolved configuration and
// evaluation history.
type RunRecord struct {
	Run     Run
	Input   *SearchRequest
	Config  *config.Config
	History []search.Evaluation
	Steps   []search.Step
}

func (r *RunRecord) snapshot() *RunRecord {
	out := *r
	if r.Run.Result != nil {
		res := *r.Run.Result
		out.Run.Result = &res
	}
	out.History = slices.Clone(r.History)
	out.Steps = slices.Clone(r.Steps)
	return &out
}
