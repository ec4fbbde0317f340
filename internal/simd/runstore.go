package simd

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/keff-search/internal/search"
	"github.com/GoSim-25-26J-441/keff-search/pkg/config"
	"github.com/GoSim-25-26J-441/keff-search/pkg/utils"
)

var (
	ErrRunNotFound    = errors.New("run not found")
	ErrRunTerminal    = errors.New("run is terminal")
	ErrRunIDMissing   = errors.New("run_id is required")
	ErrRunExists      = errors.New("run already exists")
	ErrInvalidRunID   = errors.New("invalid run_id")
	ErrInvalidRequest = errors.New("invalid search request")
)

const defaultListLimit = 50

// RunStore keeps search runs in memory. Getters return snapshots.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*RunRecord
}

func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]*RunRecord),
	}
}

func nowUnixMs() int64 {
	return time.Now().UTC().UnixMilli()
}

// Create adds a PENDING run. An empty runID is replaced by a generated one.
func (s *RunStore) Create(runID string, input *SearchRequest) (*RunRecord, error) {
	if strings.ContainsAny(runID, "/:?# ") {
		return nil, fmt.Errorf("%w: %q cannot contain '/', ':', '?', '#' or spaces", ErrInvalidRunID, runID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if runID == "" {
		runID = utils.GenerateRunID()
	}
	if _, exists := s.runs[runID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrRunExists, runID)
	}

	rec := &RunRecord{
		Run: Run{
			ID:              runID,
			Status:          RunStatusPending,
			CreatedAtUnixMs: nowUnixMs(),
		},
		Input: input,
	}
	s.runs[runID] = rec
	return rec.snapshot(), nil
}

func (s *RunStore) Get(runID string) (*RunRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[runID]
	if !ok {
		return nil, false
	}
	return rec.snapshot(), true
}

// List returns runs ordered by creation time, optionally filtered by status.
func (s *RunStore) List(limit, offset int, status RunStatus) []*RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = defaultListLimit
	}
	all := make([]*RunRecord, 0, len(s.runs))
	for _, rec := range s.runs {
		if status != RunStatusUnspecified && rec.Run.Status != status {
			continue
		}
		all = append(all, rec)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Run.CreatedAtUnixMs != all[j].Run.CreatedAtUnixMs {
			return all[i].Run.CreatedAtUnixMs < all[j].Run.CreatedAtUnixMs
		}
		return all[i].Run.ID < all[j].Run.ID
	})

	if offset >= len(all) {
		return []*RunRecord{}
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	out := make([]*RunRecord, 0, len(all))
	for _, rec := range all {
		out = append(out, rec.snapshot())
	}
	return out
}

// SetStatus moves a run to status. Terminal runs cannot change.
func (s *RunStore) SetStatus(runID string, status RunStatus, errMsg string) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.mutableLocked(runID)
	if err != nil {
		return nil, err
	}
	s.setStatusLocked(rec, status)
	if errMsg != "" {
		rec.Run.Error = errMsg
	}
	return rec.snapshot(), nil
}

// SetConfig stores the resolved configuration of a run.
func (s *RunStore) SetConfig(runID string, cfg *config.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	rec.Config = cfg
	rec.Run.Method = cfg.Search.Method
	rec.Run.Criterion = cfg.Search.Criterion
	return nil
}

// AppendEvaluation records one evaluation of a running search. Terminal
// runs keep their history.
func (s *RunStore) AppendEvaluation(runID string, ev search.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.mutableLocked(runID)
	if err != nil {
		return err
	}
	rec.History = append(rec.History, ev)
	rec.Run.Evaluations = len(rec.History)
	return nil
}

// Complete stores the outcome of a converged search.
func (s *RunStore) Complete(runID string, outcome *search.Outcome) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.mutableLocked(runID)
	if err != nil {
		return nil, err
	}
	s.setHistoryLocked(rec, outcome.History)
	rec.Run.Method = outcome.Method
	rec.Run.Criterion = outcome.Criterion
	rec.Run.Result = &RunResult{
		RootPPM:    outcome.Root,
		Keff:       outcome.Result.Value,
		KeffStdDev: outcome.Result.StdDev,
		Reason:     outcome.Reason,
	}
	s.setStatusLocked(rec, RunStatusCompleted)
	return rec.snapshot(), nil
}

// Fail stores a failed search. Cancellations end as CANCELLED, everything
// else as FAILED. class overrides the classification of err when set.
func (s *RunStore) Fail(runID, class string, err error) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, mErr := s.mutableLocked(runID)
	if mErr != nil {
		return nil, mErr
	}
	if class == "" {
		class = search.Classify(err)
	}
	if h, ok := search.PartialHistory(err); ok {
		s.setHistoryLocked(rec, h)
	}
	rec.Run.Error = err.Error()
	rec.Run.ErrorClass = class
	if class == search.ClassCancelled {
		s.setStatusLocked(rec, RunStatusCancelled)
	} else {
		s.setStatusLocked(rec, RunStatusFailed)
	}
	return rec.snapshot(), nil
}

// Cancel marks a run CANCELLED with the given reason.
func (s *RunStore) Cancel(runID, reason string) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.mutableLocked(runID)
	if err != nil {
		return nil, err
	}
	rec.Run.Error = reason
	rec.Run.ErrorClass = search.ClassCancelled
	s.setStatusLocked(rec, RunStatusCancelled)
	return rec.snapshot(), nil
}

func (s *RunStore) mutableLocked(runID string) (*RunRecord, error) {
	rec, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if rec.Run.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s is %s", ErrRunTerminal, runID, rec.Run.Status)
	}
	return rec, nil
}

func (s *RunStore) setStatusLocked(rec *RunRecord, status RunStatus) {
	rec.Run.Status = status
	switch status {
	case RunStatusRunning:
		if rec.Run.StartedAtUnixMs == 0 {
			rec.Run.StartedAtUnixMs = nowUnixMs()
		}
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled:
		rec.Run.EndedAtUnixMs = nowUnixMs()
	}
}

// setHistoryLocked rebuilds the evaluation list from a search history, which
// is authoritative over the progress callbacks received so far.
func (s *RunStore) setHistoryLocked(rec *RunRecord, h search.History) {
	evs := make([]search.Evaluation, h.Len())
	for i := range evs {
		evs[i] = search.Evaluation{Index: i + 1, Guess: h.Guesses[i], Result: h.Results[i]}
	}
	rec.History = evs
	rec.Steps = append([]search.Step(nil), h.Steps...)
	rec.Run.Evaluations = len(evs)
	rec.Run.Iterations = len(rec.Steps)
}
