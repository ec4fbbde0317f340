package simd

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/GoSim-25-26J-441/keff-search/internal/engine"
	"github.com/GoSim-25-26J-441/keff-search/internal/metrics"
	"github.com/GoSim-25-26J-441/keff-search/internal/search"
	"github.com/GoSim-25-26J-441/keff-search/pkg/config"
	"github.com/GoSim-25-26J-441/keff-search/pkg/logger"
)

// EvaluatorFactory builds the black box a run searches over.
type EvaluatorFactory func(cfg *config.Config) (search.Evaluator, error)

// RunExecutor manages asynchronous search execution and per-run cancellation.
type RunExecutor struct {
	store        *RunStore
	base         *config.Config
	metrics      *metrics.Collector
	notifier     *Notifier
	newEvaluator EvaluatorFactory

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	done    map[string]chan struct{}
	wg      sync.WaitGroup
}

// NewRunExecutor creates an executor whose runs start from base. m may be nil.
func NewRunExecutor(store *RunStore, base *config.Config, m *metrics.Collector) *RunExecutor {
	e := &RunExecutor{
		store:   store,
		base:    base,
		metrics: m,
		cancels: make(map[string]context.CancelFunc),
		done:    make(map[string]chan struct{}),
	}
	e.newEvaluator = func(cfg *config.Config) (search.Evaluator, error) {
		return engine.NewEvaluator(cfg, e.metrics)
	}
	return e
}

// SetNotifier enables completion callbacks.
func (e *RunExecutor) SetNotifier(n *Notifier) {
	e.notifier = n
}

// SetEvaluatorFactory replaces how runs build their evaluator.
func (e *RunExecutor) SetEvaluatorFactory(f EvaluatorFactory) {
	e.newEvaluator = f
}

// Submit validates input against the base configuration, creates the run and
// starts it.
func (e *RunExecutor) Submit(runID string, input *SearchRequest) (*RunRecord, error) {
	if _, err := input.Resolve(e.base); err != nil {
		return nil, err
	}
	rec, err := e.store.Create(runID, input)
	if err != nil {
		return nil, err
	}
	logger.Info("search created", "run_id", rec.Run.ID)
	return e.Start(rec.Run.ID)
}

// Start begins executing a run asynchronously.
// Returns the updated run state (RUNNING) or an error.
func (e *RunExecutor) Start(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	rec, ok := e.store.Get(runID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	switch {
	case rec.Run.Status == RunStatusRunning:
		return rec, nil
	case rec.Run.Status.IsTerminal():
		return nil, fmt.Errorf("%w: %s", ErrRunTerminal, runID)
	}

	// Register the cancel func before the run becomes RUNNING so a Stop
	// that follows the status change always reaches the search.
	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	if old, exists := e.cancels[runID]; exists {
		old()
	}
	e.cancels[runID] = cancel
	e.done[runID] = make(chan struct{})
	e.wg.Add(1)
	e.mu.Unlock()

	updated, err := e.store.SetStatus(runID, RunStatusRunning, "")
	if err != nil {
		e.cleanup(runID)
		e.wg.Done()
		return nil, err
	}

	go e.runSearch(ctx, runID)
	return updated, nil
}

// Stop marks a run cancelled and cancels its search.
func (e *RunExecutor) Stop(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	// Mark first so the search goroutine sees a terminal run when it unwinds.
	updated, err := e.store.Cancel(runID, "stopped by request")
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	cancel, ok := e.cancels[runID]
	e.mu.Unlock()
	if ok {
		cancel()
	}
	e.notify(updated)
	return updated, nil
}

// Wait blocks until a started run has finished or ctx is done, and returns
// the run's final state. Runs that were never started are returned as is.
func (e *RunExecutor) Wait(ctx context.Context, runID string) (*RunRecord, error) {
	e.mu.Lock()
	done, ok := e.done[runID]
	e.mu.Unlock()

	if ok {
		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	rec, found := e.store.Get(runID)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return rec, nil
}

// Shutdown cancels every running search and waits for them to return.
func (e *RunExecutor) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	for _, cancel := range e.cancels {
		cancel()
	}
	e.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-ctx.Done():
		return ctx.Err()
	}
	if e.notifier != nil {
		e.notifier.Wait()
	}
	return nil
}

func (e *RunExecutor) cleanup(runID string) {
	e.mu.Lock()
	if cancel, ok := e.cancels[runID]; ok {
		cancel()
		delete(e.cancels, runID)
	}
	if done, ok := e.done[runID]; ok {
		close(done)
		delete(e.done, runID)
	}
	e.mu.Unlock()
}

func (e *RunExecutor) runSearch(ctx context.Context, runID string) {
	defer e.wg.Done()
	defer e.cleanup(runID)

	rec, ok := e.store.Get(runID)
	if !ok {
		logger.Error("run not found", "run_id", runID)
		return
	}
	log := logger.With("run_id", runID)
	if rec.Run.Status.IsTerminal() {
		log.Info("search not started", "status", rec.Run.Status)
		return
	}
	if err := ctx.Err(); err != nil {
		e.fail(runID, search.ClassCancelled, err)
		return
	}

	cfg, err := rec.Input.Resolve(e.base)
	if err != nil {
		e.fail(runID, search.ClassInvalid, err)
		return
	}
	if err := e.store.SetConfig(runID, cfg); err != nil {
		log.Error("failed to store config", "error", err)
	}

	evaluator, err := e.newEvaluator(cfg)
	if err != nil {
		e.fail(runID, search.ClassInvalid, fmt.Errorf("create evaluator: %w", err))
		return
	}
	opts, err := engine.OptionsFromConfig(cfg.Search)
	if err != nil {
		e.fail(runID, search.ClassInvalid, err)
		return
	}
	opts.Progress = func(ev search.Evaluation) {
		if err := e.store.AppendEvaluation(runID, ev); err != nil {
			if !errors.Is(err, ErrRunTerminal) {
				log.Warn("failed to record evaluation", "error", err)
			}
			return
		}
		log.Info("evaluation", "iteration", ev.Index, "ppm", ev.Guess, "keff", ev.Result.Value, "std_dev", ev.Result.StdDev)
	}

	log.Info("search started", "method", opts.Method, "bracket", opts.Bracket, "tolerance", opts.Tolerance)
	e.metrics.SearchStarted()
	outcome, err := search.Search(ctx, evaluator, opts)
	e.metrics.SearchFinished(opts.Method, metrics.SearchIterations(outcome, err), err)

	if err != nil {
		e.fail(runID, "", err)
		return
	}
	updated, err := e.store.Complete(runID, outcome)
	if err != nil {
		if !errors.Is(err, ErrRunTerminal) {
			log.Error("failed to complete run", "error", err)
		}
		return
	}
	log.Info("search completed", "root_ppm", outcome.Root, "keff", outcome.Result.Value, "iterations", outcome.Iterations())
	e.notify(updated)
}

func (e *RunExecutor) fail(runID, class string, err error) {
	updated, setErr := e.store.Fail(runID, class, err)
	if setErr != nil {
		// Stop already moved the run to CANCELLED.
		if !errors.Is(setErr, ErrRunTerminal) {
			logger.Error("failed to set failed status", "run_id", runID, "error", setErr)
		}
		return
	}
	logger.Warn("search failed", "run_id", runID, "class", updated.Run.ErrorClass, "error", err)
	e.notify(updated)
}

func (e *RunExecutor) notify(rec *RunRecord) {
	if e.notifier == nil || rec == nil || rec.Input == nil {
		return
	}
	e.notifier.Notify(rec.Input.CallbackURL, rec.Input.CallbackSecret, rec)
}
