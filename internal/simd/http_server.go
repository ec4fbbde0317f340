package simd

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/keff-search/internal/deck"
	"github.com/GoSim-25-26J-441/keff-search/internal/metrics"
	"github.com/GoSim-25-26J-441/keff-search/internal/reactor"
	"github.com/GoSim-25-26J-441/keff-search/internal/search"
	"github.com/GoSim-25-26J-441/keff-search/pkg/logger"
)

type HTTPServer struct {
	mux      *http.ServeMux
	store    *RunStore
	Executor *RunExecutor
}

// NewHTTPServer wires the JSON API. /metrics is served when m is non-nil.
func NewHTTPServer(store *RunStore, executor *RunExecutor, m *metrics.Collector) *HTTPServer {
	s := &HTTPServer{
		mux:      http.NewServeMux(),
		store:    store,
		Executor: executor,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/searches", s.handleSearches)
	s.mux.HandleFunc("/v1/searches/", s.handleSearchByID)
	if m != nil {
		s.mux.Handle("/metrics", m.Handler())
	}

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleSearches handles /v1/searches
func (s *HTTPServer) handleSearches(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateSearch(w, r)
	case http.MethodGet:
		s.handleListSearches(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleSearchByID handles /v1/searches/{id} and its sub-resources.
func (s *HTTPServer) handleSearchByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/searches/")
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "run ID is required")
		return
	}

	route := func(suffix, method string, h func(http.ResponseWriter, *http.Request, string)) bool {
		if !strings.HasSuffix(path, suffix) {
			return false
		}
		if r.Method != method {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return true
		}
		h(w, r, strings.TrimSuffix(path, suffix))
		return true
	}

	switch {
	case route(":stop", http.MethodPost, s.handleStopSearch):
	case route("/deck", http.MethodGet, s.handleDeck):
	case route("/events", http.MethodGet, s.handleEvents):
	case strings.Contains(path, "/"):
		s.writeError(w, http.StatusNotFound, "not found")
	case r.Method == http.MethodGet:
		s.handleGetSearch(w, r, path)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type createSearchRequest struct {
	RunID string         `json:"run_id,omitempty"`
	Input *SearchRequest `json:"input,omitempty"`
}

// handleCreateSearch handles POST /v1/searches. The search starts at once;
// a missing input runs the daemon's base configuration.
func (s *HTTPServer) handleCreateSearch(w http.ResponseWriter, r *http.Request) {
	var req createSearchRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Input == nil {
		req.Input = &SearchRequest{}
	}

	rec, err := s.Executor.Submit(req.RunID, req.Input)
	if err != nil {
		s.writeError(w, httpStatus(err), err.Error())
		return
	}

	logger.Info("search submitted (HTTP)", "run_id", rec.Run.ID)
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"run": rec.Run,
	})
}

// handleListSearches handles GET /v1/searches with pagination and filtering
func (s *HTTPServer) handleListSearches(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = min(parsed, 1000)
		}
	}
	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	status := parseRunStatus(r.URL.Query().Get("status"))

	recs := s.store.List(limit, offset, status)
	runs := make([]Run, 0, len(recs))
	for _, rec := range recs {
		runs = append(runs, rec.Run)
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"runs": runs,
		"pagination": map[string]any{
			"limit":  limit,
			"offset": offset,
			"count":  len(runs),
		},
	})
}

// handleGetSearch handles GET /v1/searches/{id}
func (s *HTTPServer) handleGetSearch(w http.ResponseWriter, _ *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	s.writeJSON(w, http.StatusOK, recordToJSON(rec))
}

// handleStopSearch handles POST /v1/searches/{id}:stop
func (s *HTTPServer) handleStopSearch(w http.ResponseWriter, _ *http.Request, runID string) {
	updated, err := s.Executor.Stop(runID)
	if err != nil {
		s.writeError(w, httpStatus(err), err.Error())
		return
	}

	logger.Info("search cancelled (HTTP)", "run_id", runID)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run": updated.Run,
	})
}

// handleDeck handles GET /v1/searches/{id}/deck?ppm=X[&file=name]. Without
// ppm the root of a completed search is used.
func (s *HTTPServer) handleDeck(w http.ResponseWriter, r *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}

	var ppm float64
	if ppmStr := r.URL.Query().Get("ppm"); ppmStr != "" {
		parsed, err := strconv.ParseFloat(ppmStr, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid ppm: "+err.Error())
			return
		}
		ppm = parsed
	} else if rec.Run.Result != nil {
		ppm = rec.Run.Result.RootPPM
	} else {
		s.writeError(w, http.StatusBadRequest, "ppm is required until the search has completed")
		return
	}

	cfg := rec.Config
	if cfg == nil {
		resolved, err := rec.Input.Resolve(s.Executor.base)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		cfg = resolved
	}
	builder, err := reactor.NewPinCellBuilder(cfg.Model)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	model, err := builder.Build(ppm)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	files, err := deck.Render(model)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if name := r.URL.Query().Get("file"); name != "" {
		for _, f := range files {
			if f.Name == name {
				w.Header().Set("Content-Type", "application/xml")
				w.WriteHeader(http.StatusOK)
				if _, err := w.Write(f.Data); err != nil {
					logger.Error("failed to write deck file", "error", err)
				}
				return
			}
		}
		s.writeError(w, http.StatusNotFound, "unknown deck file "+name)
		return
	}

	out := make(map[string]string, len(files))
	for _, f := range files {
		out[f.Name] = string(f.Data)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run_id": runID,
		"ppm":    ppm,
		"files":  out,
	})
}

// handleEvents handles GET /v1/searches/{id}/events as a Server-Sent Events
// stream of evaluations and status changes, ending with "complete".
func (s *HTTPServer) handleEvents(w http.ResponseWriter, r *http.Request, runID string) {
	if _, ok := s.store.Get(runID); !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	interval := 500 * time.Millisecond
	if intervalStr := r.URL.Query().Get("interval_ms"); intervalStr != "" {
		if intervalMs, err := strconv.ParseInt(intervalStr, 10, 64); err == nil && intervalMs > 0 {
			interval = time.Duration(intervalMs) * time.Millisecond
		}
	}

	var (
		sent           int
		previousStatus RunStatus
	)
	// push reports whether the stream is finished.
	push := func() bool {
		rec, ok := s.store.Get(runID)
		if !ok {
			s.sendSSEEvent(w, "error", map[string]any{"error": "run not found"})
			return true
		}
		for ; sent < len(rec.History); sent++ {
			s.sendSSEEvent(w, "evaluation", rec.History[sent])
		}
		if rec.Run.Status != previousStatus {
			s.sendSSEEvent(w, "status_change", map[string]any{"status": rec.Run.Status})
			previousStatus = rec.Run.Status
		}
		if rec.Run.Status.IsTerminal() {
			s.sendSSEEvent(w, "complete", rec.Run)
		}
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
		return rec.Run.Status.IsTerminal()
	}

	if push() {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if push() {
				return
			}
		}
	}
}

// sendSSEEvent writes one event; stream errors are logged only.
func (s *HTTPServer) sendSSEEvent(w http.ResponseWriter, eventType string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		logger.Error("failed to marshal SSE event data", "error", err)
		return
	}
	if _, err := w.Write([]byte("event: " + eventType + "\ndata: " + string(jsonData) + "\n\n")); err != nil {
		logger.Error("failed to write SSE event", "error", err)
	}
}

// Helper functions

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": message,
	})
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRunExists):
		return http.StatusConflict
	case errors.Is(err, ErrRunTerminal):
		return http.StatusConflict
	case errors.Is(err, ErrRunIDMissing), errors.Is(err, ErrInvalidRunID), errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// recordToJSON is the detail view of a run: state, evaluations and steps.
func recordToJSON(rec *RunRecord) map[string]any {
	history := rec.History
	if history == nil {
		history = []search.Evaluation{}
	}
	out := map[string]any{
		"run":     rec.Run,
		"history": history,
	}
	if len(rec.Steps) > 0 {
		out["steps"] = rec.Steps
	}
	return out
}
