package metrics

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GoSim-25-26J-441/keff-search/internal/search"
)

const namespace = "keffsearch"

// MaxDurationSamples bounds the duration samples kept per engine; older
// samples are overwritten.
const MaxDurationSamples = 1024

// OutcomeConverged labels searches that found a root.
const OutcomeConverged = "converged"

// Collector records evaluation and search metrics. It exports them through
// its own Prometheus registry and keeps the most recent per-engine duration
// samples for summaries. A nil *Collector discards everything.
type Collector struct {
	registry *prometheus.Registry

	evaluations       *prometheus.CounterVec
	evaluationSeconds *prometheus.HistogramVec
	searches          *prometheus.CounterVec
	searchIterations  *prometheus.HistogramVec
	activeSearches    prometheus.Gauge

	mu          sync.RWMutex
	sampleLimit int
	durations   map[string]*sampleWindow // engine -> seconds
}

// sampleWindow is a ring of the latest samples.
type sampleWindow struct {
	values []float64
	next   int
}

func (w *sampleWindow) add(v float64, limit int) {
	if len(w.values) < limit {
		w.values = append(w.values, v)
		return
	}
	w.values[w.next] = v
	w.next = (w.next + 1) % limit
}

// NewCollector creates a collector with a fresh registry that also carries
// the Go runtime and process collectors.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Simulation evaluations by engine and result.",
		}, []string{"engine", "result"}),
		evaluationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluation_duration_seconds",
			Help:      "Wall time of one model build plus engine run.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"engine"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Finished searches by method and outcome.",
		}, []string{"method", "outcome"}),
		searchIterations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_iterations",
			Help:      "Iterations taken by finished searches.",
			Buckets:   prometheus.LinearBuckets(0, 5, 21),
		}, []string{"method"}),
		activeSearches: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_searches",
			Help:      "Searches currently running.",
		}),
		sampleLimit: MaxDurationSamples,
		durations:   make(map[string]*sampleWindow),
	}
	c.registry.MustRegister(
		c.evaluations,
		c.evaluationSeconds,
		c.searches,
		c.searchIterations,
		c.activeSearches,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveEvaluation records one evaluation.
func (c *Collector) ObserveEvaluation(engine string, elapsed time.Duration, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.evaluations.WithLabelValues(engine, result).Inc()
	c.evaluationSeconds.WithLabelValues(engine).Observe(elapsed.Seconds())

	c.mu.Lock()
	w, ok := c.durations[engine]
	if !ok {
		w = &sampleWindow{}
		c.durations[engine] = w
	}
	w.add(elapsed.Seconds(), c.sampleLimit)
	c.mu.Unlock()
}

// SearchStarted increments the active search gauge.
func (c *Collector) SearchStarted() {
	if c == nil {
		return
	}
	c.activeSearches.Inc()
}

// SearchFinished records a finished search. The outcome label is
// OutcomeConverged on success and the failure class otherwise.
func (c *Collector) SearchFinished(method string, iterations int, err error) {
	if c == nil {
		return
	}
	c.activeSearches.Dec()
	outcome := OutcomeConverged
	if err != nil {
		outcome = search.Classify(err)
	}
	c.searches.WithLabelValues(method, outcome).Inc()
	c.searchIterations.WithLabelValues(method).Observe(float64(iterations))
}

// SearchIterations extracts the number of iterations from a search result,
// falling back to the partial history of a failed search.
func SearchIterations(outcome *search.Outcome, err error) int {
	if outcome != nil {
		return outcome.Iterations()
	}
	var convErr *search.ConvergenceError
	if errors.As(err, &convErr) {
		return len(convErr.History.Steps)
	}
	if h, ok := search.PartialHistory(err); ok {
		return len(h.Steps)
	}
	return 0
}

// EvaluationSummary aggregates the retained evaluation durations for an
// engine. It returns nil when nothing was recorded.
func (c *Collector) EvaluationSummary(engine string) *Aggregation {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	var values []float64
	if w, ok := c.durations[engine]; ok {
		values = append(values, w.values...)
	}
	c.mu.RUnlock()
	return calculateAggregation(values)
}
