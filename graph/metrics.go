package graph

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes recorded in runs_total.
const (
	OutcomeCompleted  = "completed"
	OutcomeStepBound  = "step_bound"
	OutcomeNodeError  = "node_error"
	OutcomeConfig     = "config_error"
	OutcomeStateError = "state_error"
	OutcomeStoreError = "store_error"
)

// PrometheusMetrics collects execution metrics, all namespaced "jokegraph_":
//
//   - steps_total (counter, node_id): completed node invocations
//   - step_latency_ms (histogram, node_id, status): node duration
//   - runs_total (counter, outcome): finished runs by outcome
//   - route_fallbacks_total (counter, node_id): undeclared labels sent to a default target
//   - inflight_runs (gauge): runs currently executing
//
// Expose them with promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).
type PrometheusMetrics struct {
	inflightRuns prometheus.Gauge
	stepLatency  *prometheus.HistogramVec
	steps        *prometheus.CounterVec
	runs         *prometheus.CounterVec
	fallbacks    *prometheus.CounterVec

	mu      sync.RWMutex
	enabled bool
}

// NewPrometheusMetrics creates and registers the metrics with registry.
// A nil registry means prometheus.DefaultRegisterer.
func NewPrometheusMetrics(registry prometheus.Registerer) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &PrometheusMetrics{
		enabled: true,
		inflightRuns: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "jokegraph",
			Name:      "inflight_runs",
			Help:      "Number of graph runs currently executing",
		}),
		stepLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "jokegraph",
			Name:      "step_latency_ms",
			Help:      "Node execution duration in milliseconds",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000, 60000},
		}, []string{"node_id", "status"}),
		steps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jokegraph",
			Name:      "steps_total",
			Help:      "Completed node invocations",
		}, []string{"node_id"}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jokegraph",
			Name:      "runs_total",
			Help:      "Finished graph runs by outcome",
		}, []string{"outcome"}),
		fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jokegraph",
			Name:      "route_fallbacks_total",
			Help:      "Router labels not declared on the edge and sent to its default target",
		}, []string{"node_id"}),
	}
}

func (pm *PrometheusMetrics) isEnabled() bool {
	if pm == nil {
		return false
	}
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.enabled
}

// RecordStep records one node invocation. status is "success" or "error";
// only successful invocations count towards steps_total.
func (pm *PrometheusMetrics) RecordStep(nodeID string, latency time.Duration, status string) {
	if !pm.isEnabled() {
		return
	}
	pm.stepLatency.WithLabelValues(nodeID, status).Observe(float64(latency.Milliseconds()))
	if status == "success" {
		pm.steps.WithLabelValues(nodeID).Inc()
	}
}

// RecordFallback counts a routing decision that used the default target.
func (pm *PrometheusMetrics) RecordFallback(nodeID string) {
	if !pm.isEnabled() {
		return
	}
	pm.fallbacks.WithLabelValues(nodeID).Inc()
}

// RunStarted marks a run as in flight.
func (pm *PrometheusMetrics) RunStarted() {
	if !pm.isEnabled() {
		return
	}
	pm.inflightRuns.Inc()
}

// RunFinished records a run's outcome and removes it from the in-flight gauge.
func (pm *PrometheusMetrics) RunFinished(outcome string) {
	if !pm.isEnabled() {
		return
	}
	pm.inflightRuns.Dec()
	pm.runs.WithLabelValues(outcome).Inc()
}

// Disable stops metric recording.
func (pm *PrometheusMetrics) Disable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = false
}

// Enable resumes metric recording.
func (pm *PrometheusMetrics) Enable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = true
}

// Reset zeroes every metric.
func (pm *PrometheusMetrics) Reset() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.inflightRuns.Set(0)
	pm.stepLatency.Reset()
	pm.steps.Reset()
	pm.runs.Reset()
	pm.fallbacks.Reset()
}
