// Package metrics exposes Prometheus instrumentation for the dialog
// engine, the LLM boundary, and the session store. All methods are
// nil-receiver safe so metrics stay optional in tests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "leavebot"

// Metrics holds all collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	turnsTotal           *prometheus.CounterVec
	turnDuration         *prometheus.HistogramVec
	llmCallsTotal        *prometheus.CounterVec
	llmCallDuration      *prometheus.HistogramVec
	extractionParseFails prometheus.Counter
	submissionsTotal     *prometheus.CounterVec
	storeOpDuration      *prometheus.HistogramVec
	rateLimitDrops       *prometheus.CounterVec
	activeSessions       prometheus.Gauge
}

// New creates a Metrics with its own registry, including the standard Go
// and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry: registry,

		turnsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Processed dialog turns by routed action and outcome.",
		}, []string{"action", "outcome"}),

		turnDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Wall time to process one dialog turn.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}, []string{"action"}),

		llmCallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_calls_total",
			Help:      "Language model calls by provider, kind and status.",
		}, []string{"provider", "kind", "status"}),

		llmCallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_call_duration_seconds",
			Help:      "Language model call latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15},
		}, []string{"provider", "kind"}),

		extractionParseFails: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_parse_failures_total",
			Help:      "Extraction responses that were not valid JSON.",
		}),

		submissionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Leave request submissions by status.",
		}, []string{"status"}),

		storeOpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_op_duration_seconds",
			Help:      "Session store operation latency.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"operation"}),

		rateLimitDrops: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_drops_total",
			Help:      "Requests rejected by rate limiting, by scope.",
		}, []string{"scope"}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently persisted in the store.",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordTurn counts one processed turn.
func (m *Metrics) RecordTurn(action, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(action, outcome).Inc()
	m.turnDuration.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordLLMCall counts one model call.
func (m *Metrics) RecordLLMCall(provider, kind, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.llmCallsTotal.WithLabelValues(provider, kind, status).Inc()
	m.llmCallDuration.WithLabelValues(provider, kind).Observe(duration.Seconds())
}

// RecordExtractionParseFailure counts an unparsable extraction response.
func (m *Metrics) RecordExtractionParseFailure() {
	if m == nil {
		return
	}
	m.extractionParseFails.Inc()
}

// RecordSubmission counts one HRMS submission attempt.
func (m *Metrics) RecordSubmission(status string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(status).Inc()
}

// RecordStoreOp observes one session store operation.
func (m *Metrics) RecordStoreOp(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.storeOpDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordRateLimitDrop counts a rate-limited request.
func (m *Metrics) RecordRateLimitDrop(scope string) {
	if m == nil {
		return
	}
	m.rateLimitDrops.WithLabelValues(scope).Inc()
}

// SetActiveSessions records the current persisted session count.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
