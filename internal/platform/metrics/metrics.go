package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for audit event processing and the HTTP
// surface in front of it.
type Metrics struct {
	Validated          prometheus.Counter
	ValidationFailures *prometheus.CounterVec
	Emitted            prometheus.Counter
	EmitFailures       prometheus.Counter
	EmitDuration       prometheus.Histogram
	HTTPDuration       *prometheus.HistogramVec
}

// New creates a Metrics instance registered on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a Metrics instance registered on reg. Tests pass a
// fresh prometheus.NewRegistry so parallel test packages do not collide on
// duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Validated: factory.NewCounter(prometheus.CounterOpts{
			Name: "audit_events_validated_total",
			Help: "Total number of audit events that passed validation",
		}),
		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_validation_failures_total",
			Help: "Total number of audit validation failures by error code",
		}, []string{"code"}),
		Emitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "audit_events_emitted_total",
			Help: "Total number of audit events successfully emitted to the sink",
		}),
		EmitFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "audit_emit_failures_total",
			Help: "Total number of audit sink emission failures",
		}),
		EmitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "audit_emit_duration_seconds",
			Help:    "Time spent emitting audit messages to the sink",
			Buckets: prometheus.DefBuckets,
		}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method, path, and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

// IncValidated increments the validated counter.
func (m *Metrics) IncValidated() {
	m.Validated.Inc()
}

// IncValidationFailure increments the validation failure counter for a code.
func (m *Metrics) IncValidationFailure(code string) {
	m.ValidationFailures.WithLabelValues(code).Inc()
}

// IncEmitted increments the emitted counter.
func (m *Metrics) IncEmitted() {
	m.Emitted.Inc()
}

// IncEmitFailure increments the emission failure counter.
func (m *Metrics) IncEmitFailure() {
	m.EmitFailures.Inc()
}

// ObserveEmitDuration records one emission duration in seconds.
func (m *Metrics) ObserveEmitDuration(seconds float64) {
	m.EmitDuration.Observe(seconds)
}

// ObserveHTTPRequest records one HTTP request latency observation.
func (m *Metrics) ObserveHTTPRequest(method, path, status string, seconds float64) {
	m.HTTPDuration.WithLabelValues(method, path, status).Observe(seconds)
}
