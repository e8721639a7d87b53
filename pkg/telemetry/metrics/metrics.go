// Package metrics exposes Prometheus collectors for the gate core.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus collectors for cycles, evaluation, and
// audit emission. All methods are nil-safe so components can run unmetered
// in tests.
type Metrics struct {
	cyclesDecided      *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	evalDuration       prometheus.Histogram
	dispatchDuration   prometheus.Histogram
	auditAppends       prometheus.Counter
	auditRetries       prometheus.Counter
	auditFailures      prometheus.Counter
	chainLength        prometheus.Gauge
	auditHealthy       prometheus.Gauge
}

// New creates the collectors and registers them with the default registry.
func New() *Metrics {
	return &Metrics{
		cyclesDecided: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "janus_cycles_decided_total",
				Help: "Total number of execution cycles by decision value",
			},
			[]string{"decision"},
		),
		validationFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "janus_validation_failures_total",
				Help: "Total number of intake validation failures by reason class",
			},
			[]string{"class"},
		),
		evalDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "janus_policy_eval_duration_seconds",
				Help:    "Policy evaluation duration",
				Buckets: prometheus.DefBuckets,
			},
		),
		dispatchDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "janus_dispatch_duration_seconds",
				Help:    "Execution dispatch duration",
				Buckets: prometheus.DefBuckets,
			},
		),
		auditAppends: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "janus_audit_appends_total",
				Help: "Total number of audit records appended",
			},
		),
		auditRetries: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "janus_audit_append_retries_total",
				Help: "Total number of audit sink append retries",
			},
		),
		auditFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "janus_audit_append_failures_total",
				Help: "Total number of audit appends that exhausted retries",
			},
		),
		chainLength: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "janus_audit_chain_length",
				Help: "Sequence number of the most recently appended audit record",
			},
		),
		auditHealthy: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "janus_audit_healthy",
				Help: "Whether the audit sink is accepting appends (1) or failing (0)",
			},
		),
	}
}

// CycleDecided counts a decided cycle by decision value.
func (m *Metrics) CycleDecided(decision string) {
	if m == nil {
		return
	}
	m.cyclesDecided.WithLabelValues(decision).Inc()
}

// ValidationFailure counts an intake rejection. Only the reason class (the
// segment before the first colon) is used as a label to keep cardinality
// bounded.
func (m *Metrics) ValidationFailure(reason string) {
	if m == nil {
		return
	}
	class, _, _ := strings.Cut(reason, ":")
	m.validationFailures.WithLabelValues(class).Inc()
}

// EvalDuration observes one policy evaluation.
func (m *Metrics) EvalDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.evalDuration.Observe(d.Seconds())
}

// DispatchDuration observes one dispatch round trip.
func (m *Metrics) DispatchDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.dispatchDuration.Observe(d.Seconds())
}

// AuditAppended counts a successful append and records the chain position.
func (m *Metrics) AuditAppended(seq uint64) {
	if m == nil {
		return
	}
	m.auditAppends.Inc()
	m.chainLength.Set(float64(seq))
	m.auditHealthy.Set(1)
}

// AuditRetry counts one sink append retry.
func (m *Metrics) AuditRetry() {
	if m == nil {
		return
	}
	m.auditRetries.Inc()
}

// AuditEmitFailure counts an append that exhausted its retries.
func (m *Metrics) AuditEmitFailure() {
	if m == nil {
		return
	}
	m.auditFailures.Inc()
	m.auditHealthy.Set(0)
}
