package auth

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels used by Metrics.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeMissing   = "missing"
	OutcomeInvalid   = "invalid"
	OutcomeForbidden = "forbidden"
	OutcomeAdmitted  = "admitted"
)

// Metrics holds the auth collectors. Use Register to expose them on a
// registry, a zero value registry keeps them private to the process.
type Metrics struct {
	Events        *prometheus.CounterVec
	GateDecisions *prometheus.CounterVec
	HashDuration  prometheus.Histogram
}

// NewMetrics builds unregistered collectors
func NewMetrics() *Metrics {
	return &Metrics{
		Events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osnauth_activity_events_total",
				Help: "Total number of auth activity events",
			},
			[]string{"event", "role"},
		),
		GateDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osnauth_gate_decisions_total",
				Help: "Total number of authorization gate decisions",
			},
			[]string{"required_role", "outcome"},
		),
		HashDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "osnauth_password_hash_duration_seconds",
				Help:    "Time spent hashing or comparing passwords",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// Register registers every collector with reg.
// Panics if registration fails (following prometheus convention).
func (m *Metrics) Register(reg prometheus.Registerer) {
	reg.MustRegister(m.Events, m.GateDecisions, m.HashDuration)
}

// RecordGateDecision counts one gate outcome. An empty role means any
// authenticated caller.
func (m *Metrics) RecordGateDecision(requiredRole, outcome string) {
	if m == nil {
		return
	}
	if requiredRole == "" {
		requiredRole = "any"
	}
	m.GateDecisions.WithLabelValues(requiredRole, outcome).Inc()
}

// ObserveHash records how long a hash operation took
func (m *Metrics) ObserveHash(d time.Duration) {
	if m == nil {
		return
	}
	m.HashDuration.Observe(d.Seconds())
}

// ActivitySink counts each recorded event
func (m *Metrics) ActivitySink() ActivitySink {
	return ActivitySinkFunc(func(_ context.Context, event ActivityEvent) error {
		role := string(event.Role)
		if role == "" {
			role = "unknown"
		}
		m.Events.WithLabelValues(string(event.EventType), role).Inc()
		return nil
	})
}
