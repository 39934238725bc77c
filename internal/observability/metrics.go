package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"launchpad/pkg/domain"
)

const namespace = "launchpad"

// Metrics publishes adapter operation and tile resolution counters.
type Metrics struct {
	operations  *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	resolutions *prometheus.CounterVec
	failures    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Adapter operations by name and status.",
		}, []string{"operation", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Adapter operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tile_resolutions_total",
			Help:      "Tile resolutions by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tile_resolution_failures_total",
			Help:      "Tile resolution failures by severity.",
		}, []string{"severity"}),
	}
	if reg != nil {
		reg.MustRegister(m.operations, m.durations, m.resolutions, m.failures)
	}
	return m
}

// Observe records an adapter operation outcome.
func (m *Metrics) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	m.operations.WithLabelValues(operation, status).Inc()
	m.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveResolution records a finished tile resolution.
func (m *Metrics) ObserveResolution(strategy string, cached bool, failure *domain.Failure) {
	switch {
	case failure != nil:
		m.resolutions.WithLabelValues(strategy, "failure").Inc()
		m.failures.WithLabelValues(string(failure.Severity)).Inc()
	case cached:
		m.resolutions.WithLabelValues(strategy, "cached").Inc()
	default:
		m.resolutions.WithLabelValues(strategy, "resolved").Inc()
	}
}
