package http

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the dispatch instrumentation. A fresh registry per
// server keeps tests independent of global state.
type Metrics struct {
	registry  *prometheus.Registry
	dispatch  *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewMetrics creates and registers the dispatch metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		dispatch: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meridian_dispatch_total",
				Help: "Total dispatched operations by outcome",
			},
			[]string{"op", "outcome"},
		),
		durations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "meridian_dispatch_duration_seconds",
				Help: "Duration of dispatched operations",
			},
			[]string{"op"},
		),
	}
	m.registry.MustRegister(m.dispatch, m.durations)
	return m
}

func (m *Metrics) observe(op string, start time.Time, outcome string) {
	m.dispatch.WithLabelValues(op, outcome).Inc()
	m.durations.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
