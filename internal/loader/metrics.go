package loader

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Load outcomes recorded by inspector_loads_total.
const (
	outcomeFound     = "found"
	outcomeAbsent    = "absent"
	outcomeError     = "error"
	outcomeCancelled = "cancelled"
)

// Metrics holds the loader's Prometheus collectors.
type Metrics struct {
	loads    *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics creates the loader collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inspector_loads_total",
				Help: "Total number of document info loads by outcome.",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "inspector_load_duration_seconds",
				Help:    "Time spent resolving document info.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	if err := reg.Register(m.loads); err != nil {
		return nil, err
	}
	if err := reg.Register(m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) observe(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(outcome).Inc()
	if outcome != outcomeCancelled {
		m.duration.Observe(seconds)
	}
}
