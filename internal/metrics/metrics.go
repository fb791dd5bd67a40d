package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	checksTotal    *prometheus.CounterVec
	checkDuration  *prometheus.HistogramVec
	checksInFlight prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. A nil reg gets a fresh registry so
// tests and multiple servers never collide on the default one.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitecheck_checks_total",
				Help: "Finished reachability checks by terminal state and category",
			},
			[]string{"state", "category"},
		),
		checkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sitecheck_check_duration_seconds",
				Help:    "Reported duration of finished checks",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"state"},
		),
		checksInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sitecheck_checks_in_flight",
				Help: "Checks started but not yet resolved",
			},
		),
		gatherer: reg,
	}
	reg.MustRegister(m.checksTotal, m.checkDuration, m.checksInFlight)
	return m
}

func (m *Metrics) CheckStarted() {
	m.checksInFlight.Inc()
}

func (m *Metrics) CheckFinished(state, category string, elapsed time.Duration) {
	m.checksInFlight.Dec()
	m.checksTotal.WithLabelValues(state, category).Inc()
	m.checkDuration.WithLabelValues(state).Observe(elapsed.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
