package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics implements CaseMetrics with client_golang
// collectors registered on its own registry.
type PrometheusMetrics struct {
	registry *prometheus.Registry
	cases    *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
	running  prometheus.Gauge
}

// NewPrometheusMetrics creates the collectors under namespace and
// registers them on a fresh registry.
func NewPrometheusMetrics(namespace string) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		cases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cases_total",
				Help:      "Number of finished cases by outcome",
			},
			[]string{"outcome"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "case_failures_total",
				Help:      "Number of failed cases by failure kind",
			},
			[]string{"kind"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "case_duration_seconds",
				Help:      "Case duration by outcome",
				Buckets: []float64{
					.005, .01, .025, .05, .1, .2, .5, 1, 2.5, 5, 10,
				},
			},
			[]string{"outcome"},
		),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cases_running",
			Help:      "Number of cases in flight",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.cases, m.failures, m.duration, m.running,
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) RecordCase(outcome string, duration time.Duration) {
	m.cases.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordFailure(kind string) {
	m.failures.WithLabelValues(kind).Inc()
}

func (m *PrometheusMetrics) SetRunning(count int) {
	m.running.Set(float64(count))
}

// Gatherer returns the registry holding the collectors.
func (m *PrometheusMetrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Handler serves the collectors in the Prometheus text format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
