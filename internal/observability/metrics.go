package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// dashboard API.
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec   // labels: route, status
	RequestDuration *prometheus.HistogramVec // labels: route

	// Dataset metrics, set once after load.
	DatasetReadings    *prometheus.GaugeVec // labels: dataset={water_levels,rainfall}
	DatasetLoadSeconds prometheus.Gauge
}

// NewMetrics creates and registers all API metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "garona",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and response status.",
		}, []string{"route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "garona",
			Name:      "http_request_duration_seconds",
			Help:      "Request handling duration by route.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}, []string{"route"}),
		DatasetReadings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "garona",
			Name:      "dataset_readings",
			Help:      "Readings loaded per dataset at startup.",
		}, []string{"dataset"}),
		DatasetLoadSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "garona",
			Name:      "dataset_load_seconds",
			Help:      "Wall time spent loading and indexing both datasets.",
		}),
	}

	prometheus.MustRegister(
		m.HTTPRequests,
		m.RequestDuration,
		m.DatasetReadings,
		m.DatasetLoadSeconds,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		HTTPRequests:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "garona", Name: "http_requests_total"}, []string{"route", "status"}),
		RequestDuration:    prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "garona", Name: "http_request_duration_seconds"}, []string{"route"}),
		DatasetReadings:    prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: "garona", Name: "dataset_readings"}, []string{"dataset"}),
		DatasetLoadSeconds: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "garona", Name: "dataset_load_seconds"}),
	}
}
