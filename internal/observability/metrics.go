package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_log"

// Metrics holds the Prometheus collectors for runs and provider fetches.
type Metrics struct {
	Runs           *prometheus.CounterVec // labels: outcome={updated,unchanged,error}
	FetchRequests  *prometheus.CounterVec // labels: provider, outcome={success,fallback}
	FetchFailures  prometheus.Counter
	DocumentWrites prometheus.Counter
	BannerWrites   prometheus.Counter
	LogEntries     prometheus.Gauge
	RunDuration    prometheus.Histogram

	registry *prometheus.Registry
}

func newMetrics() *Metrics {
	return &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Update runs by outcome.",
		}, []string{"outcome"}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Successful weather fetches by answering provider and whether a fallback was used.",
		}, []string{"provider", "outcome"}),
		FetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Runs where every provider failed and the placeholder was logged.",
		}),
		DocumentWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_writes_total",
			Help:      "Times the target document was rewritten.",
		}),
		BannerWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "banner_writes_total",
			Help:      "Times the SVG banner was rewritten.",
		}),
		LogEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "log_entries",
			Help:      "Dated entries in the log block after the last run.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete fetch-render-merge-write run.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Runs,
		m.FetchRequests,
		m.FetchFailures,
		m.DocumentWrites,
		m.BannerWrites,
		m.LogEntries,
		m.RunDuration,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(m.collectors()...)
	return m
}

// ObserveFetch records a successful fetch.
func (m *Metrics) ObserveFetch(provider string, fallback bool) {
	outcome := "success"
	if fallback {
		outcome = "fallback"
	}
	m.FetchRequests.WithLabelValues(provider, outcome).Inc()
}

// ObserveFetchFailure records a run where the whole chain failed.
func (m *Metrics) ObserveFetchFailure() {
	m.FetchFailures.Inc()
}

// WriteTextfile dumps the metrics in the node_exporter textfile format, for
// one-shot runs that exit before anything could scrape them.
func (m *Metrics) WriteTextfile(path string) error {
	var g prometheus.Gatherer = prometheus.DefaultGatherer
	if m.registry != nil {
		g = m.registry
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
