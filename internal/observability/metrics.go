package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "climate_explorer"

// Metrics holds the Prometheus counters, histograms, and gauges for the projection service.
type Metrics struct {
	// Pipeline metrics.
	ProjectionRequests *prometheus.CounterVec   // labels: resolution={daily,monthly}, outcome={success,invalid,no_data,error}
	ProjectionDuration *prometheus.HistogramVec // labels: resolution
	SamplesFetched     *prometheus.CounterVec   // labels: resolution
	SamplesSkipped     *prometheus.CounterVec   // labels: resolution, reason={missing,remote}
	RecordsProduced    *prometheus.HistogramVec // labels: resolution

	// Remote service metrics.
	SourceRequests    *prometheus.CounterVec   // labels: operation={sample_day,list_months,sample_month}, outcome={success,error,empty}
	SourceAPIDuration *prometheus.HistogramVec // labels: operation
	SourceRetries     *prometheus.CounterVec   // labels: operation
	SourceCache       *prometheus.CounterVec   // labels: operation, result={hit,miss}

	// Publishing metrics.
	ProjectionsPublished prometheus.Counter
	PublishErrors        prometheus.Counter
	PublishEnabled       prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ProjectionRequests,
		m.ProjectionDuration,
		m.SamplesFetched,
		m.SamplesSkipped,
		m.RecordsProduced,
		m.SourceRequests,
		m.SourceAPIDuration,
		m.SourceRetries,
		m.SourceCache,
		m.ProjectionsPublished,
		m.PublishErrors,
		m.PublishEnabled,
	)
	return m
}

// NewUnregisteredMetrics creates Metrics outside the default registry, for
// one-shot commands that expose no /metrics endpoint.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ProjectionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "projection_requests_total",
			Help:      "Projection requests by resolution and outcome.",
		}, []string{"resolution", "outcome"}),
		ProjectionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "projection_duration_seconds",
			Help:      "Duration of a complete fetch-transform run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"resolution"}),
		SamplesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_fetched_total",
			Help:      "Samples converted into records.",
		}, []string{"resolution"}),
		SamplesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_skipped_total",
			Help:      "Samples skipped because of a remote error or a missing band.",
		}, []string{"resolution", "reason"}),
		RecordsProduced: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "records_per_projection",
			Help:      "Number of records in a completed projection.",
			Buckets:   []float64{1, 12, 31, 90, 365, 1825, 3650, 10000, 27759},
		}, []string{"resolution"}),
		SourceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "Remote geospatial service requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		SourceAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_api_duration_seconds",
			Help:      "Remote geospatial service request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		SourceRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_retries_total",
			Help:      "Retried remote geospatial service requests.",
		}, []string{"operation"}),
		SourceCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_cache_total",
			Help:      "Sample cache lookups by operation and result.",
		}, []string{"operation", "result"}),
		ProjectionsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "projections_published_total",
			Help:      "Projections written to the publish topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed projection publishes.",
		}),
		PublishEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "publish_enabled",
			Help:      "1 when projection publishing is enabled, 0 otherwise.",
		}),
	}
}
