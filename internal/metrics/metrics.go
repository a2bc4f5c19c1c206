package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the portal
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Upstream Metrics
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Business Metrics
	WhiteLabelFetchFailures prometheus.Counter
	UploadsTotal            *prometheus.CounterVec
	OrphanedUploads         prometheus.Gauge
	SessionsActive          prometheus.Gauge
}

// NewMetricsRegistry registers the portal metrics on reg. A nil reg uses the
// default registerer.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "koomy_portal_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "koomy_portal_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "koomy_portal_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		UpstreamRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "koomy_portal_upstream_requests_total",
				Help: "Calls made to the Koomy API by method and status code",
			},
			[]string{"method", "status_code"},
		),
		UpstreamRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "koomy_portal_upstream_request_duration_seconds",
				Help:    "Koomy API call latency in seconds",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),

		// Cache Metrics
		CacheHitsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "koomy_portal_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "koomy_portal_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Business Metrics
		WhiteLabelFetchFailures: f.NewCounter(
			prometheus.CounterOpts{
				Name: "koomy_portal_white_label_fetch_failures_total",
				Help: "White-label config loads that failed",
			},
		),
		UploadsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "koomy_portal_uploads_total",
				Help: "Upload attempts by kind and final stage",
			},
			[]string{"kind", "stage"},
		),
		OrphanedUploads: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "koomy_portal_orphaned_uploads",
				Help: "Upload slots written but never finalized",
			},
		),
		SessionsActive: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "koomy_portal_sessions_active",
				Help: "Stored sessions that have not expired",
			},
		),
	}
}

// CacheHit and CacheMiss tolerate a nil registry so callers built without
// metrics keep working.
func (m *MetricsRegistry) CacheHit(pattern string) {
	if m != nil {
		m.CacheHitsTotal.WithLabelValues(pattern).Inc()
	}
}

func (m *MetricsRegistry) CacheMiss(pattern string) {
	if m != nil {
		m.CacheMissesTotal.WithLabelValues(pattern).Inc()
	}
}

func (m *MetricsRegistry) Upload(kind, stage string) {
	if m != nil {
		m.UploadsTotal.WithLabelValues(kind, stage).Inc()
	}
}
