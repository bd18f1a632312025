package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is a
// valid no-op so services can be built without a registry.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Upstream snapshot refreshes that failed, per collection and cache.
	RefreshFailuresTotal *prometheus.CounterVec
	CacheLookupsTotal    *prometheus.CounterVec

	AIRequestsTotal   *prometheus.CounterVec
	AIRequestDuration *prometheus.HistogramVec
}

func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studyshelf_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studyshelf_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		RefreshFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studyshelf_snapshot_refresh_failures_total",
				Help: "Failed upstream refreshes of cached repository snapshots",
			},
			[]string{"cache", "collection"},
		),
		CacheLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studyshelf_cache_lookups_total",
				Help: "Snapshot cache lookups by result (fresh, stale, miss)",
			},
			[]string{"cache", "result"},
		),
		AIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studyshelf_ai_requests_total",
				Help: "Generative model calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		AIRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studyshelf_ai_request_duration_seconds",
				Help:    "Generative model call duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 90},
			},
			[]string{"operation"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RefreshFailuresTotal,
		m.CacheLookupsTotal,
		m.AIRequestsTotal,
		m.AIRequestDuration,
	)
	return m
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

func (m *Metrics) RefreshFailed(cache, collection string) {
	if m == nil {
		return
	}
	m.RefreshFailuresTotal.WithLabelValues(cache, collection).Inc()
}

func (m *Metrics) CacheLookup(cache, result string) {
	if m == nil {
		return
	}
	m.CacheLookupsTotal.WithLabelValues(cache, result).Inc()
}

func (m *Metrics) AIRequest(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.AIRequestsTotal.WithLabelValues(operation, outcome).Inc()
	m.AIRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) HTTPRequest(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
