package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the service. A nil
// *Metrics is valid and turns every recording method into a no-op,
// which keeps tests and library callers free of wiring.
type Metrics struct {
	registry        *prometheus.Registry
	fetchesTotal    *prometheus.CounterVec
	fetchRetries    prometheus.Counter
	analyzeDuration prometheus.Histogram
	providerCalls   *prometheus.CounterVec
	cacheEvents     *prometheus.CounterVec
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seo_fetches_total",
			Help: "Page fetches by final outcome.",
		}, []string{"outcome"}),
		fetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seo_fetch_retries_total",
			Help: "Fetch attempts beyond the first.",
		}),
		analyzeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "seo_analyze_duration_seconds",
			Help:    "End to end page analysis duration.",
			Buckets: prometheus.DefBuckets,
		}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seo_provider_calls_total",
			Help: "Keyword provider calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seo_cache_events_total",
			Help: "Cache hits and misses by cache name.",
		}, []string{"cache", "event"}),
	}

	m.registry.MustRegister(
		m.fetchesTotal,
		m.fetchRetries,
		m.analyzeDuration,
		m.providerCalls,
		m.cacheEvents,
	)
	return m
}

// Registry exposes the underlying registry for handlers and tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// IncFetch records a completed fetch with its outcome
// (success, invalid_url, timeout, http_error, network_error).
func (m *Metrics) IncFetch(outcome string) {
	if m == nil {
		return
	}
	m.fetchesTotal.WithLabelValues(outcome).Inc()
}

// IncFetchRetry records a retried fetch attempt.
func (m *Metrics) IncFetchRetry() {
	if m == nil {
		return
	}
	m.fetchRetries.Inc()
}

// ObserveAnalyzeDuration records how long a full page analysis took.
func (m *Metrics) ObserveAnalyzeDuration(seconds float64) {
	if m == nil {
		return
	}
	m.analyzeDuration.Observe(seconds)
}

// IncProviderCall records a keyword provider call and its outcome
// (success, error, skipped).
func (m *Metrics) IncProviderCall(provider, outcome string) {
	if m == nil {
		return
	}
	m.providerCalls.WithLabelValues(provider, outcome).Inc()
}

// IncCacheEvent records a hit or miss on the named cache.
func (m *Metrics) IncCacheEvent(cache, event string) {
	if m == nil {
		return
	}
	m.cacheEvents.WithLabelValues(cache, event).Inc()
}
