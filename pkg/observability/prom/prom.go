// Package prom implements the observability hooks with Prometheus collectors.
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/psulibraries/rmdlink/pkg/observability"
)

// Metrics holds the collectors and implements every observability hook
// interface.
type Metrics struct {
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	cacheSets        *prometheus.CounterVec
	cacheInvalidated prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec

	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
}

var (
	_ observability.CacheHooks = (*Metrics)(nil)
	_ observability.HTTPHooks  = (*Metrics)(nil)
	_ observability.FetchHooks = (*Metrics)(nil)
)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		cacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rmd_cache_hits_total",
			Help: "Number of RMD cache hits",
		}, []string{"endpoint"}),
		cacheMisses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rmd_cache_misses_total",
			Help: "Number of RMD cache misses",
		}, []string{"endpoint"}),
		cacheSets: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rmd_cache_writes_total",
			Help: "Number of RMD cache writes, split by negative (user not found) entries",
		}, []string{"endpoint", "negative"}),
		cacheInvalidated: f.NewCounter(prometheus.CounterOpts{
			Name: "rmd_cache_invalidated_entries_total",
			Help: "Number of RMD cache entries removed by tag invalidation",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rmd_api_requests_total",
			Help: "RMD API responses by status code",
		}, []string{"host", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rmd_api_request_duration",
			Help:    "Time to receive an RMD API response",
			Buckets: prometheus.ExponentialBucketsRange(0.001, 30, 20),
		}, []string{"host"}),
		httpErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rmd_api_errors_total",
			Help: "RMD API requests that failed without a response",
		}, []string{"host"}),
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rmd_fetch_total",
			Help: "RMD profile lookups by outcome",
		}, []string{"endpoint", "outcome"}),
		fetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rmd_fetch_duration",
			Help:    "Time to resolve an RMD profile lookup",
			Buckets: prometheus.ExponentialBucketsRange(0.0001, 30, 20),
		}, []string{"endpoint", "outcome"}),
	}
}

// Install registers m as the global cache, HTTP and fetch hooks.
func (m *Metrics) Install() {
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
	observability.SetFetchHooks(m)
}

func (m *Metrics) OnCacheHit(_ context.Context, endpoint string) {
	m.cacheHits.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, endpoint string) {
	m.cacheMisses.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, endpoint string, _ int, negative bool) {
	neg := "false"
	if negative {
		neg = "true"
	}
	m.cacheSets.WithLabelValues(endpoint, neg).Inc()
}

func (m *Metrics) OnCacheInvalidate(_ context.Context, _ []string, removed int) {
	m.cacheInvalidated.Add(float64(removed))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, statusCode int, duration time.Duration) {
	m.httpRequests.WithLabelValues(host, statusLabel(statusCode)).Inc()
	m.httpDuration.WithLabelValues(host).Observe(duration.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.httpErrors.WithLabelValues(host).Inc()
}

func (m *Metrics) OnFetchComplete(_ context.Context, endpoint, outcome string, duration time.Duration) {
	m.fetches.WithLabelValues(endpoint, outcome).Inc()
	m.fetchDuration.WithLabelValues(endpoint, outcome).Observe(duration.Seconds())
}

// statusLabel buckets status codes into classes to keep label cardinality
// low; 404 is kept distinct because it drives negative caching.
func statusLabel(code int) string {
	switch {
	case code == 404:
		return "404"
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return "other"
	}
}
