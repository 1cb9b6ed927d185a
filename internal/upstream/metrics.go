package upstream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks upstream calls issued through the fetcher.
	RequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteproxy_upstream_requests_total",
		Help: "Total number of upstream provider requests",
	})

	// RequestErrorsTotal tracks failed upstream calls.
	RequestErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteproxy_upstream_request_errors_total",
		Help: "Total number of failed upstream provider requests",
	})

	// RequestDurationSeconds tracks upstream request latency.
	RequestDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quoteproxy_upstream_request_duration_seconds",
		Help:    "Duration of upstream provider requests",
		Buckets: prometheus.DefBuckets,
	})

	// CacheHitsTotal tracks shared-cache hits in the fetcher.
	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteproxy_fetch_cache_hits_total",
		Help: "Total number of shared cache hits on upstream operations",
	})

	// CacheMissesTotal tracks shared-cache misses in the fetcher.
	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteproxy_fetch_cache_misses_total",
		Help: "Total number of shared cache misses on upstream operations",
	})

	// CacheReadErrorsTotal tracks cache lookups that failed and were treated as misses.
	CacheReadErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteproxy_fetch_cache_read_errors_total",
		Help: "Total number of shared cache read failures treated as misses",
	})

	// CacheWriteErrorsTotal tracks dropped best-effort cache writes.
	CacheWriteErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteproxy_fetch_cache_write_errors_total",
		Help: "Total number of shared cache write failures (logged and dropped)",
	})
)
