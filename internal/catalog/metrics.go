package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncRunsTotal tracks completed catalog sync runs.
	SyncRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteproxy_catalog_sync_runs_total",
		Help: "Total number of completed catalog sync runs",
	})

	// SyncErrorsTotal tracks failed catalog sync runs.
	SyncErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteproxy_catalog_sync_errors_total",
		Help: "Total number of failed catalog sync runs",
	})

	// CoinsUpsertedTotal tracks coin rows written during sync.
	CoinsUpsertedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteproxy_catalog_coins_upserted_total",
		Help: "Total number of coins upserted into the catalog",
	})

	// SyncDurationSeconds tracks catalog sync latency.
	SyncDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quoteproxy_catalog_sync_duration_seconds",
		Help:    "Duration of catalog sync runs",
		Buckets: prometheus.DefBuckets,
	})
)
