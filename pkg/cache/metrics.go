package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	L1HitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteproxy_l1_cache_hits_total",
		Help: "Total number of in-process cache hits",
	})

	L1MissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteproxy_l1_cache_misses_total",
		Help: "Total number of in-process cache misses",
	})

	L1SetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteproxy_l1_cache_sets_total",
		Help: "Total number of in-process cache sets",
	})
)
