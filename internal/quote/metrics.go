package quote

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QuotesResolvedTotal tracks quotes resolved against the upstream.
	QuotesResolvedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteproxy_quotes_resolved_total",
		Help: "Total number of ticker quotes resolved via the upstream provider",
	})

	// QuoteCacheHitsTotal tracks quotes served from the shortcut cache.
	QuoteCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteproxy_quote_cache_hits_total",
		Help: "Total number of ticker quotes served from the shared cache",
	})
)
