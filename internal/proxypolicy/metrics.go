package proxypolicy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResolvedDirectTotal tracks requests resolved to the direct path.
	ResolvedDirectTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteproxy_proxy_resolved_direct_total",
		Help: "Total number of upstream requests resolved to the direct path",
	})

	// ResolvedProxiedTotal tracks requests resolved to the proxy path.
	ResolvedProxiedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteproxy_proxy_resolved_proxied_total",
		Help: "Total number of upstream requests resolved to the proxy path",
	})

	// ProxyEnabledTotal tracks proxy penalty activations.
	ProxyEnabledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteproxy_proxy_enabled_total",
		Help: "Total number of times the use-proxy flag was turned on after a direct failure",
	})
)
