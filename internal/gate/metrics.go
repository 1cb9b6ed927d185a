package gate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AllowedTotal tracks direct-path grants.
	AllowedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteproxy_gate_allowed_total",
		Help: "Total number of requests granted the direct upstream path",
	})

	// DeniedTotal tracks direct-path denials.
	DeniedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteproxy_gate_denied_total",
		Help: "Total number of requests denied the direct upstream path",
	})

	// LockFailuresTotal tracks distributed lock acquisition failures.
	LockFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteproxy_gate_lock_failures_total",
		Help: "Total number of distributed lock acquisition failures (failed open)",
	})

	// PenaltiesTotal tracks penalty windows applied after direct failures.
	PenaltiesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quoteproxy_gate_penalties_total",
		Help: "Total number of penalty windows applied to the gate counter",
	})
)
