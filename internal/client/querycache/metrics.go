package querycache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hangarkeeper",
		Subsystem: "querycache",
		Name:      "lookups_total",
		Help:      "EnsureFresh calls by outcome (hit or miss).",
	}, []string{"result"})

	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hangarkeeper",
		Subsystem: "querycache",
		Name:      "fetches_total",
		Help:      "Settled fetches by outcome (success, error or superseded).",
	}, []string{"result"})

	invalidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hangarkeeper",
		Subsystem: "querycache",
		Name:      "invalidations_total",
		Help:      "Entries marked stale by Invalidate.",
	})

	evictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hangarkeeper",
		Subsystem: "querycache",
		Name:      "evictions_total",
		Help:      "Entries removed by the garbage collector.",
	})
)
