package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hierovision_client",
			Subsystem: "cache",
			Name:      "loads_total",
			Help:      "Collection loads by outcome (ok, error, stale).",
		},
		[]string{"cache", "result"},
	)

	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hierovision_client",
			Subsystem: "cache",
			Name:      "mutations_total",
			Help:      "Server-confirmed collection mutations.",
		},
		[]string{"cache", "op", "result"},
	)
)
