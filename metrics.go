package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var mutationJobFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "hierovision_client",
		Name:      "mutation_job_failures_total",
		Help:      "Queued cache mutations that returned an error or were skipped.",
	},
)
