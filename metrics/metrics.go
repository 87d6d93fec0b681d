package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "hostkey_panel"

// Registry holds every collector exported by the panel. It is separate from
// the prometheus default registry so tests can scrape it in isolation.
var Registry = prometheus.NewRegistry()

var (
	// PublishJobsTotal counts background publish job transitions.
	PublishJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_jobs_total",
			Help:      "Background publish jobs by outcome (started, succeeded, failed, cancelled)",
		},
		[]string{"outcome"},
	)

	// ActionRunsTotal counts synchronous privileged action invocations.
	ActionRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "action_runs_total",
			Help:      "Privileged action invocations by module and result",
		},
		[]string{"module", "result"},
	)

	// ActionDuration tracks the latency of synchronous privileged actions.
	ActionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_duration_seconds",
			Help:      "Latency of privileged action invocations",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"module"},
	)
)

const (
	OutcomeStarted   = "started"
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

func init() {
	Registry.MustRegister(
		PublishJobsTotal,
		ActionRunsTotal,
		ActionDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}
