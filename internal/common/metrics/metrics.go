// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VariantSelections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "variant_selections_total",
			Help: "Variants recommended by the selection engine",
		},
		[]string{"section_type", "variant", "default"},
	)

	VariantSwitches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "variant_switches_total",
			Help: "Variant switches applied to site drafts",
		},
		[]string{"section_type", "is_override"},
	)

	OverrideFanoutFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "variant_override_fanout_failures_total",
			Help: "Failed deliveries of override records to analytics sinks",
		},
		[]string{"sink"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests served by the composer API",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)
)
