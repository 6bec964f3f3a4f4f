// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dms_worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dms_worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dms_worker_job_duration_seconds",
			Help:    "Duration of job processing in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dms_worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	PagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dms_listing_pages_fetched_total",
			Help: "Listing pages fetched from the procedure API",
		},
		[]string{"procedure_id"},
	)

	ApplicationsAdmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dms_applications_admitted_total",
			Help: "Application ids admitted by a sync run",
		},
		[]string{"procedure_id", "sync"},
	)

	ParsingErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dms_parsing_errors_total",
			Help: "Beneficiary fields rejected by the parser, by field key",
		},
		[]string{"field"},
	)

	BankInformationStatuses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dms_bank_information_status_total",
			Help: "Bank information applications imported, by resulting status",
		},
		[]string{"status"},
	)
)

// RecordParsingError counts each rejected field once.
func RecordParsingError(fields []string) {
	for _, field := range fields {
		ParsingErrors.WithLabelValues(field).Inc()
	}
}
