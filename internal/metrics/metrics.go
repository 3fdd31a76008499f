package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the extraction pipeline.
// All methods are nil-safe so components can run without metrics wired.
type Metrics struct {
	Registry        *prometheus.Registry
	PagesTotal      *prometheus.CounterVec
	RecordsTotal    *prometheus.CounterVec
	ItemErrorsTotal *prometheus.CounterVec
	JobsTotal       *prometheus.CounterVec
	JobDuration     prometheus.Histogram
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_pages_total",
			Help: "Total catalog pages fetched, by category.",
		},
		[]string{"category"},
	)
	records := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_records_total",
			Help: "Total records extracted, by category.",
		},
		[]string{"category"},
	)
	itemErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_item_errors_total",
			Help: "Per-item extraction errors swallowed, by category and reason.",
		},
		[]string{"category", "reason"},
	)
	jobs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_jobs_total",
			Help: "Finished category jobs by terminal status.",
		},
		[]string{"status"},
	)
	jobDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_job_duration_seconds",
			Help:    "Wall-clock duration of category jobs.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	registry.MustRegister(pages, records, itemErrors, jobs, jobDuration)

	return &Metrics{
		Registry:        registry,
		PagesTotal:      pages,
		RecordsTotal:    records,
		ItemErrorsTotal: itemErrors,
		JobsTotal:       jobs,
		JobDuration:     jobDuration,
	}
}

// IncPage increments the fetched-pages counter.
func (m *Metrics) IncPage(category string) {
	if m == nil {
		return
	}
	m.PagesTotal.WithLabelValues(category).Inc()
}

// AddRecords adds to the extracted-records counter.
func (m *Metrics) AddRecords(category string, n int) {
	if m == nil {
		return
	}
	m.RecordsTotal.WithLabelValues(category).Add(float64(n))
}

// IncItemError increments the swallowed item error counter.
func (m *Metrics) IncItemError(category, reason string) {
	if m == nil {
		return
	}
	m.ItemErrorsTotal.WithLabelValues(category, reason).Inc()
}

// IncJob records a finished job's terminal status.
func (m *Metrics) IncJob(status string) {
	if m == nil {
		return
	}
	m.JobsTotal.WithLabelValues(status).Inc()
}

// ObserveJobDuration records a finished job's duration.
func (m *Metrics) ObserveJobDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.JobDuration.Observe(d.Seconds())
}
