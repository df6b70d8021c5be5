package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts HTTP requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// PassportGenerationTotal counts passport PDF generations by status
	PassportGenerationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "passport_generation_total",
			Help: "Total number of passport PDF generations",
		},
		[]string{"status"},
	)

	// PassportGenerationDuration measures a full passport assembly
	PassportGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "passport_generation_duration_seconds",
			Help:    "Duration of passport PDF generation in seconds",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
		[]string{"passport_type"},
	)

	// PassportFileSizeBytes tracks the size of generated documents
	PassportFileSizeBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "passport_file_size_bytes",
			Help:    "Size of generated passport PDF files in bytes",
			Buckets: []float64{100 * 1024, 1024 * 1024, 5 * 1024 * 1024, 10 * 1024 * 1024, 50 * 1024 * 1024},
		},
		[]string{"passport_type"},
	)

	// RasterizeRequestsTotal counts page screenshots requested from Gotenberg
	RasterizeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gotenberg_screenshot_requests_total",
			Help: "Total number of page screenshot requests to Gotenberg",
		},
		[]string{"status"},
	)

	// RasterizeDuration measures page screenshot latency
	RasterizeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gotenberg_screenshot_duration_seconds",
			Help:    "Duration of Gotenberg screenshot requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// RecordStoreRequestsTotal counts record store calls
	RecordStoreRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "record_store_requests_total",
			Help: "Total number of record store requests",
		},
		[]string{"operation", "table", "status"},
	)

	// RecordStoreRequestDuration measures record store latency
	RecordStoreRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "record_store_request_duration_seconds",
			Help:    "Duration of record store requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// StatusChangesTotal counts operator decisions
	StatusChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "record_status_changes_total",
			Help: "Total number of approve/decline actions",
		},
		[]string{"table", "status", "result"},
	)

	// ResourceFetchTotal counts binary downloads (photos, signatures, documents, emblem)
	ResourceFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resource_fetch_total",
			Help: "Total number of binary resource downloads",
		},
		[]string{"status"},
	)

	// ArchiveWritesTotal counts archived passport documents
	ArchiveWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "passport_archive_writes_total",
			Help: "Total number of passport documents written to the archive",
		},
		[]string{"backend", "status"},
	)
)
