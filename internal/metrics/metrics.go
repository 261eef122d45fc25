package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Catalog metrics
var (
	CatalogRecordsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_catalog_records_total",
			Help: "Number of media records in the index by kind",
		},
		[]string{"kind"},
	)

	CatalogTagsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_tags_total",
			Help: "Number of distinct tags across all records",
		},
	)

	CatalogRecentTags = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_recent_tags",
			Help: "Number of entries in the recently used tag list",
		},
	)

	CatalogEditsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_edits_total",
			Help: "Total number of record edits by field",
		},
		[]string{"field"},
	)
)

// Dimension cache metrics
var (
	DimensionCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_catalog_dimension_cache_hits_total",
			Help: "Total number of dimension lookups answered from cache",
		},
	)

	DimensionCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_catalog_dimension_cache_misses_total",
			Help: "Total number of dimension lookups that required a probe",
		},
	)

	DimensionCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_dimension_cache_entries",
			Help: "Number of entries held by the dimension cache",
		},
	)

	DimensionProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_dimension_probes_total",
			Help: "Total number of dimension probes by status",
		},
		[]string{"status"}, // "success", "error"
	)

	DimensionProbeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_catalog_dimension_probe_duration_seconds",
			Help:    "Duration of dimension probes in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	DimensionProbesCoalesced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_catalog_dimension_probes_coalesced_total",
			Help: "Total number of lookups that joined an in-flight probe",
		},
	)
)

// Indexer metrics
var (
	IndexerRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_catalog_indexer_runs_total",
			Help: "Total number of scan runs",
		},
	)

	IndexerLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_indexer_last_run_timestamp",
			Help: "Unix timestamp of the last completed scan",
		},
	)

	IndexerLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_indexer_last_run_duration_seconds",
			Help: "Duration of the last scan in seconds",
		},
	)

	IndexerFilesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_catalog_indexer_files_processed_total",
			Help: "Total number of vault files considered by scans",
		},
	)

	IndexerRecordsAdded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_indexer_records_added_total",
			Help: "Total number of records created by source",
		},
		[]string{"source"}, // "scan", "event", "lazy"
	)

	IndexerRecordsRemoved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_indexer_records_removed_total",
			Help: "Total number of records removed by reason",
		},
		[]string{"reason"}, // "deleted", "cleanup", "api"
	)

	IndexerErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_catalog_indexer_errors_total",
			Help: "Total number of indexer errors",
		},
	)

	IndexerIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_indexer_running",
			Help: "Whether a scan is currently running (1 = running, 0 = idle)",
		},
	)
)

// Watcher metrics
var (
	WatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_watcher_events_total",
			Help: "Total number of vault change events by type",
		},
		[]string{"type"},
	)

	WatcherErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_catalog_watcher_errors_total",
			Help: "Total number of file watcher errors",
		},
	)

	WatchedDirectories = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_watched_directories",
			Help: "Number of directories watched for changes",
		},
	)
)

// Persistence metrics
var (
	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_storage_operations_total",
			Help: "Total number of metadata file loads and saves by status",
		},
		[]string{"operation", "status"},
	)

	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_storage_operation_duration_seconds",
			Help:    "Duration of metadata file loads and saves in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)

	StorageFileSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_storage_file_size_bytes",
			Help: "Size of the metadata file written by the last save",
		},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_filesystem_operation_duration_seconds",
			Help:    "Duration of vault filesystem operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_filesystem_operation_errors_total",
			Help: "Total number of failed vault filesystem operations",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_filesystem_retry_attempts_total",
			Help: "Total number of retries after stale file handle errors",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_filesystem_retry_success_total",
			Help: "Total number of operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_filesystem_retry_failures_total",
			Help: "Total number of operations that failed after all retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_filesystem_retry_duration_seconds",
			Help:    "Total time spent in retrying filesystem operations",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_filesystem_stale_errors_total",
			Help: "Total number of stale file handle errors seen",
		},
		[]string{"operation", "volume"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_catalog_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)
