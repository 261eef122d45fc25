package metrics

import "media-catalog/internal/mediatypes"

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup.
func InitializeMetrics() {
	for _, kind := range mediatypes.Kinds {
		CatalogRecordsTotal.WithLabelValues(string(kind))
	}

	for _, field := range []string{"tags", "title", "description"} {
		CatalogEditsTotal.WithLabelValues(field)
	}

	for _, status := range []string{"success", "error"} {
		DimensionProbesTotal.WithLabelValues(status)
	}

	for _, source := range []string{"scan", "event", "lazy"} {
		IndexerRecordsAdded.WithLabelValues(source)
	}
	for _, reason := range []string{"deleted", "cleanup", "api"} {
		IndexerRecordsRemoved.WithLabelValues(reason)
	}

	for _, t := range []string{"create", "modify", "delete", "rename"} {
		WatcherEventsTotal.WithLabelValues(t)
	}

	for _, op := range []string{"load", "save"} {
		StorageOperationsTotal.WithLabelValues(op, "success")
		StorageOperationsTotal.WithLabelValues(op, "error")
		StorageOperationDuration.WithLabelValues(op)
	}

	volumes := []string{"vault", "storage"}
	for _, vol := range volumes {
		for _, op := range []string{"read", "write", "stat", "readdir", "open"} {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
		}
		for _, op := range []string{"stat", "open", "read"} {
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}
}
