// Package metrics provides Prometheus instrumentation for media-catalog.
//
// All metrics are prefixed with "media_catalog_" and registered through
// promauto on the default registry, so they are served by promhttp.Handler.
//
// # Metric Categories
//
// ## HTTP Metrics
//   - HTTPRequestsTotal: requests by method, path and status
//   - HTTPRequestDuration: request duration by method and path
//   - HTTPRequestsInFlight: requests currently being processed
//
// ## Catalog Metrics
//   - CatalogRecordsTotal: records by kind (image/video/audio)
//   - CatalogTagsTotal: distinct tags
//   - CatalogRecentTags: size of the recently used tag list
//   - CatalogEditsTotal: record edits by field
//
// ## Dimension Cache Metrics
//   - DimensionCacheHits / DimensionCacheMisses
//   - DimensionCacheEntries
//   - DimensionProbesTotal by status, DimensionProbeDuration
//   - DimensionProbesCoalesced: lookups that joined an in-flight probe
//
// ## Indexer and Watcher Metrics
//   - IndexerRunsTotal, IndexerLastRunTimestamp, IndexerLastRunDuration
//   - IndexerFilesProcessed, IndexerRecordsAdded, IndexerRecordsRemoved
//   - IndexerErrors, IndexerIsRunning
//   - WatcherEventsTotal, WatcherErrors, WatchedDirectories
//
// ## Persistence Metrics
//   - StorageOperationsTotal by operation (load/save) and status
//   - StorageOperationDuration, StorageFileSizeBytes
//
// ## Filesystem Metrics
//
// Recorded through the filesystem.Observer returned by
// NewFilesystemObserver, including retries after NFS stale file handle
// errors.
//
// # Collector
//
// Collector polls a StatsProvider (the catalog index) and an optional cache
// size on an interval and updates the gauges above.
package metrics
