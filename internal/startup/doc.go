// Package startup handles configuration loading and startup/shutdown logging.
//
// # Configuration
//
// [LoadConfig] reads an optional YAML file and then applies environment
// variable overrides. The file defaults to .media-catalog.yaml in the vault
// and may set storagePath, scanRoots, scanRoot, extensions, autoTag,
// defaultTags, recentTagCap, cacheTTL, preloadConcurrency and
// rescanInterval.
//
// Environment variables:
//
//   - VAULT_DIR: vault directory (default: current directory)
//   - CONFIG_FILE: YAML config file (default: <vault>/.media-catalog.yaml)
//   - STORAGE_PATH: vault-relative metadata file (default: .media-catalog/media-data.json)
//   - SCAN_ROOTS: comma separated scan roots; supersedes SCAN_ROOT
//   - SCAN_ROOT: single scan root, kept for older setups
//   - AUTO_TAG: apply DEFAULT_TAGS to new records (default: false)
//   - DEFAULT_TAGS: comma separated tags for new records
//   - RECENT_TAG_CAP: size of the recently used tag list (default: 20)
//   - CACHE_TTL: dimension cache lifetime as Go duration (default: 30m)
//   - PRELOAD_CONCURRENCY: dimension preload batch size (default: 5)
//   - RESCAN_INTERVAL: periodic full rescan as Go duration, 0 disables (default: 30m)
//   - PORT: HTTP API port (default: 8080)
//   - METRICS_PORT: Prometheus metrics port (default: 9090)
//   - METRICS_ENABLED: serve metrics (default: true)
//   - WATCH_ENABLED: watch the vault for changes (default: true)
//   - VIPS_ENABLED: probe dimensions with libvips when available (default: false)
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: log health check requests (default: true)
//
// # Startup Logging
//
// The Log* functions print the sectioned startup and shutdown report so
// operators can see at a glance what is enabled.
package startup
