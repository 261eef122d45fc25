package startup

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"media-catalog/internal/catalog"
	"media-catalog/internal/dimensions"
	"media-catalog/internal/logging"
	"media-catalog/internal/mediatypes"
	"media-catalog/internal/storage"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v2"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// DefaultConfigFile is the vault-relative name of the optional YAML config.
const DefaultConfigFile = ".media-catalog.yaml"

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds all application configuration
type Config struct {
	VaultDir           string
	ConfigFile         string
	StoragePath        string
	ScanRoots          []string
	Extensions         mediatypes.ExtensionSet
	AutoTag            bool
	DefaultTags        []string
	RecentTagCap       int
	CacheTTL           time.Duration
	PreloadConcurrency int
	RescanInterval     time.Duration
	Port               string
	MetricsPort        string
	MetricsEnabled     bool
	WatchEnabled       bool
	VipsEnabled        bool
	LogHealthChecks    bool
}

// FileConfig is the YAML configuration file. Every field is optional;
// environment variables override it.
type FileConfig struct {
	StoragePath        string                   `yaml:"storagePath"`
	ScanRoots          []string                 `yaml:"scanRoots"`
	ScanRoot           string                   `yaml:"scanRoot"`
	Extensions         *mediatypes.ExtensionSet `yaml:"extensions"`
	AutoTag            *bool                    `yaml:"autoTag"`
	DefaultTags        []string                 `yaml:"defaultTags"`
	RecentTagCap       int                      `yaml:"recentTagCap"`
	CacheTTL           string                   `yaml:"cacheTTL"`
	PreloadConcurrency int                      `yaml:"preloadConcurrency"`
	RescanInterval     string                   `yaml:"rescanInterval"`
}

// LoadConfig prints the startup banner, then loads and validates
// configuration from the YAML file and environment variables.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()
	return ResolveConfig()
}

// ResolveConfig builds the configuration without the banner. The vault
// directory comes from VAULT_DIR (default "."); the YAML file from
// CONFIG_FILE or <vault>/.media-catalog.yaml.
func ResolveConfig() (*Config, error) {
	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	vaultDir, err := filepath.Abs(getEnv("VAULT_DIR", "."))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vault directory path: %w", err)
	}
	if err := ensureDirectory(vaultDir); err != nil {
		return nil, fmt.Errorf("vault directory error: %w", err)
	}

	configFile := getEnv("CONFIG_FILE", filepath.Join(vaultDir, DefaultConfigFile))
	fileCfg, err := LoadFileConfig(configFile)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		VaultDir:           vaultDir,
		ConfigFile:         configFile,
		StoragePath:        getEnv("STORAGE_PATH", firstNonEmpty(fileCfg.StoragePath, storage.DefaultPath)),
		ScanRoots:          resolveScanRoots(fileCfg),
		Extensions:         mediatypes.DefaultExtensionSet(),
		AutoTag:            getEnvBool("AUTO_TAG", fileCfg.AutoTag != nil && *fileCfg.AutoTag),
		DefaultTags:        fileCfg.DefaultTags,
		RecentTagCap:       getEnvInt("RECENT_TAG_CAP", fileCfg.RecentTagCap, catalog.DefaultRecentTagCap),
		CacheTTL:           getEnvDuration("CACHE_TTL", fileCfg.CacheTTL, dimensions.DefaultTTL),
		PreloadConcurrency: getEnvInt("PRELOAD_CONCURRENCY", fileCfg.PreloadConcurrency, dimensions.DefaultPreloadConcurrency),
		RescanInterval:     getEnvDuration("RESCAN_INTERVAL", fileCfg.RescanInterval, 30*time.Minute),
		Port:               getEnv("PORT", "8080"),
		MetricsPort:        getEnv("METRICS_PORT", "9090"),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		WatchEnabled:       getEnvBool("WATCH_ENABLED", true),
		VipsEnabled:        getEnvBool("VIPS_ENABLED", false),
		LogHealthChecks:    getEnvBool("LOG_HEALTH_CHECKS", true),
	}
	if fileCfg.Extensions != nil && !fileCfg.Extensions.IsEmpty() {
		cfg.Extensions = *fileCfg.Extensions
	}
	if tags := os.Getenv("DEFAULT_TAGS"); tags != "" {
		cfg.DefaultTags = splitList(tags)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logging.Info("  VAULT_DIR:           %s", cfg.VaultDir)
	logging.Info("  CONFIG_FILE:         %s", cfg.ConfigFile)
	logging.Info("  STORAGE_PATH:        %s", cfg.StoragePath)
	logging.Info("  SCAN_ROOTS:          %s", listString(cfg.ScanRoots, "(whole vault)"))
	logging.Info("  AUTO_TAG:            %v", cfg.AutoTag)
	logging.Info("  DEFAULT_TAGS:        %s", listString(cfg.DefaultTags, "(none)"))
	logging.Info("  RECENT_TAG_CAP:      %d", cfg.RecentTagCap)
	logging.Info("  CACHE_TTL:           %v", cfg.CacheTTL)
	logging.Info("  PRELOAD_CONCURRENCY: %d", cfg.PreloadConcurrency)
	logging.Info("  RESCAN_INTERVAL:     %v", cfg.RescanInterval)
	logging.Info("  PORT:                %s", cfg.Port)
	logging.Info("  METRICS_PORT:        %s", cfg.MetricsPort)
	logging.Info("  METRICS_ENABLED:     %v", cfg.MetricsEnabled)
	logging.Info("  WATCH_ENABLED:       %v", cfg.WatchEnabled)
	logging.Info("  VIPS_ENABLED:        %v", cfg.VipsEnabled)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())
	logging.Debug("  Extensions:          %s", strings.Join(cfg.Extensions.All(), ", "))

	return cfg, nil
}

// LoadFileConfig reads the YAML configuration file. A missing file yields
// an empty configuration.
func LoadFileConfig(name string) (FileConfig, error) {
	var fc FileConfig

	data, err := os.ReadFile(name)
	if errors.Is(err, os.ErrNotExist) {
		logging.Debug("  No config file at %s, using defaults", name)
		return fc, nil
	}
	if err != nil {
		return fc, fmt.Errorf("read config file %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config file %s: %w", name, err)
	}

	logging.Info("  Loaded config file: %s", name)
	return fc, nil
}

// resolveScanRoots picks the scan roots by precedence: SCAN_ROOTS, then
// SCAN_ROOT, then the file's scanRoots, then its scanRoot. A list always
// supersedes a single root from the same source.
func resolveScanRoots(fc FileConfig) []string {
	if v := os.Getenv("SCAN_ROOTS"); v != "" {
		return catalog.NormalizeRoots(splitList(v))
	}
	if v := os.Getenv("SCAN_ROOT"); v != "" {
		return catalog.NormalizeRoots([]string{v})
	}
	if len(fc.ScanRoots) > 0 {
		return catalog.NormalizeRoots(fc.ScanRoots)
	}
	if fc.ScanRoot != "" {
		return catalog.NormalizeRoots([]string{fc.ScanRoot})
	}
	return nil
}

// Validate checks values that would make the server misbehave.
func (c *Config) Validate() error {
	p := mediatypes.ToSlash(c.StoragePath)
	if p == "" || path.IsAbs(p) || filepath.IsAbs(c.StoragePath) {
		return fmt.Errorf("storage path %q must be relative to the vault", c.StoragePath)
	}
	if cleaned := path.Clean(p); cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("storage path %q escapes the vault", c.StoragePath)
	}
	if c.RecentTagCap <= 0 {
		return fmt.Errorf("recent tag cap must be positive, got %d", c.RecentTagCap)
	}
	if c.PreloadConcurrency <= 0 {
		return fmt.Errorf("preload concurrency must be positive, got %d", c.PreloadConcurrency)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %v", c.CacheTTL)
	}
	for _, port := range []string{c.Port, c.MetricsPort} {
		if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
			return fmt.Errorf("invalid port %q", port)
		}
	}
	return nil
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogStorageInit logs the result of loading the metadata file
func LogStorageInit(records int, duration time.Duration, err error) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("STORAGE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	if err != nil {
		logging.Warn("  Failed to load media data, starting with an empty catalog: %v", err)
		return
	}
	logging.Info("  [OK] Loaded %d media records in %v", records, duration)
}

// LogProberInit logs which dimension prober is active
func LogProberInit(vipsRequested, vipsAvailable bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIMENSION PROBER")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Image decoders: ENABLED")
	switch {
	case vipsRequested && vipsAvailable:
		logging.Info("  libvips:        ENABLED")
	case vipsRequested:
		logging.Warn("  libvips:        UNAVAILABLE (falling back to image decoders)")
	default:
		logging.Info("  libvips:        DISABLED")
	}
}

// LogIndexerInit logs indexer initialization
func LogIndexerInit(interval time.Duration, watch bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("INDEXER INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	if interval > 0 {
		logging.Info("  Rescan interval: %v", interval)
	} else {
		logging.Info("  Rescan interval: DISABLED")
	}
	logging.Info("  File watcher:    %s", enabledString(watch))
	logging.Info("  Starting indexer...")
}

// LogIndexerStarted logs successful indexer start
func LogIndexerStarted() {
	logging.Info("  [OK] Indexer started")
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}
		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes, grouped by API resource
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}
			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
		}
	}

	if logHealthChecks {
		logging.Info("  Health check logging: ON")
	} else {
		logging.Info("  Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(p string) string {
	parts := strings.SplitN(strings.TrimPrefix(p, "/"), "/", 3)
	if parts[0] == "api" && len(parts) > 1 {
		return "api/" + parts[1]
	}
	return parts[0]
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("  API:             http://localhost:%s/api", config.Port)
	if config.MetricsEnabled {
		logging.Info("  Metrics:         http://localhost:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("  Metrics:         DISABLED")
	}
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

func printBanner() {
	banner := `
------------------------------------------------------------
  media-catalog
  tags, titles and dimensions for the media in your vault
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}
	logging.Info("")
}

// ensureDirectory checks that dir exists and is a directory. Unlike the
// storage directory, the vault is never created.
func ensureDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s exists but is not a directory", dir)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// getEnvInt returns the env value, else the file value when positive,
// else the default.
func getEnvInt(key string, fileValue, defaultValue int) int {
	if fileValue > 0 {
		defaultValue = fileValue
	}
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// getEnvDuration is getEnvInt for Go duration strings. A zero duration is
// accepted and disables the feature it controls.
func getEnvDuration(key, fileValue string, defaultValue time.Duration) time.Duration {
	if fileValue != "" {
		if d, err := time.ParseDuration(fileValue); err == nil {
			defaultValue = d
		} else {
			logging.Warn("Invalid duration in config file for %s: %q, using default: %v", key, fileValue, defaultValue)
		}
	}
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("Invalid duration for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func listString(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}
