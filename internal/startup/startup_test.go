package startup

import (
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"media-catalog/internal/storage"

	"github.com/gorilla/mux"
)

// clearEnv unsets every variable ResolveConfig reads for the duration of
// the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"VAULT_DIR", "CONFIG_FILE", "STORAGE_PATH", "SCAN_ROOTS", "SCAN_ROOT",
		"AUTO_TAG", "DEFAULT_TAGS", "RECENT_TAG_CAP", "CACHE_TTL",
		"PRELOAD_CONCURRENCY", "RESCAN_INTERVAL", "PORT", "METRICS_PORT",
		"METRICS_ENABLED", "WATCH_ENABLED", "VIPS_ENABLED", "LOG_HEALTH_CHECKS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.OS == "" || info.Arch == "" {
		t.Error("Expected OS and Arch to be set")
	}
	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{name: "Returns default when env var not set", key: "MC_TEST_UNSET", defaultValue: "default", want: "default"},
		{name: "Returns env value when set", key: "MC_TEST_SET", defaultValue: "default", envValue: "custom", want: "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.envValue)
			if got := getEnv(tt.key, tt.defaultValue); got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		want         bool
	}{
		{name: "unset uses default", envValue: "", defaultValue: true, want: true},
		{name: "true", envValue: "true", defaultValue: false, want: true},
		{name: "zero", envValue: "0", defaultValue: true, want: false},
		{name: "invalid uses default", envValue: "maybe", defaultValue: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MC_TEST_BOOL", tt.envValue)
			if got := getEnvBool("MC_TEST_BOOL", tt.defaultValue); got != tt.want {
				t.Errorf("getEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvIntAndDuration(t *testing.T) {
	t.Setenv("MC_TEST_INT", "")
	if got := getEnvInt("MC_TEST_INT", 7, 20); got != 7 {
		t.Errorf("getEnvInt() with file value = %d, want 7", got)
	}
	t.Setenv("MC_TEST_INT", "12")
	if got := getEnvInt("MC_TEST_INT", 7, 20); got != 12 {
		t.Errorf("getEnvInt() with env value = %d, want 12", got)
	}
	t.Setenv("MC_TEST_INT", "many")
	if got := getEnvInt("MC_TEST_INT", 0, 20); got != 20 {
		t.Errorf("getEnvInt() with invalid env = %d, want 20", got)
	}

	t.Setenv("MC_TEST_DUR", "")
	if got := getEnvDuration("MC_TEST_DUR", "5m", time.Hour); got != 5*time.Minute {
		t.Errorf("getEnvDuration() with file value = %v, want 5m", got)
	}
	t.Setenv("MC_TEST_DUR", "0s")
	if got := getEnvDuration("MC_TEST_DUR", "5m", time.Hour); got != 0 {
		t.Errorf("getEnvDuration() = %v, want 0 to disable", got)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, b ,,c ")
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("splitList() = %v, want %v", got, want)
	}
}

func TestResolveConfigDefaults(t *testing.T) {
	clearEnv(t)
	vault := t.TempDir()
	t.Setenv("VAULT_DIR", vault)

	cfg, err := ResolveConfig()
	if err != nil {
		t.Fatalf("ResolveConfig() error = %v", err)
	}

	if cfg.VaultDir != vault {
		t.Errorf("VaultDir = %q, want %q", cfg.VaultDir, vault)
	}
	if cfg.ConfigFile != filepath.Join(vault, DefaultConfigFile) {
		t.Errorf("ConfigFile = %q", cfg.ConfigFile)
	}
	if cfg.StoragePath != storage.DefaultPath {
		t.Errorf("StoragePath = %q, want %q", cfg.StoragePath, storage.DefaultPath)
	}
	if cfg.ScanRoots != nil {
		t.Errorf("ScanRoots = %v, want none", cfg.ScanRoots)
	}
	if cfg.RecentTagCap != 20 || cfg.PreloadConcurrency != 5 || cfg.CacheTTL != 30*time.Minute {
		t.Errorf("defaults = cap %d, concurrency %d, ttl %v", cfg.RecentTagCap, cfg.PreloadConcurrency, cfg.CacheTTL)
	}
	if cfg.AutoTag || !cfg.WatchEnabled || !cfg.MetricsEnabled || cfg.VipsEnabled {
		t.Errorf("unexpected feature defaults: %+v", cfg)
	}
	if cfg.Extensions.IsEmpty() {
		t.Error("Extensions should default to the built-in set")
	}
}

func TestResolveConfigFileAndEnv(t *testing.T) {
	clearEnv(t)
	vault := t.TempDir()
	t.Setenv("VAULT_DIR", vault)

	yamlConfig := `
storagePath: data/catalog.json
scanRoot: legacy
scanRoots: [attachments, media/photos]
autoTag: true
defaultTags: [inbox]
recentTagCap: 10
cacheTTL: 5m
extensions:
  image: [png, heic]
  video: [mp4]
`
	if err := os.WriteFile(filepath.Join(vault, DefaultConfigFile), []byte(yamlConfig), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := ResolveConfig()
	if err != nil {
		t.Fatalf("ResolveConfig() error = %v", err)
	}
	if cfg.StoragePath != "data/catalog.json" {
		t.Errorf("StoragePath = %q", cfg.StoragePath)
	}
	if want := []string{"attachments/", "media/photos/"}; !reflect.DeepEqual(cfg.ScanRoots, want) {
		t.Errorf("ScanRoots = %v, want %v", cfg.ScanRoots, want)
	}
	if !cfg.AutoTag || !reflect.DeepEqual(cfg.DefaultTags, []string{"inbox"}) {
		t.Errorf("AutoTag/DefaultTags = %v/%v", cfg.AutoTag, cfg.DefaultTags)
	}
	if cfg.RecentTagCap != 10 || cfg.CacheTTL != 5*time.Minute {
		t.Errorf("RecentTagCap/CacheTTL = %d/%v", cfg.RecentTagCap, cfg.CacheTTL)
	}
	if !cfg.Extensions.Supports("heic") || cfg.Extensions.Supports("mp3") {
		t.Errorf("Extensions = %+v, want the configured set", cfg.Extensions)
	}

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("SCAN_ROOT", "single")
		t.Setenv("DEFAULT_TAGS", "a, b")
		t.Setenv("AUTO_TAG", "false")
		t.Setenv("RECENT_TAG_CAP", "3")

		cfg, err := ResolveConfig()
		if err != nil {
			t.Fatalf("ResolveConfig() error = %v", err)
		}
		if !reflect.DeepEqual(cfg.ScanRoots, []string{"single/"}) {
			t.Errorf("ScanRoots = %v, want [single/]", cfg.ScanRoots)
		}
		if cfg.AutoTag || !reflect.DeepEqual(cfg.DefaultTags, []string{"a", "b"}) || cfg.RecentTagCap != 3 {
			t.Errorf("env overrides not applied: %+v", cfg)
		}
	})

	t.Run("scan roots list supersedes single root", func(t *testing.T) {
		t.Setenv("SCAN_ROOT", "single")
		t.Setenv("SCAN_ROOTS", "x,y/")

		cfg, err := ResolveConfig()
		if err != nil {
			t.Fatalf("ResolveConfig() error = %v", err)
		}
		if !reflect.DeepEqual(cfg.ScanRoots, []string{"x/", "y/"}) {
			t.Errorf("ScanRoots = %v, want [x/ y/]", cfg.ScanRoots)
		}
	})
}

func TestResolveConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{name: "missing vault", env: map[string]string{"VAULT_DIR": "/does/not/exist/vault"}},
		{name: "absolute storage path", env: map[string]string{"STORAGE_PATH": "/tmp/media.json"}},
		{name: "storage path escapes vault", env: map[string]string{"STORAGE_PATH": "../media.json"}},
		{name: "zero recent cap", env: map[string]string{"RECENT_TAG_CAP": "0"}},
		{name: "bad port", env: map[string]string{"PORT": "http"}},
		{name: "malformed yaml", file: "scanRoots: [unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			vault := t.TempDir()
			t.Setenv("VAULT_DIR", vault)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.file != "" {
				if err := os.WriteFile(filepath.Join(vault, DefaultConfigFile), []byte(tt.file), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			if _, err := ResolveConfig(); err == nil {
				t.Error("ResolveConfig() error = nil, want error")
			}
		})
	}
}

func TestGetRoutes(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/api/media", func(_ http.ResponseWriter, _ *http.Request) {}).Methods("GET").Name("list")
	router.HandleFunc("/health", func(_ http.ResponseWriter, _ *http.Request) {})

	routes, err := GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes() error = %v", err)
	}
	want := []RouteInfo{
		{Method: "GET", Path: "/api/media", Name: "list"},
		{Method: "*", Path: "/health"},
	}
	if !reflect.DeepEqual(routes, want) {
		t.Errorf("GetRoutes() = %v, want %v", routes, want)
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/media/{id}", "api/media"},
		{"/api/tags", "api/tags"},
		{"/health", "health"},
		{"/", ""},
	}
	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
