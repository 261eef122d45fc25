package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-catalog/internal/catalog"
	"media-catalog/internal/dimensions"
	"media-catalog/internal/filesystem"
	"media-catalog/internal/handlers"
	"media-catalog/internal/indexer"
	"media-catalog/internal/logging"
	"media-catalog/internal/media"
	"media-catalog/internal/metrics"
	"media-catalog/internal/middleware"
	"media-catalog/internal/refs"
	"media-catalog/internal/startup"
	"media-catalog/internal/storage"

	"github.com/gorilla/mux"
)

const (
	shutdownTimeout   = 30 * time.Second
	collectorInterval = time.Minute
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	metrics.InitializeMetrics()
	metrics.AppInfo.WithLabelValues(startup.Version, startup.Commit, startup.GoVersion).Set(1)
	filesystem.SetObserver(metrics.NewFilesystemObserver())

	vault, err := filesystem.NewOSVault(config.VaultDir, filesystem.DefaultRetryConfig())
	if err != nil {
		logging.Fatal("Failed to open vault: %v", err)
	}

	// Load persisted records
	index := catalog.New(catalog.Config{RecentTagCap: config.RecentTagCap})
	store := storage.New(vault, config.StoragePath)
	loadStart := time.Now()
	loadErr := store.Load(index)
	startup.LogStorageInit(index.Len(), time.Since(loadStart), loadErr)

	// Dimension probing
	if config.VipsEnabled {
		if err := media.InitVips(); err != nil {
			logging.Warn("libvips initialization failed: %v", err)
		}
	}
	startup.LogProberInit(config.VipsEnabled, media.IsVipsAvailable())
	cache := dimensions.New(media.NewProber(vault, config.VipsEnabled), dimensions.Config{
		TTL:                config.CacheTTL,
		PreloadConcurrency: config.PreloadConcurrency,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Indexer and watcher
	startup.LogIndexerInit(config.RescanInterval, config.WatchEnabled)
	idx := indexer.New(index, cache, vault, store, indexer.Config{
		ScanRoots:      config.ScanRoots,
		Extensions:     config.Extensions,
		AutoTag:        config.AutoTag,
		DefaultTags:    config.DefaultTags,
		RescanInterval: config.RescanInterval,
	})

	var watcher *filesystem.Watcher
	if config.WatchEnabled {
		watcher, err = filesystem.NewWatcher(vault, filesystem.DefaultRenameWindow)
		if err != nil {
			logging.Warn("File watcher unavailable, relying on periodic rescans: %v", err)
		} else {
			go idx.HandleEvents(ctx, watcher.Events())
		}
	}
	idx.Start(ctx)
	startup.LogIndexerStarted()

	collector := metrics.NewCollector(index, cache, collectorInterval)
	collector.Start()

	h := handlers.New(index, idx, store, refs.NewFinder(vault))
	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           middleware.Logger(loggingConfig)(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = &http.Server{
			Addr:              ":" + config.MetricsPort,
			Handler:           metricsRouter(h),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       30 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		handleShutdown(cancel, srv, metricsSrv, idx, watcher, collector, store, index, config.VipsEnabled)
	}()

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logging.Fatal("Server error: %v", err)
	}
	<-shutdownDone
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
	h.Register(r)
	return r
}

func metricsRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", h.MetricsHandler()).Methods(http.MethodGet)
	return r
}

func handleShutdown(
	cancel context.CancelFunc,
	srv, metricsSrv *http.Server,
	idx *indexer.Indexer,
	watcher *filesystem.Watcher,
	collector *metrics.Collector,
	store *storage.Store,
	index *catalog.Index,
	vipsEnabled bool,
) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancelTimeout := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelTimeout()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		}
	}

	if watcher != nil {
		startup.LogShutdownStep("Closing file watcher")
		if err := watcher.Close(); err != nil {
			logging.Warn("Watcher close error: %v", err)
		}
		startup.LogShutdownStepComplete("File watcher closed")
	}

	startup.LogShutdownStep("Stopping indexer")
	cancel()
	idx.Stop()
	collector.Stop()
	startup.LogShutdownStepComplete("Indexer stopped")

	startup.LogShutdownStep("Saving media data")
	if err := store.Save(index); err != nil {
		logging.Error("Final save failed: %v", err)
	} else {
		startup.LogShutdownStepComplete("Media data saved")
	}

	if vipsEnabled {
		media.ShutdownVips()
	}

	startup.LogShutdownComplete()
}
