package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"media-catalog/internal/catalog"
	"media-catalog/internal/dimensions"
	"media-catalog/internal/filesystem/vaulttest"
	"media-catalog/internal/handlers"
	"media-catalog/internal/indexer"
	"media-catalog/internal/mediatypes"
	"media-catalog/internal/metrics"
	"media-catalog/internal/model"
	"media-catalog/internal/refs"
	"media-catalog/internal/storage"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestHandlers(t *testing.T) (*handlers.Handlers, *catalog.Index) {
	t.Helper()
	vault := vaulttest.New()
	index := catalog.New(catalog.DefaultConfig())
	store := storage.New(vault, "")
	cache := dimensions.New(dimensions.ProberFunc(func(context.Context, string) (int, int, error) {
		return 100, 100, nil
	}), dimensions.Config{})
	ix := indexer.New(index, cache, vault, store, indexer.Config{})
	return handlers.New(index, ix, store, refs.NewFinder(vault)), index
}

func TestSetupRouter(t *testing.T) {
	h, index := newTestHandlers(t)
	rec := model.NewRecord("a.png", mediatypes.KindImage, time.Now())
	index.Add(rec)
	router := setupRouter(h)

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
	}{
		{"liveness", http.MethodGet, "/livez", http.StatusOK},
		{"list media", http.MethodGet, "/api/media", http.StatusOK},
		{"get media", http.MethodGet, "/api/media/" + rec.ID, http.StatusOK},
		{"missing media", http.MethodGet, "/api/media/nope", http.StatusNotFound},
		{"wrong method", http.MethodPost, "/api/stats", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.target, nil))
			if w.Code != tt.wantStatus {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.target, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestSetupRouterRecordsRouteTemplates(t *testing.T) {
	h, index := newTestHandlers(t)
	rec := model.NewRecord("b.png", mediatypes.KindImage, time.Now())
	index.Add(rec)
	router := setupRouter(h)

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/media/{id}", "200")
	before := testutil.ToFloat64(counter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/media/"+rec.ID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/media/{id} = %d, want 200", w.Code)
	}

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("requests counted under the route template = %v, want 1", got)
	}
}

func TestMetricsRouter(t *testing.T) {
	h, _ := newTestHandlers(t)
	metrics.InitializeMetrics()
	router := metricsRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /metrics = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "media_catalog_records_total") {
		t.Error("metrics output does not include the catalog gauges")
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/media", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("GET /api/media on the metrics router = %d, want 404", w.Code)
	}
}
