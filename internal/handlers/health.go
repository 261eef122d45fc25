package handlers

import (
	"net/http"
	"runtime"

	"media-catalog/internal/indexer"
	"media-catalog/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status            string              `json:"status"`
	Ready             bool                `json:"ready"`
	Version           string              `json:"version"`
	Uptime            string              `json:"uptime"`
	Indexing          bool                `json:"indexing"`
	LastIndexed       string              `json:"lastIndexed,omitempty"`
	LastScan          *indexer.ScanResult `json:"lastScan,omitempty"`
	InitialIndexError string              `json:"initialIndexError,omitempty"`
	Records           int                 `json:"records"`

	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service. It answers 503
// until the initial scan has finished.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	response := HealthResponse{
		Status:       statusHealthy,
		Ready:        true,
		Version:      startup.Version,
		Records:      h.index.Len(),
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	if h.indexer != nil {
		status := h.indexer.GetHealthStatus()
		response.Ready = status.Ready
		response.Uptime = status.Uptime
		response.Indexing = status.Indexing
		response.LastScan = status.LastScan
		if !status.LastIndexed.IsZero() {
			response.LastIndexed = status.LastIndexed.Format("2006-01-02T15:04:05Z07:00")
		}
		if !status.Ready {
			response.Status = statusStarting
		}
		if status.InitialIndexError != "" {
			response.InitialIndexError = status.InitialIndexError
			response.Status = statusDegraded
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if !response.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	writeJSON(w, response)
}

// LivenessCheck always returns 200 while the server is running
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		writeJSONStatus(w, "alive")
	}
}

// ReadinessCheck returns 200 once the initial scan has completed
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if h.indexer != nil && !h.indexer.GetHealthStatus().Ready {
		writeJSONStatusCode(w, "not_ready", http.StatusServiceUnavailable)
		return
	}
	writeJSONStatus(w, "ready")
}
