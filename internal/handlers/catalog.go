package handlers

import (
	"errors"
	"io"
	"net/http"

	"media-catalog/internal/catalog"
	"media-catalog/internal/logging"
)

// ImportResponse reports how many records an import loaded.
type ImportResponse struct {
	Imported int `json:"imported"`
}

// Export returns the whole catalog as the persisted JSON array.
func (h *Handlers) Export(w http.ResponseWriter, _ *http.Request) {
	data, err := h.index.ExportJSON()
	if err != nil {
		writeJSONError(w, "Failed to export media data", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="media-data.json"`)
	if _, err := w.Write(data); err != nil {
		logging.Error("failed to write export: %v", err)
	}
}

// Import replaces the catalog with the JSON array in the request body.
// Legacy records without a type are migrated. A body that cannot be parsed
// leaves the catalog untouched.
func (h *Handlers) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSONError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	n, err := h.index.ImportJSON(data)
	var parseErr *catalog.ParseError
	if errors.As(err, &parseErr) {
		writeJSONError(w, parseErr.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		writeJSONError(w, "Failed to import media data", http.StatusInternalServerError)
		return
	}

	logging.Info("Imported %d media records", n)
	if !h.persist(w) {
		return
	}
	writeJSON(w, ImportResponse{Imported: n})
}

// Rescan starts a full vault scan in the background.
func (h *Handlers) Rescan(w http.ResponseWriter, r *http.Request) {
	if h.indexer == nil {
		writeJSONError(w, "Scanning is not available", http.StatusServiceUnavailable)
		return
	}
	if h.indexer.IsIndexing() {
		writeJSONStatusCode(w, "already_running", http.StatusAccepted)
		return
	}

	h.indexer.TriggerIndex(r.Context())
	writeJSONStatusCode(w, "started", http.StatusAccepted)
}

// GetStats returns catalog counts.
func (h *Handlers) GetStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.index.Stats())
}
