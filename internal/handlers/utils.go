package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"media-catalog/internal/logging"
)

// Limit on JSON request bodies; imports may carry a whole catalog.
const maxBodyBytes = 32 << 20

// writeJSON encodes v as JSON and writes it to the response writer.
// Encoding errors are logged since the status line is already sent.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"error": message})
}

// writeJSONStatus writes a simple status response as JSON.
func writeJSONStatus(w http.ResponseWriter, status string) {
	writeJSON(w, map[string]string{"status": status})
}

// writeJSONStatusCode writes a status response with a non-200 code.
func writeJSONStatusCode(w http.ResponseWriter, status string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"status": status})
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}

// persist saves the index after an API change. A failed save keeps the
// in-memory change and is reported to the caller.
func (h *Handlers) persist(w http.ResponseWriter) bool {
	if h.store == nil {
		return true
	}
	if err := h.store.Save(h.index); err != nil {
		writeJSONError(w, "Change applied but could not be saved", http.StatusInternalServerError)
		return false
	}
	return true
}
