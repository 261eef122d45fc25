package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// GetReferences lists the notes embedding the media file at "path".
func (h *Handlers) GetReferences(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Query().Get("path")
	if p == "" {
		writeJSONError(w, "Path is required", http.StatusBadRequest)
		return
	}
	h.writeReferences(w, r, p)
}

// GetMediaReferences lists the notes embedding a cataloged record.
func (h *Handlers) GetMediaReferences(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.index.Get(mux.Vars(r)["id"])
	if !ok {
		writeJSONError(w, "Media not found", http.StatusNotFound)
		return
	}
	h.writeReferences(w, r, rec.Path)
}

func (h *Handlers) writeReferences(w http.ResponseWriter, r *http.Request, p string) {
	if h.refs == nil {
		writeJSONError(w, "References are not available", http.StatusServiceUnavailable)
		return
	}
	found, err := h.refs.Find(r.Context(), p)
	if err != nil {
		writeJSONError(w, "Failed to scan notes", http.StatusInternalServerError)
		return
	}
	writeJSON(w, found)
}
