package handlers

import (
	"net/http"
	"strconv"
)

// GetAllTags returns every distinct tag, sorted.
func (h *Handlers) GetAllTags(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.index.AllTags())
}

// GetPopularTags returns tag usage counts, most used first. The "limit"
// query value caps the list; without it every tag is returned.
func (h *Handlers) GetPopularTags(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		l, err := strconv.Atoi(raw)
		if err != nil || l < 0 {
			writeJSONError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = l
	}
	writeJSON(w, h.index.PopularTags(limit))
}

// GetRecentTags returns the recently used tags, most recent first.
func (h *Handlers) GetRecentTags(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.index.RecentTags())
}
