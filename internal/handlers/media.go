package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"strconv"

	"media-catalog/internal/catalog"
	"media-catalog/internal/indexer"
	"media-catalog/internal/mediatypes"
	"media-catalog/internal/metrics"
	"media-catalog/internal/model"

	"github.com/gorilla/mux"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// MediaPage is one page of a record listing.
type MediaPage struct {
	Items  []model.MediaRecord `json:"items"`
	Total  int                 `json:"total"`
	Offset int                 `json:"offset"`
	Limit  int                 `json:"limit"`
}

// UpdateRequest changes the editable fields of a record. Nil fields are
// left alone.
type UpdateRequest struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// TagRequest carries a tag list or a single tag.
type TagRequest struct {
	Tag  string   `json:"tag,omitempty"`
	Tags []string `json:"tags,omitempty"`
}

// paginate slices records according to the offset and limit query values.
func paginate(r *http.Request, records []model.MediaRecord) MediaPage {
	limit := defaultPageSize
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = min(l, maxPageSize)
	}
	offset := 0
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o > 0 {
		offset = o
	}

	page := MediaPage{Items: []model.MediaRecord{}, Total: len(records), Offset: offset, Limit: limit}
	if offset < len(records) {
		page.Items = records[offset:min(offset+limit, len(records))]
	}
	return page
}

// filterKind keeps records of the kind named by the "kind" query value.
// It reports false when the value is not a known kind.
func filterKind(r *http.Request, records []model.MediaRecord) ([]model.MediaRecord, bool) {
	raw := r.URL.Query().Get("kind")
	if raw == "" {
		return records, true
	}
	kind, ok := mediatypes.ParseKind(raw)
	if !ok {
		return nil, false
	}
	out := records[:0:0]
	for _, rec := range records {
		if rec.Type == kind {
			out = append(out, rec)
		}
	}
	return out, true
}

// ListMedia returns records in insertion order, optionally filtered by kind.
func (h *Handlers) ListMedia(w http.ResponseWriter, r *http.Request) {
	records, ok := filterKind(r, h.index.All())
	if !ok {
		writeJSONError(w, "Unknown media kind", http.StatusBadRequest)
		return
	}
	writeJSON(w, paginate(r, records))
}

// Search returns records whose title, description or tags contain q.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, paginate(r, nil))
		return
	}

	records, ok := filterKind(r, h.index.Search(query))
	if !ok {
		writeJSONError(w, "Unknown media kind", http.StatusBadRequest)
		return
	}
	writeJSON(w, paginate(r, records))
}

// GetMediaByTag returns records carrying the tag exactly.
func (h *Handlers) GetMediaByTag(w http.ResponseWriter, r *http.Request) {
	records, ok := filterKind(r, h.index.SearchByTag(mux.Vars(r)["tag"]))
	if !ok {
		writeJSONError(w, "Unknown media kind", http.StatusBadRequest)
		return
	}
	writeJSON(w, paginate(r, records))
}

// GetMedia returns one record by id.
func (h *Handlers) GetMedia(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.index.Get(mux.Vars(r)["id"])
	if !ok {
		writeJSONError(w, "Media not found", http.StatusNotFound)
		return
	}
	writeJSON(w, rec)
}

// GetMediaByPath returns the record for a vault path, creating a default
// one for a supported file that has not been cataloged yet.
func (h *Handlers) GetMediaByPath(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Query().Get("path")
	if p == "" {
		writeJSONError(w, "Path is required", http.StatusBadRequest)
		return
	}

	if h.indexer == nil {
		rec, ok := h.index.GetByPath(p)
		if !ok {
			writeJSONError(w, "Media not found", http.StatusNotFound)
			return
		}
		writeJSON(w, rec)
		return
	}

	rec, err := h.indexer.Ensure(r.Context(), p)
	switch {
	case errors.Is(err, indexer.ErrUnsupported):
		writeJSONError(w, "Not a supported media file", http.StatusBadRequest)
		return
	case errors.Is(err, fs.ErrNotExist):
		writeJSONError(w, "Media not found", http.StatusNotFound)
		return
	case err != nil:
		writeJSONError(w, "Failed to load media", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rec)
}

// UpdateMedia applies title, description and tag changes.
func (h *Handlers) UpdateMedia(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req UpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == nil && req.Description == nil && req.Tags == nil {
		writeJSONError(w, "Nothing to update", http.StatusBadRequest)
		return
	}

	var (
		rec model.MediaRecord
		err error
	)
	if req.Title != nil {
		if rec, err = h.index.SetTitle(id, *req.Title); err == nil {
			metrics.CatalogEditsTotal.WithLabelValues("title").Inc()
		}
	}
	if err == nil && req.Description != nil {
		if rec, err = h.index.SetDescription(id, *req.Description); err == nil {
			metrics.CatalogEditsTotal.WithLabelValues("description").Inc()
		}
	}
	if err == nil && req.Tags != nil {
		if rec, err = h.index.SetTags(id, *req.Tags); err == nil {
			metrics.CatalogEditsTotal.WithLabelValues("tags").Inc()
		}
	}

	h.respondEdit(w, rec, err)
}

// respondEdit writes the outcome of an edit and persists successful ones.
func (h *Handlers) respondEdit(w http.ResponseWriter, rec model.MediaRecord, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		writeJSONError(w, "Media not found", http.StatusNotFound)
		return
	}
	if err != nil {
		writeJSONError(w, "Failed to update media", http.StatusInternalServerError)
		return
	}
	if !h.persist(w) {
		return
	}
	writeJSON(w, rec)
}

// SetMediaTags replaces the tags of a record.
func (h *Handlers) SetMediaTags(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rec, err := h.index.SetTags(mux.Vars(r)["id"], req.Tags)
	if err == nil {
		metrics.CatalogEditsTotal.WithLabelValues("tags").Inc()
	}
	h.respondEdit(w, rec, err)
}

// AddMediaTag adds one tag to a record.
func (h *Handlers) AddMediaTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Tag == "" {
		writeJSONError(w, "Tag is required", http.StatusBadRequest)
		return
	}

	rec, err := h.index.AddTag(mux.Vars(r)["id"], req.Tag)
	if err == nil {
		metrics.CatalogEditsTotal.WithLabelValues("tags").Inc()
	}
	h.respondEdit(w, rec, err)
}

// RemoveMediaTag removes one tag from a record.
func (h *Handlers) RemoveMediaTag(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	rec, err := h.index.RemoveTag(vars["id"], vars["tag"])
	if err == nil {
		metrics.CatalogEditsTotal.WithLabelValues("tags").Inc()
	}
	h.respondEdit(w, rec, err)
}

// DeleteMedia removes a record. The file itself is left alone.
func (h *Handlers) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	if !h.index.Remove(mux.Vars(r)["id"]) {
		writeJSONError(w, "Media not found", http.StatusNotFound)
		return
	}
	metrics.IndexerRecordsRemoved.WithLabelValues("api").Inc()

	if !h.persist(w) {
		return
	}
	writeJSONStatus(w, "deleted")
}
