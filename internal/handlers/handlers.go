package handlers

import (
	"net/http"

	"media-catalog/internal/catalog"
	"media-catalog/internal/indexer"
	"media-catalog/internal/refs"
	"media-catalog/internal/storage"

	"github.com/gorilla/mux"
)

// Handlers serves the catalog JSON API.
type Handlers struct {
	index   *catalog.Index
	indexer *indexer.Indexer
	store   *storage.Store
	refs    *refs.Finder
}

// New creates the API handlers. store may be nil to skip persistence.
func New(index *catalog.Index, ix *indexer.Indexer, store *storage.Store, finder *refs.Finder) *Handlers {
	return &Handlers{
		index:   index,
		indexer: ix,
		store:   store,
		refs:    finder,
	}
}

// Register adds every API route to r.
func (h *Handlers) Register(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// by-path must come before {id}
	api.HandleFunc("/media", h.ListMedia).Methods(http.MethodGet)
	api.HandleFunc("/media/by-path", h.GetMediaByPath).Methods(http.MethodGet)
	api.HandleFunc("/media/{id}", h.GetMedia).Methods(http.MethodGet)
	api.HandleFunc("/media/{id}", h.UpdateMedia).Methods(http.MethodPatch)
	api.HandleFunc("/media/{id}", h.DeleteMedia).Methods(http.MethodDelete)
	api.HandleFunc("/media/{id}/tags", h.SetMediaTags).Methods(http.MethodPut)
	api.HandleFunc("/media/{id}/tags", h.AddMediaTag).Methods(http.MethodPost)
	api.HandleFunc("/media/{id}/tags/{tag}", h.RemoveMediaTag).Methods(http.MethodDelete)
	api.HandleFunc("/media/{id}/references", h.GetMediaReferences).Methods(http.MethodGet)

	api.HandleFunc("/search", h.Search).Methods(http.MethodGet)

	api.HandleFunc("/tags", h.GetAllTags).Methods(http.MethodGet)
	api.HandleFunc("/tags/popular", h.GetPopularTags).Methods(http.MethodGet)
	api.HandleFunc("/tags/recent", h.GetRecentTags).Methods(http.MethodGet)
	api.HandleFunc("/tags/{tag}", h.GetMediaByTag).Methods(http.MethodGet)

	api.HandleFunc("/references", h.GetReferences).Methods(http.MethodGet)
	api.HandleFunc("/stats", h.GetStats).Methods(http.MethodGet)
	api.HandleFunc("/export", h.Export).Methods(http.MethodGet)
	api.HandleFunc("/import", h.Import).Methods(http.MethodPost)
	api.HandleFunc("/rescan", h.Rescan).Methods(http.MethodPost)
}
