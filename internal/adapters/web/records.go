package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"inventory-agent/internal/store"
)

// overview returns record counts and sync freshness per resource.
func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetOverview(r.Context())
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

// searchResource returns raw stored records, optionally filtered by ?q=.
func (h *Handler) searchResource(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")
	query := r.URL.Query().Get("q")
	limit := queryInt(r, "limit", 50)

	result, err := h.svc.SearchRecords(r.Context(), resource, query, limit)
	if err != nil {
		if errors.Is(err, store.ErrUnknownResource) {
			writeError(w, r, err.Error(), "UNKNOWN_RESOURCE", http.StatusNotFound)
			return
		}
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

// getResourceItem returns a single stored record by id.
func (h *Handler) getResourceItem(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")
	id := chi.URLParam(r, "id")

	record, err := h.svc.GetRecord(r.Context(), resource, id)
	if err != nil {
		if errors.Is(err, store.ErrUnknownResource) {
			writeError(w, r, err.Error(), "UNKNOWN_RESOURCE", http.StatusNotFound)
			return
		}
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	if record == nil {
		writeError(w, r, "record not found", "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, record)
}

// queryInt parses an integer query parameter, falling back on absence or junk.
func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
