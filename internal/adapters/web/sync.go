package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"inventory-agent/internal/store"
)

type syncRequest struct {
	Resource string `json:"resource,omitempty"` // empty = all resources
	Since    string `json:"since,omitempty"`    // RFC3339, overrides the stored cursor
}

type syncResponse struct {
	Status   string `json:"status"`
	Resource string `json:"resource,omitempty"`
}

// triggerSync starts a sync run in the background and returns 202. Sync runs
// can take minutes against large Contifico accounts, so the request never
// waits for completion; progress lands in the logs and in /api/overview.
func (h *Handler) triggerSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
		return
	}

	var since *time.Time
	if req.Since != "" {
		parsed, err := time.Parse(time.RFC3339, req.Since)
		if err != nil {
			writeError(w, r, "since must be RFC3339", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		since = &parsed
	}

	if req.Resource != "" {
		// Validate the resource before detaching so the caller gets a 404
		// instead of a silent background failure.
		if _, err := h.svc.SearchRecords(r.Context(), req.Resource, "", 1); errors.Is(err, store.ErrUnknownResource) {
			writeError(w, r, err.Error(), "UNKNOWN_RESOURCE", http.StatusNotFound)
			return
		}
	}

	resource := req.Resource
	go func() {
		ctx := context.Background()
		if resource != "" {
			if _, err := h.svc.SyncResource(ctx, resource, since); err != nil {
				h.logger.WithError(err).WithField("resource", resource).Error("background sync failed")
			}
			return
		}
		if _, err := h.svc.SyncAll(ctx, since); err != nil {
			h.logger.WithError(err).Error("background sync finished with failures")
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(syncResponse{Status: "sync started", Resource: resource})
}
