package web

import (
	"net/http"
	"strings"
)

type askRequest struct {
	Question string `json:"question"`
}

// ask routes a natural language question through the insights agent.
func (h *Handler) ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, r, "question is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	insight, err := h.svc.AskInventoryQuestion(r.Context(), req.Question)
	if err != nil {
		writeError(w, r, err.Error(), "AI_ERROR", http.StatusBadGateway)
		return
	}
	writeJSON(w, insight)
}
