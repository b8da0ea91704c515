package web

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"inventory-agent/internal/app"
	webui "inventory-agent/web"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc        app.ApplicationService
	router     chi.Router
	logger     *logrus.Logger
	fileServer http.Handler
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, logger *logrus.Logger, allowedOrigins string) http.Handler {
	staticFS, err := fs.Sub(webui.Static, "static")
	if err != nil {
		panic("web/static embed sub-FS failed: " + err.Error())
	}

	h := &Handler{
		svc:        svc,
		logger:     logger,
		fileServer: http.FileServer(http.FS(staticFS)),
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(CORS(allowedOrigins))

	// ── Dashboard ─────────────────────────────────────────────────────────────
	r.Get("/", h.dashboard)
	r.Get("/static/*", func(w http.ResponseWriter, req *http.Request) {
		http.StripPrefix("/static", h.fileServer).ServeHTTP(w, req)
	})

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// ── Raw record access ─────────────────────────────────────────────────────
	r.Get("/api/overview", h.overview)
	r.Get("/api/resource/{resource}", h.searchResource)
	r.Get("/api/resource/{resource}/item/{id}", h.getResourceItem)

	// ── Reports ───────────────────────────────────────────────────────────────
	r.Get("/api/reports/inventory", h.inventoryReport)
	r.Get("/api/reports/inventory.xlsx", h.inventoryReportXLSX)
	// Variant codes contain slashes, so the product id is the URL remainder.
	r.Get("/api/reports/product/*", h.productReport)

	// ── Mutations: 1 MB body limit to prevent unbounded request abuse ─────────
	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB
		r.Post("/api/sync", h.triggerSync)
		r.Post("/api/ask", h.ask)
	})

	h.router = r
	return r
}

// health reports service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// dashboard serves the embedded status page.
func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	index, err := fs.ReadFile(webui.Static, "static/index.html")
	if err != nil {
		writeError(w, r, "dashboard unavailable", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(index)
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
