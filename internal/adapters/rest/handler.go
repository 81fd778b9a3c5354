package rest

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ewilliams-labs/songbook/internal/core/domain"
	"github.com/ewilliams-labs/songbook/internal/core/services"
)

// Handler manages the HTTP interface for our application.
type Handler struct {
	browser *services.Browser // Session coordinator
	catalog *services.Catalog // Shared song collection
	tags    domain.TagSplitter
	log     zerolog.Logger
	router  *http.ServeMux // Standard library router
	chain   http.Handler
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(browser *services.Browser, catalog *services.Catalog, tags domain.TagSplitter, log zerolog.Logger) *Handler {
	h := &Handler{
		browser: browser,
		catalog: catalog,
		tags:    tags,
		log:     log,
		router:  http.NewServeMux(),
	}

	// Register Routes
	h.routes()
	h.chain = requestLogging(log)(recovery(log)(h.router))

	return h
}

// ServeHTTP satisfies the http.Handler interface.
// Requests pass through logging and recovery before reaching the router.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.chain.ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	// Health Check
	h.router.HandleFunc("GET /health", h.HealthCheck)

	// Catalog
	h.router.HandleFunc("GET /songs", h.ListSongs)
	h.router.HandleFunc("GET /songs/options", h.GetOptions)
	h.router.HandleFunc("GET /songs/{id}", h.GetSong)
	h.router.HandleFunc("POST /catalog/reload", h.ReloadCatalog)

	// Browsing sessions
	h.router.HandleFunc("POST /sessions", h.CreateSession)
	h.router.HandleFunc("GET /sessions/{id}", h.GetSession)
	h.router.HandleFunc("DELETE /sessions/{id}", h.DeleteSession)
	h.router.HandleFunc("PATCH /sessions/{id}/filters", h.UpdateFilters)
	h.router.HandleFunc("PUT /sessions/{id}/selection", h.SelectSong)
	h.router.HandleFunc("DELETE /sessions/{id}/selection", h.CloseSelection)
	h.router.HandleFunc("POST /sessions/{id}/reload", h.ReloadSession)
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Songbook is live 🎶"})
}
