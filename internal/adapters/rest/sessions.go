package rest

import (
	"encoding/json"
	"net/http"

	"github.com/ewilliams-labs/songbook/internal/core/services"
)

type updateFiltersRequest struct {
	Search *string `json:"search"`
	Level  *string `json:"level"`
	Artist *string `json:"artist"`
}

type selectSongRequest struct {
	SongID string `json:"songId"`
}

// CreateSession handles POST /sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, state := h.browser.Open(r.Context())
	writeJSON(w, http.StatusCreated, h.stateView(id, state))
}

// GetSession handles GET /sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	state, err := h.browser.State(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.stateView(id, state))
}

// DeleteSession handles DELETE /sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.browser.Remove(r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateFilters handles PATCH /sessions/{id}/filters
func (h *Handler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req updateFiltersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := r.PathValue("id")
	state, err := h.browser.UpdateCriteria(id, services.CriteriaPatch{
		Search: req.Search,
		Level:  req.Level,
		Artist: req.Artist,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.stateView(id, state))
}

// SelectSong handles PUT /sessions/{id}/selection
// The insight is generated in the background; poll the session for it.
func (h *Handler) SelectSong(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req selectSongRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SongID == "" {
		writeError(w, http.StatusBadRequest, "songId is required")
		return
	}

	id := r.PathValue("id")
	state, err := h.browser.Select(id, req.SongID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, h.stateView(id, state))
}

// CloseSelection handles DELETE /sessions/{id}/selection
func (h *Handler) CloseSelection(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	state, err := h.browser.CloseSelection(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.stateView(id, state))
}

// ReloadSession handles POST /sessions/{id}/reload
func (h *Handler) ReloadSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	state, err := h.browser.Reload(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.stateView(id, state))
}
