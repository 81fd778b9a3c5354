package rest

import (
	"net/http"

	"github.com/ewilliams-labs/songbook/internal/core/domain"
)

type songsResponse struct {
	Songs    []songView `json:"songs"`
	Total    int        `json:"total"`
	Source   string     `json:"source"`
	Degraded bool       `json:"degraded"`
}

type reloadResponse struct {
	Source   string `json:"source"`
	Degraded bool   `json:"degraded"`
	Count    int    `json:"count"`
}

// ListSongs handles GET /songs?q=&level=&artist=
func (h *Handler) ListSongs(w http.ResponseWriter, r *http.Request) {
	coll, err := h.catalog.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	query := r.URL.Query()
	criteria := domain.Criteria{
		Search: query.Get("q"),
		Level:  query.Get("level"),
		Artist: query.Get("artist"),
	}

	writeJSON(w, http.StatusOK, songsResponse{
		Songs:    h.songViews(domain.Filter(coll.Songs, criteria)),
		Total:    len(coll.Songs),
		Source:   coll.Source,
		Degraded: coll.Degraded,
	})
}

// GetOptions handles GET /songs/options
func (h *Handler) GetOptions(w http.ResponseWriter, r *http.Request) {
	coll, err := h.catalog.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.DeriveOptions(coll.Songs))
}

// GetSong handles GET /songs/{id}
func (h *Handler) GetSong(w http.ResponseWriter, r *http.Request) {
	coll, err := h.catalog.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	song, ok := domain.FindSong(coll.Songs, r.PathValue("id"))
	if !ok {
		writeServiceError(w, domain.ErrSongNotFound)
		return
	}
	writeJSON(w, http.StatusOK, h.songView(song))
}

// ReloadCatalog handles POST /catalog/reload
func (h *Handler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	coll, err := h.catalog.Refresh(r.Context())
	if err != nil {
		h.log.Warn().Err(err).Str("request_id", RequestID(r.Context())).Msg("catalog reload failed")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{
		Source:   coll.Source,
		Degraded: coll.Degraded,
		Count:    len(coll.Songs),
	})
}
