package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/songbook/internal/core/domain"
	"github.com/ewilliams-labs/songbook/internal/core/ports"
	"github.com/ewilliams-labs/songbook/internal/core/services"
)

// --- Mocks ---

type mockSource struct {
	name  string
	songs []domain.RawSong
	err   error
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) FetchSongs(ctx context.Context) ([]domain.RawSong, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.songs, nil
}

type mockDispatcher struct {
	mu   sync.Mutex
	jobs []ports.InsightJob
}

func (m *mockDispatcher) Submit(job ports.InsightJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	return nil
}

func (m *mockDispatcher) last(t *testing.T) ports.InsightJob {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.jobs)
	return m.jobs[len(m.jobs)-1]
}

var testSongs = []domain.RawSong{
	{ID: "1", Title: "Someone Like You", Artist: "Adele", Level: "B1", Grammar: "past simple, used to", YouTubeLink: "https://youtu.be/a"},
	{ID: "2", Title: "Yesterday", Artist: "The Beatles", Level: "A2", Theme: "nostalgia – regret"},
	{ID: "3", Title: "Hello", Artist: "Adele", Level: "B1+"},
}

// newTestHandler builds a real Browser and Catalog over mock adapters.
func newTestHandler(sources ...ports.SongSource) (*Handler, *mockDispatcher) {
	if len(sources) == 0 {
		sources = []ports.SongSource{&mockSource{name: "primary", songs: testSongs}}
	}
	dispatcher := &mockDispatcher{}
	catalog := services.NewCatalog(services.NewLoader(zerolog.Nop(), sources...))
	browser := services.NewBrowser(catalog, dispatcher, zerolog.Nop())
	return NewHandler(browser, catalog, domain.NewTagSplitter(), zerolog.Nop()), dispatcher
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func openSession(t *testing.T, h http.Handler) stateView {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[stateView](t, rec)
}

// --- Tests ---

func TestHandler_HealthCheck(t *testing.T) {
	h, _ := newTestHandler()

	rec := do(t, h, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHandler_RequestIDPropagated(t *testing.T) {
	h, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestHandler_ListSongs(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{name: "no filters", query: "", wantIDs: []string{"1", "2", "3"}},
		{name: "exact level", query: "?level=B1", wantIDs: []string{"1"}},
		{name: "all sentinel", query: "?level=all&artist=Adele", wantIDs: []string{"1", "3"}},
		{name: "search terms are ANDed", query: "?q=adele,hello", wantIDs: []string{"3"}},
		{name: "search matches tags", query: "?q=regret", wantIDs: []string{"2"}},
		{name: "no match", query: "?q=zzz", wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler()

			rec := do(t, h, http.MethodGet, "/songs"+tt.query, "")
			require.Equal(t, http.StatusOK, rec.Code)

			resp := decode[songsResponse](t, rec)
			ids := make([]string, 0, len(resp.Songs))
			for _, s := range resp.Songs {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, 3, resp.Total)
			assert.Equal(t, "primary", resp.Source)
		})
	}
}

func TestHandler_SongViewTags(t *testing.T) {
	h, _ := newTestHandler()

	rec := do(t, h, http.MethodGet, "/songs/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[songView](t, rec)
	assert.Equal(t, []string{"past simple", "used to"}, got.GrammarTags)
	assert.Equal(t, []string{}, got.VocabTags)
	assert.True(t, got.HasVideo)

	rec = do(t, h, http.MethodGet, "/songs/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[songView](t, rec)
	assert.Equal(t, []string{"nostalgia", "regret"}, got.ThemeTags)
	assert.False(t, got.HasVideo)

	rec = do(t, h, http.MethodGet, "/songs/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_GetOptions(t *testing.T) {
	h, _ := newTestHandler()

	rec := do(t, h, http.MethodGet, "/songs/options", "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[domain.Options](t, rec)
	assert.Equal(t, []string{"all", "Adele", "The Beatles"}, got.Artists)
	assert.Equal(t, []string{"all", "A2", "B1", "B1+"}, got.Levels)
}

func TestHandler_CatalogUnavailable(t *testing.T) {
	h, _ := newTestHandler(
		&mockSource{name: "primary", err: errors.New("status 500")},
		&mockSource{name: "fallback", err: errors.New("status 404")},
	)

	for _, path := range []string{"/songs", "/songs/options", "/songs/1"} {
		rec := do(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
		assert.Contains(t, rec.Body.String(), domain.SourceUnavailableMessage, path)
	}

	rec := do(t, h, http.MethodPost, "/catalog/reload", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	// Sessions still open and report the failure in their state.
	view := openSession(t, h)
	assert.Equal(t, domain.SourceUnavailableMessage, view.Error)
	assert.Empty(t, view.Songs)
}

func TestHandler_ReloadCatalogWithFallback(t *testing.T) {
	h, _ := newTestHandler(
		&mockSource{name: "primary", err: errors.New("status 500")},
		&mockSource{name: "fallback", songs: testSongs},
	)

	rec := do(t, h, http.MethodPost, "/catalog/reload", "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[reloadResponse](t, rec)
	assert.Equal(t, reloadResponse{Source: "fallback", Degraded: true, Count: 3}, got)
}

func TestHandler_SessionLifecycle(t *testing.T) {
	h, dispatcher := newTestHandler()

	view := openSession(t, h)
	require.NotEmpty(t, view.ID)
	assert.Len(t, view.Songs, 3)
	assert.Equal(t, domain.DefaultCriteria(), view.Criteria)
	assert.Nil(t, view.Selection)

	base := "/sessions/" + view.ID

	rec := do(t, h, http.MethodPatch, base+"/filters", `{"artist":"Adele"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view = decode[stateView](t, rec)
	assert.Len(t, view.Songs, 2)
	assert.Equal(t, 3, view.Total)

	rec = do(t, h, http.MethodPut, base+"/selection", `{"songId":"1"}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	view = decode[stateView](t, rec)
	require.NotNil(t, view.Selection)
	assert.Equal(t, domain.InsightPending, view.Selection.Insight.Status)

	dispatcher.last(t).Resolve("Teach the past simple.", nil)

	rec = do(t, h, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[stateView](t, rec)
	require.NotNil(t, view.Selection)
	assert.Equal(t, domain.Insight{Status: domain.InsightReady, Text: "Teach the past simple."}, view.Selection.Insight)

	rec = do(t, h, http.MethodDelete, base+"/selection", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[stateView](t, rec).Selection)

	rec = do(t, h, http.MethodPost, base+"/reload", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[stateView](t, rec)
	assert.Equal(t, "Adele", view.Criteria.Artist)

	rec = do(t, h, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_SessionErrors(t *testing.T) {
	h, _ := newTestHandler()
	view := openSession(t, h)
	base := "/sessions/" + view.ID

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		contentType    string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "unknown session",
			method:         http.MethodGet,
			path:           "/sessions/nope",
			expectedStatus: http.StatusNotFound,
			expectedBody:   domain.ErrSessionNotFound.Error(),
		},
		{
			name:           "filters require JSON",
			method:         http.MethodPatch,
			path:           base + "/filters",
			body:           `{"search":"x"}`,
			contentType:    "text/plain",
			expectedStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:           "malformed filters",
			method:         http.MethodPatch,
			path:           base + "/filters",
			body:           `{invalid-json`,
			contentType:    "application/json",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid request body",
		},
		{
			name:           "missing song id",
			method:         http.MethodPut,
			path:           base + "/selection",
			body:           `{}`,
			contentType:    "application/json",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "songId is required",
		},
		{
			name:           "unknown song",
			method:         http.MethodPut,
			path:           base + "/selection",
			body:           `{"songId":"42"}`,
			contentType:    "application/json; charset=utf-8",
			expectedStatus: http.StatusNotFound,
			expectedBody:   domain.ErrSongNotFound.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d, body: %s", tt.expectedStatus, rec.Code, strings.TrimSpace(rec.Body.String()))
			}
			if tt.expectedBody != "" && !strings.Contains(rec.Body.String(), tt.expectedBody) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedBody, rec.Body.String())
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	handler := recovery(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
}
