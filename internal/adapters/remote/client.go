// Package remote provides a song source backed by an HTTP endpoint that
// serves the catalog as a JSON array.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ewilliams-labs/songbook/internal/core/domain"
	"github.com/ewilliams-labs/songbook/internal/core/ports"
)

const defaultTimeout = 20 * time.Second

// Client fetches the song catalog over HTTP.
type Client struct {
	name       string
	url        string
	httpClient *http.Client
}

// compile-time interface assertion
var _ ports.SongSource = (*Client)(nil)

// NewClient constructs a source named name that GETs url.
func NewClient(name, url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		name:       name,
		url:        strings.TrimSpace(url),
		httpClient: httpClient,
	}
}

// Name identifies the source in logs and load results.
func (c *Client) Name() string {
	return c.name
}

// FetchSongs retrieves and decodes the catalog. Any non-2xx status is an error.
func (c *Client) FetchSongs(ctx context.Context) ([]domain.RawSong, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("remote: unexpected status %d", resp.StatusCode)
	}

	var songs []domain.RawSong
	if err := json.NewDecoder(resp.Body).Decode(&songs); err != nil {
		return nil, fmt.Errorf("remote: decode songs: %w", err)
	}
	if songs == nil {
		songs = []domain.RawSong{}
	}
	return songs, nil
}
