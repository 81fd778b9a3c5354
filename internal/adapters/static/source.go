// Package static provides a song source read from a local JSON file.
package static

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ewilliams-labs/songbook/internal/core/domain"
	"github.com/ewilliams-labs/songbook/internal/core/ports"
)

// Source reads the catalog from a JSON array on disk.
type Source struct {
	name string
	path string
}

var _ ports.SongSource = (*Source)(nil)

// NewSource constructs a file-backed source.
func NewSource(name, path string) *Source {
	return &Source{name: name, path: path}
}

// Name identifies the source in logs and load results.
func (s *Source) Name() string {
	return s.name
}

// FetchSongs reads and decodes the file on every call.
func (s *Source) FetchSongs(ctx context.Context) ([]domain.RawSong, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("static: read %s: %w", s.path, err)
	}

	var songs []domain.RawSong
	if err := json.Unmarshal(data, &songs); err != nil {
		return nil, fmt.Errorf("static: decode %s: %w", s.path, err)
	}
	if songs == nil {
		songs = []domain.RawSong{}
	}
	return songs, nil
}
