package ports

import (
	"context"

	"github.com/ewilliams-labs/songbook/internal/core/domain"
)

// SongSource delivers the raw song catalog.
type SongSource interface {
	Name() string
	FetchSongs(ctx context.Context) ([]domain.RawSong, error)
}
