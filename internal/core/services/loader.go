package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"

	"github.com/ewilliams-labs/songbook/internal/core/domain"
	"github.com/ewilliams-labs/songbook/internal/core/ports"
)

// Loader fetches the catalog from an ordered list of sources. The first
// source that succeeds wins; later sources are only tried on failure.
type Loader struct {
	sources []ports.SongSource
	log     zerolog.Logger
	group   singleflight.Group
}

// NewLoader constructs a Loader over sources in priority order.
func NewLoader(log zerolog.Logger, sources ...ports.SongSource) *Loader {
	return &Loader{
		sources: sources,
		log:     log.With().Str("component", "loader").Logger(),
	}
}

// Load returns the normalized collection from the first healthy source.
// Concurrent calls share a single fetch. The shared fetch is detached from
// any one caller's cancellation; a caller whose ctx ends stops waiting and
// gets ctx.Err(). When every source fails the error wraps
// domain.ErrSourceUnavailable.
func (l *Loader) Load(ctx context.Context) (domain.Collection, error) {
	ch := l.group.DoChan("catalog", func() (any, error) {
		return l.load(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return domain.Collection{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Collection{}, res.Err
		}
		return res.Val.(domain.Collection), nil
	}
}

func (l *Loader) load(ctx context.Context) (domain.Collection, error) {
	var failures error
	for i, src := range l.sources {
		raws, err := src.FetchSongs(ctx)
		if err == nil {
			songs := domain.Normalize(raws)
			l.log.Info().Str("source", src.Name()).Int("songs", len(songs)).Bool("degraded", i > 0).Msg("catalog loaded")
			return domain.Collection{Songs: songs, Source: src.Name(), Degraded: i > 0}, nil
		}

		l.log.Warn().Err(err).Str("source", src.Name()).Msg("song source failed")
		failures = multierr.Append(failures, fmt.Errorf("%s: %w", src.Name(), err))
	}

	if failures == nil {
		failures = fmt.Errorf("no song sources configured")
	}
	return domain.Collection{}, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, failures)
}
