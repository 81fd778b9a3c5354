// Package postgres reads the song catalog from a PostgreSQL database.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ewilliams-labs/songbook/internal/core/domain"
	"github.com/ewilliams-labs/songbook/internal/core/ports"
)

// Open establishes a database connection and retries until the instance
// responds, ctx ends or the retry window closes.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open database: %w", err)
	}

	const (
		pingTimeout    = 5 * time.Second
		maxWait        = 30 * time.Second
		initialBackoff = 500 * time.Millisecond
		maxBackoff     = 5 * time.Second
	)

	deadline := time.Now().Add(maxWait)
	backoff := initialBackoff
	var lastErr error

	for {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = db.PingContext(pingCtx)
		cancel()

		if lastErr == nil {
			return db, nil
		}

		if ctx.Err() != nil || time.Now().After(deadline) {
			break
		}

		select {
		case <-ctx.Done():
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	_ = db.Close()
	return nil, fmt.Errorf("postgres: ping database: %w", lastErr)
}

// Source serves songs from the songs table. Rows may be limited per load.
type Source struct {
	name  string
	db    *sql.DB
	limit int
}

var _ ports.SongSource = (*Source)(nil)

// NewSource wraps an open database. A limit of zero reads every row.
func NewSource(name string, db *sql.DB, limit int) *Source {
	return &Source{name: name, db: db, limit: limit}
}

func (s *Source) Name() string { return s.name }

// FetchSongs reads the catalog ordered by position.
func (s *Source) FetchSongs(ctx context.Context) ([]domain.RawSong, error) {
	const query = `
		SELECT song_id, title, artist, level, grammar, vocab, theme, youtube_link, notes
		FROM songs
		ORDER BY position ASC
		LIMIT $1
	`

	var limit any // NULL means no limit
	if s.limit > 0 {
		limit = s.limit
	}

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: query songs: %w", err)
	}
	defer rows.Close()

	songs := []domain.RawSong{}
	for rows.Next() {
		var id, title, artist, level, grammar, vocab, theme, link, notes sql.NullString
		if err := rows.Scan(&id, &title, &artist, &level, &grammar, &vocab, &theme, &link, &notes); err != nil {
			return nil, fmt.Errorf("postgres: scan song: %w", err)
		}
		songs = append(songs, domain.RawSong{
			ID:          domain.Cell(id.String),
			Title:       domain.Cell(title.String),
			Artist:      domain.Cell(artist.String),
			Level:       domain.Cell(level.String),
			Grammar:     domain.Cell(grammar.String),
			Vocab:       domain.Cell(vocab.String),
			Theme:       domain.Cell(theme.String),
			YouTubeLink: domain.Cell(link.String),
			Notes:       domain.Cell(notes.String),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate songs: %w", err)
	}

	return songs, nil
}
