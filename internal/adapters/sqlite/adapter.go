// Package sqlite provides a SQLite-backed song source and catalog import.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/ewilliams-labs/songbook/internal/core/domain"
	"github.com/ewilliams-labs/songbook/internal/core/ports"
)

// Adapter reads and imports songs in a SQLite database.
type Adapter struct {
	db   *sql.DB
	name string
}

var _ ports.SongSource = (*Adapter)(nil)

// NewAdapter opens the database and runs the schema migration.
func NewAdapter(name, storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping db: %w", err)
	}

	// :memory: databases are per connection.
	if storagePath == ":memory:" || strings.Contains(storagePath, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	adapter := &Adapter{db: db, name: name}
	if err := adapter.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

// Name identifies the source in logs and load results.
func (a *Adapter) Name() string {
	return a.name
}

// FetchSongs returns every stored song in import order.
func (a *Adapter) FetchSongs(ctx context.Context) ([]domain.RawSong, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT song_id, title, artist, level, grammar, vocab, theme, youtube_link, notes
		FROM songs
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query songs: %w", err)
	}
	defer rows.Close()

	songs := []domain.RawSong{}
	for rows.Next() {
		var cols [9]sql.NullString
		if err := rows.Scan(&cols[0], &cols[1], &cols[2], &cols[3], &cols[4], &cols[5], &cols[6], &cols[7], &cols[8]); err != nil {
			return nil, fmt.Errorf("sqlite: scan song: %w", err)
		}
		songs = append(songs, domain.RawSong{
			ID:          domain.Cell(cols[0].String),
			Title:       domain.Cell(cols[1].String),
			Artist:      domain.Cell(cols[2].String),
			Level:       domain.Cell(cols[3].String),
			Grammar:     domain.Cell(cols[4].String),
			Vocab:       domain.Cell(cols[5].String),
			Theme:       domain.Cell(cols[6].String),
			YouTubeLink: domain.Cell(cols[7].String),
			Notes:       domain.Cell(cols[8].String),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate songs: %w", err)
	}

	return songs, nil
}

// ImportSongs replaces the stored catalog with songs, keeping their order.
func (a *Adapter) ImportSongs(ctx context.Context, songs []domain.RawSong) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM songs"); err != nil {
		return fmt.Errorf("sqlite: clear songs: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO songs (position, song_id, title, artist, level, grammar, vocab, theme, youtube_link, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, s := range songs {
		if _, err := stmt.ExecContext(
			ctx,
			i,
			nullable(s.ID),
			nullable(s.Title),
			nullable(s.Artist),
			nullable(s.Level),
			nullable(s.Grammar),
			nullable(s.Vocab),
			nullable(s.Theme),
			nullable(s.YouTubeLink),
			nullable(s.Notes),
		); err != nil {
			return fmt.Errorf("sqlite: insert song %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

func nullable(c domain.Cell) sql.NullString {
	return sql.NullString{String: string(c), Valid: c != ""}
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS songs (
		position INTEGER PRIMARY KEY,
		song_id TEXT,
		title TEXT,
		artist TEXT,
		level TEXT,
		grammar TEXT,
		vocab TEXT,
		theme TEXT,
		youtube_link TEXT,
		notes TEXT,
		imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := a.db.Exec(query)
	return err
}
