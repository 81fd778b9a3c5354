package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/ewilliams-labs/songbook/internal/adapters/sqlite"
	"github.com/ewilliams-labs/songbook/internal/adapters/static"
	"github.com/ewilliams-labs/songbook/internal/bootstrap"
	"github.com/ewilliams-labs/songbook/internal/config"
	"github.com/ewilliams-labs/songbook/internal/core/domain"
	"github.com/ewilliams-labs/songbook/internal/core/ports"
)

var dbPath string

// importCmd copies a catalog into SQLite
var importCmd = &cobra.Command{
	Use:   "import [songs.json]",
	Short: "Import the song catalog into a SQLite database",
	Long: `Replaces the songs in the SQLite database with the catalog read from a JSON
file, or from the configured sources when no file is given. Rows are stored
as received so the database can serve as a source itself.

Examples:
  songbook import songs.json --db songbook.db
  songbook import --db songbook.db`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	raws, from, err := fetchForImport(ctx, args)
	if err != nil {
		return err
	}

	adapter, err := sqlite.NewAdapter("sqlite", dbPath)
	if err != nil {
		return err
	}
	defer adapter.Close()

	if err := adapter.ImportSongs(ctx, raws); err != nil {
		return err
	}

	logger.Info().Str("from", from).Str("db", dbPath).Int("songs", len(raws)).Msg("catalog imported")
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d songs from %s into %s\n", len(raws), from, dbPath)
	return nil
}

// fetchForImport reads raw rows from a file argument or the first
// configured source that answers.
func fetchForImport(ctx context.Context, args []string) ([]domain.RawSong, string, error) {
	if len(args) == 1 {
		raws, err := static.NewSource("file", args[0]).FetchSongs(ctx)
		if err != nil {
			return nil, "", err
		}
		return raws, args[0], nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, "", err
	}
	sources, closers, err := bootstrap.OpenSources(ctx, cfg.Sources)
	if err != nil {
		return nil, "", err
	}
	defer func() {
		for _, c := range closers {
			_ = c()
		}
	}()

	return firstAvailable(ctx, sources)
}

// firstAvailable returns the rows of the first source that answers. When
// every source fails the error wraps domain.ErrSourceUnavailable and each
// source's failure.
func firstAvailable(ctx context.Context, sources []ports.SongSource) ([]domain.RawSong, string, error) {
	var failures error
	for _, src := range sources {
		raws, err := src.FetchSongs(ctx)
		if err != nil {
			logger.Warn().Err(err).Str("source", src.Name()).Msg("source failed")
			failures = multierr.Append(failures, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		return raws, src.Name(), nil
	}
	if failures == nil {
		failures = errors.New("no song sources configured")
	}
	return nil, "", fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, failures)
}
