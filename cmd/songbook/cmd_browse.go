package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/songbook/internal/core/domain"
)

var (
	levelFlag  string
	artistFlag string
)

// searchCmd filters the catalog
var searchCmd = &cobra.Command{
	Use:   "search [terms]",
	Short: "Search the song catalog",
	Long: `Lists the songs matching every comma-separated search term. Terms match
title, artist, grammar, vocabulary or theme, case-insensitively.

Examples:
  songbook search "past simple, love"
  songbook search --level B1 --artist Adele`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

// optionsCmd lists the filter options
var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the artists and levels available as filters",
	Args:  cobra.NoArgs,
	RunE:  runOptions,
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	coll, err := app.Catalog.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", domain.SourceUnavailableMessage, err)
	}

	criteria := domain.Criteria{Level: levelFlag, Artist: artistFlag}
	if len(args) == 1 {
		criteria.Search = args[0]
	}
	songs := domain.Filter(coll.Songs, criteria)

	out := cmd.OutOrStdout()
	if coll.Degraded {
		fmt.Fprintf(out, "(served from %s)\n", coll.Source)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tARTIST\tLEVEL\tGRAMMAR")
	for _, s := range songs {
		grammar := strings.Join(app.Tags.Split(s.Grammar), "; ")
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Title, s.Artist, s.Level, grammar)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "%d of %d songs\n", len(songs), len(coll.Songs))
	return nil
}

func runOptions(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	coll, err := app.Catalog.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", domain.SourceUnavailableMessage, err)
	}

	opts := domain.DeriveOptions(coll.Songs)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Levels:  %s\n", strings.Join(opts.Levels, ", "))
	fmt.Fprintf(out, "Artists: %s\n", strings.Join(opts.Artists, ", "))
	return nil
}
