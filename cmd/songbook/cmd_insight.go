package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/songbook/internal/core/domain"
)

var plainOutput bool

// insightCmd asks the configured provider for lesson ideas
var insightCmd = &cobra.Command{
	Use:   "insight [song-id]",
	Short: "Generate ESL lesson insights for a song",
	Long: `Builds the lesson prompt for the song and sends it to the configured insight
provider (Gemini or Ollama). The reply is rendered as markdown.

Example:
  songbook insight fallback-3`,
	Args: cobra.ExactArgs(1),
	RunE: runInsight,
}

func runInsight(cmd *cobra.Command, args []string) error {
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

	song, ok := domain.FindSong(coll.Songs, args[0])
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSongNotFound, args[0])
	}

	text, err := app.Generator.GenerateInsight(ctx, domain.BuildInsightPrompt(song))
	if err != nil {
		logger.Debug().Err(err).Str("song", song.ID).Msg("insight generation failed")
		return fmt.Errorf("%s", domain.InsightFailureMessage)
	}

	out := cmd.OutOrStdout()
	doc := fmt.Sprintf("# %s\n_%s_\n\n%s\n", song.Title, song.Artist, text)
	if plainOutput {
		_, err := fmt.Fprint(out, doc)
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	rendered, err := renderer.Render(doc)
	if err != nil {
		return fmt.Errorf("render insight: %w", err)
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}
