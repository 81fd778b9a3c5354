package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/songbook/internal/bootstrap"
	"github.com/ewilliams-labs/songbook/internal/config"
	"github.com/ewilliams-labs/songbook/internal/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool
	timeout    time.Duration

	// Logger
	logger = zerolog.Nop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "songbook",
	Short: "Browse the ESL song catalog from the terminal",
	Long: `songbook loads the song catalog from the configured sources (live endpoint
first, bundled fallback after) and lets you search it, list the filter
options, import it into SQLite and ask for AI lesson insights.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		logger = logging.New(logging.Config{Level: level, Format: "text", Output: cmd.ErrOrStderr()})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("SONGBOOK_CONFIG"), "path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout for the command")

	searchCmd.Flags().StringVar(&levelFlag, "level", "", "exact CEFR level to match")
	searchCmd.Flags().StringVar(&artistFlag, "artist", "", "exact artist to match")
	insightCmd.Flags().BoolVar(&plainOutput, "plain", false, "print the insight without markdown rendering")
	importCmd.Flags().StringVar(&dbPath, "db", "songbook.db", "SQLite database to import into")

	rootCmd.AddCommand(searchCmd, optionsCmd, insightCmd, importCmd)
}

// openApp loads configuration and assembles the catalog for one command.
// ctx bounds source setup, including database connection retries.
func openApp(ctx context.Context) (*bootstrap.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(ctx, cfg, logger)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
