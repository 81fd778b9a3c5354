// Package bootstrap assembles the song catalog, browsing sessions and
// insight pipeline from configuration.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/ewilliams-labs/songbook/internal/adapters/gemini"
	"github.com/ewilliams-labs/songbook/internal/adapters/ollama"
	"github.com/ewilliams-labs/songbook/internal/adapters/postgres"
	"github.com/ewilliams-labs/songbook/internal/adapters/remote"
	"github.com/ewilliams-labs/songbook/internal/adapters/sqlite"
	"github.com/ewilliams-labs/songbook/internal/adapters/static"
	"github.com/ewilliams-labs/songbook/internal/config"
	"github.com/ewilliams-labs/songbook/internal/core/domain"
	"github.com/ewilliams-labs/songbook/internal/core/ports"
	"github.com/ewilliams-labs/songbook/internal/core/services"
	"github.com/ewilliams-labs/songbook/internal/worker"
)

// App holds the wired core services. Close releases everything New opened.
type App struct {
	Catalog   *services.Catalog
	Browser   *services.Browser
	Generator ports.InsightGenerator
	Pool      *worker.Pool
	Tags      domain.TagSplitter

	closers []func() error
}

// New opens every configured source, builds the insight generator and
// starts the worker pool.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*App, error) {
	sources, closers, err := OpenSources(ctx, cfg.Sources)
	if err != nil {
		return nil, err
	}

	gen, err := NewGenerator(ctx, cfg.Insight, log)
	if err != nil {
		_ = closeAll(closers)
		return nil, err
	}

	pool := worker.NewPool(gen, cfg.Insight.QueueSize, cfg.Insight.Timeout, log)
	pool.Start(cfg.Insight.Workers)

	catalog := services.NewCatalog(services.NewLoader(log, sources...))
	app := &App{
		Catalog:   catalog,
		Browser:   services.NewBrowser(catalog, pool, log),
		Generator: gen,
		Pool:      pool,
		Tags:      domain.NewTagSplitter(cfg.Tags.Delimiters...),
		closers:   closers,
	}

	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name())
	}
	log.Info().Strs("sources", names).Str("insight_provider", cfg.Insight.Provider).Int("workers", cfg.Insight.Workers).Msg("songbook assembled")

	return app, nil
}

// Close stops the worker pool and closes database handles.
func (a *App) Close() error {
	a.Pool.Stop()
	return closeAll(a.closers)
}

// OpenSources builds the sources in configured order. The returned closers
// release database handles.
func OpenSources(ctx context.Context, cfgs []config.SourceConfig) ([]ports.SongSource, []func() error, error) {
	sources := make([]ports.SongSource, 0, len(cfgs))
	var closers []func() error

	for _, c := range cfgs {
		switch c.Kind {
		case config.KindHTTP:
			var httpClient *http.Client
			if c.Timeout > 0 {
				httpClient = &http.Client{Timeout: c.Timeout}
			}
			sources = append(sources, remote.NewClient(c.Name, c.URL, httpClient))
		case config.KindFile:
			sources = append(sources, static.NewSource(c.Name, c.Path))
		case config.KindSQLite:
			adapter, err := sqlite.NewAdapter(c.Name, c.Path)
			if err != nil {
				_ = closeAll(closers)
				return nil, nil, fmt.Errorf("bootstrap: source %s: %w", c.Name, err)
			}
			sources = append(sources, adapter)
			closers = append(closers, adapter.Close)
		case config.KindPostgres:
			db, err := postgres.Open(ctx, c.DSN)
			if err != nil {
				_ = closeAll(closers)
				return nil, nil, fmt.Errorf("bootstrap: source %s: %w", c.Name, err)
			}
			sources = append(sources, postgres.NewSource(c.Name, db, c.Limit))
			closers = append(closers, db.Close)
		default:
			_ = closeAll(closers)
			return nil, nil, fmt.Errorf("bootstrap: source %s: unknown kind %q", c.Name, c.Kind)
		}
	}

	return sources, closers, nil
}

// NewGenerator returns the configured insight generator. A Gemini provider
// without an API key falls back to a disabled generator so the catalog
// stays usable.
func NewGenerator(ctx context.Context, cfg config.InsightConfig, log zerolog.Logger) (ports.InsightGenerator, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		if cfg.APIKey == "" {
			log.Warn().Msg("GEMINI_API_KEY is not set; insights are disabled")
			return Disabled{}, nil
		}
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:         cfg.APIKey,
			Model:          cfg.Model,
			ThinkingBudget: cfg.ThinkingBudget,
			BaseURL:        cfg.BaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("bootstrap: %w", err)
		}
		return client, nil
	case config.ProviderOllama:
		return ollama.NewClient(cfg.BaseURL, cfg.Model), nil
	case config.ProviderNone:
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown insight provider %q", cfg.Provider)
	}
}

// ErrInsightsDisabled is returned by Disabled.
var ErrInsightsDisabled = fmt.Errorf("%w: no insight provider configured", domain.ErrInsightFailed)

// Disabled is an InsightGenerator that always fails.
type Disabled struct{}

func (Disabled) GenerateInsight(context.Context, string) (string, error) {
	return "", ErrInsightsDisabled
}

func closeAll(closers []func() error) error {
	var errs error
	for i := len(closers) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, closers[i]())
	}
	if errs != nil {
		return fmt.Errorf("bootstrap: close: %w", errs)
	}
	return nil
}
