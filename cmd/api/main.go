package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ewilliams-labs/songbook/internal/adapters/rest"
	"github.com/ewilliams-labs/songbook/internal/bootstrap"
	"github.com/ewilliams-labs/songbook/internal/config"
	"github.com/ewilliams-labs/songbook/internal/logging"
)

func main() {
	configPath := flag.String("config", os.Getenv("SONGBOOK_CONFIG"), "path to YAML config file")
	flag.Parse()

	// 1. Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback := logging.New(logging.Config{})
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	logging.SetGlobal(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Sources, insight generator and worker pool
	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize songbook")
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error().Err(err).Msg("shutdown cleanup failed")
		}
	}()

	// Warm the catalog so the first session does not pay for the load.
	if coll, err := app.Catalog.Snapshot(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial catalog load failed")
	} else {
		logger.Info().Str("source", coll.Source).Bool("degraded", coll.Degraded).Int("songs", len(coll.Songs)).Msg("catalog loaded")
	}

	go evictIdleSessions(ctx, app, cfg.Server, logger)

	// 3. HTTP interface
	handler := rest.NewHandler(app.Browser, app.Catalog, app.Tags, logger)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	logger.Info().Str("addr", cfg.Server.Addr).Msg("🎶 Songbook API is running")

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		logger.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}
	}
}

func evictIdleSessions(ctx context.Context, app *bootstrap.App, cfg config.ServerConfig, logger zerolog.Logger) {
	if cfg.SessionTTL <= 0 || cfg.EvictInterval <= 0 {
		return
	}
	ticker := time.NewTicker(cfg.EvictInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := app.Browser.EvictIdle(cfg.SessionTTL); n > 0 {
				logger.Debug().Int("sessions", n).Msg("evicted idle sessions")
			}
		}
	}
}
