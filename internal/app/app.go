package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/shfq/lovechat-server/internal/blob"
	"github.com/shfq/lovechat-server/internal/config"
	"github.com/shfq/lovechat-server/internal/core"
	"github.com/shfq/lovechat-server/internal/store"
	"github.com/shfq/lovechat-server/internal/store/sqlite"
	transporthttp "github.com/shfq/lovechat-server/internal/transport/http"
)

// App wires together the relay core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	relay           *core.Relay
	store           store.MessageStore
	log             *zerolog.Logger
}

// New constructs the application with provided configuration. A store that
// fails to initialize is the only startup-fatal condition.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	blobs, err := blob.NewDiskStore(cfg.MediaDir, cfg.PublicBaseURL)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init blob store: %w", err)
	}

	relay := core.NewRelay(st, core.NewRegistry(), logger, cfg.HistoryLimit)
	server := transporthttp.NewServer(relay, st, blobs, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		relay:           relay,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the relay and HTTP server and blocks until context cancellation
// or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.relay.Run(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes the database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
