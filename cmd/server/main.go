package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/shfq/lovechat-server/internal/app"
	"github.com/shfq/lovechat-server/internal/config"
	"github.com/shfq/lovechat-server/internal/log"
)

func main() {
	// Optional .env for local development; env vars beat the config file.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		overrides  config.Config
	)

	cmd := &cobra.Command{
		Use:           "lovechat-server",
		Short:         "Realtime chat relay with persistent history and image uploads",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bootLog := log.New(overrides.LogLevel)

			cfg, path, err := config.Load(bootLog, configPath)
			if err != nil {
				bootLog.Error().Err(err).Str("path", path).Msg("failed to load config")
				return err
			}
			cfg.UpdateFrom(overrides)

			logger := log.New(cfg.LogLevel)
			logger.Info().Str("config", path).Str("addr", cfg.Addr).Msg("starting lovechat server")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(cfg, logger)
			if err != nil {
				logger.Error().Err(err).Msg("failed to initialize application")
				return err
			}

			if err := application.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("server exited with error")
				return err
			}

			logger.Info().Msg("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	cmd.Flags().StringVar(&overrides.Addr, "addr", "", "HTTP listen address")
	cmd.Flags().StringVar(&overrides.DatabasePath, "db", "", "path to the SQLite database file")
	cmd.Flags().StringVar(&overrides.MediaDir, "media-dir", "", "directory for uploaded images")
	cmd.Flags().StringVar(&overrides.PublicBaseURL, "public-base-url", "", "externally reachable server root for media URLs")
	cmd.Flags().IntVar(&overrides.HistoryLimit, "history-limit", 0, "messages replayed to a newly connected client")
	cmd.Flags().StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")

	return cmd
}
