package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"pantry-chef/internal/api"
	"pantry-chef/internal/app"
	"pantry-chef/internal/logging"
	"pantry-chef/internal/telegram"
)

const (
	retentionDays = 30
	pruneInterval = 24 * time.Hour
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API and, when enabled, the Telegram bot",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, cleanup, err := app.Build(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := cleanup(); err != nil {
					logging.Warn().Err(err).Msg("Failed to release resources")
				}
			}()

			var (
				opts []api.Option
				bot  *telegram.Bot
			)
			if cfg.Telegram.Enabled {
				botAPI, err := telegram.Connect(cfg.Telegram)
				if err != nil {
					return err
				}
				bot = telegram.NewBot(botAPI, a, cfg.Telegram.AllowedUserIDs)
				opts = append(opts, api.WithTelegramWebhook(telegram.WebhookPath, bot))
			}

			logging.Info().
				Str("version", version).
				Str("addr", cfg.Server.Addr()).
				Bool("telegram", cfg.Telegram.Enabled).
				Str("app", a.String()).
				Msg("Starting pantry-chef")

			server := api.NewServer(a, opts...)
			g, gctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				return server.Start(gctx)
			})
			g.Go(func() error {
				pruneLoop(gctx, a)
				return nil
			})
			if bot != nil {
				g.Go(func() error {
					<-gctx.Done()
					bot.Wait()
					return nil
				})
			}

			if err := g.Wait(); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logging.Info().Msg("Server stopped gracefully")
			return nil
		},
	}
}

// pruneLoop trims the recognition call log once a day until ctx is done.
func pruneLoop(ctx context.Context, a *app.App) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		removed, err := a.PruneRecognitionCalls(ctx, retentionDays)
		if err != nil {
			logging.Warn().Err(err).Msg("Failed to prune recognition calls")
		} else if removed > 0 {
			logging.Info().Int64("removed", removed).Msg("Pruned recognition calls")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
