package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"pantry-chef/internal/app"
	"pantry-chef/internal/config"
	"pantry-chef/internal/logging"
)

const name = "pantry-chef"

var (
	// overridden during build with ldflags
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newRootCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:    name,
		Usage:   "Recipe recommendations from the ingredients you have",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error); overrides the config",
			},
		},
		Commands: []*cli.Command{
			serveCmd(),
			searchCmd(),
			suggestCmd(),
			rateCmd(),
			favoriteCmd(),
			clipCmd(),
			healthCmd(),
			pruneCmd(),
		},
	}
}

// loadConfig reads the configuration and initializes logging from it.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	if path := cmd.String("config"); path != "" {
		if err := os.Setenv("CONFIG_PATH", path); err != nil {
			return nil, err
		}
	}
	cfg, err := config.NewFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if level := cmd.String("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	return cfg, nil
}

// withApp builds the application for one command and releases it afterwards.
func withApp(ctx context.Context, cmd *cli.Command, fn func(*app.App) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, cleanup, err := app.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			logging.Warn().Err(err).Msg("Failed to release resources")
		}
	}()
	return fn(a)
}
