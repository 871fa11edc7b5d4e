package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tunebook/internal/shared"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	configPath := defaultConfigPath
	if p, ok := os.LookupEnv("TUNEBOOK_CONFIG"); ok && p != "" {
		configPath = p
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
		config = shared.DefaultConfig()
		config.ApplyEnv(os.LookupEnv)
	}

	if err := config.Validate(); err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:    "tunebook",
		Usage:   "Keep a library of tunes and the recordings you learn them from",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") {
				shared.SetLogLevel(logger, log.DebugLevel)
			}
			return ctx, nil
		},
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Error("application error", "error", err)
		runner.Close()
		os.Exit(1)
	}
}
