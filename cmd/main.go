package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/session"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
	"github.com/urfave/cli/v3"
)

// EnvConfig names the config file to read instead of ./config.toml.
const EnvConfig = "RECIPES_CONFIG"

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	if p, ok := os.LookupEnv(EnvConfig); ok && p != "" {
		configPath = p
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}
	if err := config.ApplyEnv(".env"); err != nil {
		logger.Warn("failed to apply environment", "error", err)
	}
	if err := config.Validate(); err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "recipes",
		Usage:    "Search, cook and plan meals with the recipe service",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := app.Run(ctx, os.Args)
	stop()
	if cerr := runner.Close(); cerr != nil {
		logger.Warn("failed to close database", "error", cerr)
	}

	if err != nil {
		var failure *session.Failure
		switch {
		case errors.Is(err, context.Canceled):
			os.Exit(130)
		case errors.As(err, &failure):
			logger.Error(failure.Message)
			os.Exit(1)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
