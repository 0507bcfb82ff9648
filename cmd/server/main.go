package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/duong2179/slack-hodor/internal/app"
	"github.com/duong2179/slack-hodor/internal/config"
	"github.com/duong2179/slack-hodor/internal/logger"
	"github.com/duong2179/slack-hodor/internal/service"
)

func main() {
	log := logger.New()

	if err := checkArgs(os.Args); err != nil {
		log.Error("Invalid inputs", logger.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log); err != nil {
		log.Error("Application error", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	envPath := getEnvOrDefault("ENV_FILE", ".env")
	infraCfg, err := config.LoadWithFile(envPath)
	if err != nil {
		log.Error("Failed to load infrastructure config", logger.Error(err), logger.F("PATH", envPath))
		return err
	}

	featureCfg, err := service.LoadFeatureConfig(infraCfg.FeatureConfigPath)
	if err != nil {
		log.Error("Failed to load feature config", logger.Error(err), logger.F("PATH", infraCfg.FeatureConfigPath))
		return err
	}

	a := app.New(infraCfg, featureCfg, log)
	if err := a.Initialize(ctx); err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("Failed to close app", logger.Error(err))
		}
	}()

	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("Exited upon signal", logger.Action("shutdown"))
	return nil
}

// checkArgs rejects any positional arguments; all settings come from the
// environment.
func checkArgs(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("unexpected arguments: %v", args[1:])
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
