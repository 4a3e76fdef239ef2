// Package cli provides common initialization utilities shared by
// cmd/wealthbook and cmd/wealthbook-worker.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"wealthbook/internal/config"
	"wealthbook/internal/events"
)

// SetupLogger initializes structured logging with default settings.
// Returns the configured logger and sets it as the default logger.
func SetupLogger() *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitEvents connects the optional AMQP change-notification client.
// A missing broker is not fatal for the menu binary: the store is the
// source of truth, so we log and continue without notifications.
func InitEvents(logger *slog.Logger, cfg *config.Config) *events.Client {
	if !cfg.EventsEnabled() {
		return nil
	}
	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Change notifications disabled, broker unreachable", "error", err, "url", cfg.AMQPURL)
		return nil
	}
	logger.Info("Change notifications enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}
