package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"wealthbook/internal/cli"
	"wealthbook/internal/menu"
	"wealthbook/internal/services"
	"wealthbook/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting wealthbook")

	cfg := cli.LoadAndValidateConfig(logger)
	eventsClient := cli.InitEvents(logger, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var runErr error
	switch storage.Profile(cfg.Profile) {
	case storage.ProfileTracker:
		store, err := storage.OpenTracker(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open database", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		svc := services.NewTrackerService(store, eventsClient)
		defer closeQuietly(logger, svc.Close)

		runErr = menu.NewTracker(svc, os.Stdin, os.Stdout).Run(ctx)
	default:
		store, err := storage.OpenLedger(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open database", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		svc := services.NewLedgerService(store, eventsClient)
		defer closeQuietly(logger, svc.Close)

		if cfg.AdminPassword != "" {
			if err := svc.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
				logger.Error("Failed to seed admin user", "error", err)
				os.Exit(1)
			}
		}

		runErr = menu.NewLedger(svc, os.Stdin, os.Stdout).Run(ctx)
	}

	if runErr != nil && runErr != context.Canceled {
		logger.Error("Menu loop failed", "error", runErr)
		os.Exit(1)
	}

	logger.Info("wealthbook stopped")
}

func closeQuietly(logger *slog.Logger, close func() error) {
	if err := close(); err != nil {
		logger.Error("Failed to close cleanly", "error", err)
	}
}
