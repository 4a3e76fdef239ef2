package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"wealthbook/internal/cli"
	"wealthbook/internal/events"
	"wealthbook/internal/storage"
)

// The worker tails the record-change queue and keeps an audit log of every
// write made by wealthbook instances sharing the broker. It verifies that
// created and updated records still exist, which catches a database and
// broker that have drifted apart.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting wealthbook-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if !cfg.EventsEnabled() {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	auditor, err := newAuditor(cfg.Profile, cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open database", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer auditor.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return events.ConsumeWithReconnect(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, auditor.Handle)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("wealthbook-worker stopped")
}

// auditor logs consumed record changes and spot-checks that the record a
// create or update message refers to is present in the store.
type auditor struct {
	ledger  *storage.LedgerStore
	tracker *storage.TrackerStore
}

func newAuditor(profile, dbPath string) (*auditor, error) {
	switch storage.Profile(profile) {
	case storage.ProfileTracker:
		store, err := storage.OpenTracker(dbPath)
		if err != nil {
			return nil, err
		}
		return &auditor{tracker: store}, nil
	default:
		store, err := storage.OpenLedger(dbPath)
		if err != nil {
			return nil, err
		}
		return &auditor{ledger: store}, nil
	}
}

func (a *auditor) Handle(ctx context.Context, msg *events.RecordChange) error {
	slog.InfoContext(ctx, "Record change",
		"profile", msg.Profile,
		"entity", msg.Entity,
		"id", msg.ID,
		"action", msg.Action,
		"timestamp", msg.Timestamp)

	if msg.Action == events.ActionDeleted {
		return nil
	}
	if err := a.verify(ctx, msg); err != nil {
		slog.WarnContext(ctx, "Record referenced by change message not found",
			"entity", msg.Entity, "id", msg.ID, "error", err)
	}
	return nil
}

func (a *auditor) verify(ctx context.Context, msg *events.RecordChange) error {
	switch {
	case a.ledger != nil && msg.Entity == "user":
		_, err := a.ledger.GetUserByID(ctx, msg.ID)
		return err
	case a.ledger != nil && msg.Entity == "account":
		_, err := a.ledger.GetAccount(ctx, msg.ID)
		return err
	case a.ledger != nil && msg.Entity == "asset":
		_, err := a.ledger.GetAsset(ctx, msg.ID)
		return err
	default:
		// Transactions and tracker holdings have no point lookup worth
		// adding just for the audit; the log line is enough.
		return nil
	}
}

func (a *auditor) Close() {
	if a.ledger != nil {
		a.ledger.Close()
	}
	if a.tracker != nil {
		a.tracker.Close()
	}
}
