package services

import (
	"context"
	"fmt"
	"log/slog"

	"wealthbook/internal/core"
	"wealthbook/internal/events"
	"wealthbook/internal/storage"

	"github.com/shopspring/decimal"
)

// TrackerService drives the simplified profile: per-category CRUD and the
// aggregate invested total.
type TrackerService struct {
	store  *storage.TrackerStore
	events *events.Client
}

func NewTrackerService(store *storage.TrackerStore, eventsClient *events.Client) *TrackerService {
	return &TrackerService{
		store:  store,
		events: eventsClient,
	}
}

func (s *TrackerService) AddStock(ctx context.Context, st core.Stock) (int64, error) {
	if err := st.Validate(); err != nil {
		return 0, err
	}
	id, err := s.store.AddStock(ctx, st)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, "stock", id, events.ActionCreated)
	return id, nil
}

func (s *TrackerService) ListStocks(ctx context.Context) ([]core.Stock, error) {
	return s.store.ListStocks(ctx)
}

func (s *TrackerService) UpdateStock(ctx context.Context, id int64, upd storage.HoldingUpdate) error {
	if err := s.store.UpdateStock(ctx, id, upd); err != nil {
		return err
	}
	s.publish(ctx, "stock", id, events.ActionUpdated)
	return nil
}

func (s *TrackerService) DeleteStock(ctx context.Context, id int64) error {
	if err := s.store.DeleteStock(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, "stock", id, events.ActionDeleted)
	return nil
}

func (s *TrackerService) AddMutualFund(ctx context.Context, f core.MutualFund) (int64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	id, err := s.store.AddMutualFund(ctx, f)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, "mutual_fund", id, events.ActionCreated)
	return id, nil
}

func (s *TrackerService) ListMutualFunds(ctx context.Context) ([]core.MutualFund, error) {
	return s.store.ListMutualFunds(ctx)
}

func (s *TrackerService) UpdateMutualFund(ctx context.Context, id int64, upd storage.HoldingUpdate) error {
	if err := s.store.UpdateMutualFund(ctx, id, upd); err != nil {
		return err
	}
	s.publish(ctx, "mutual_fund", id, events.ActionUpdated)
	return nil
}

func (s *TrackerService) DeleteMutualFund(ctx context.Context, id int64) error {
	if err := s.store.DeleteMutualFund(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, "mutual_fund", id, events.ActionDeleted)
	return nil
}

func (s *TrackerService) AddInsurance(ctx context.Context, p core.InsurancePolicy) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	id, err := s.store.AddInsurance(ctx, p)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, "insurance", id, events.ActionCreated)
	return id, nil
}

func (s *TrackerService) ListInsurances(ctx context.Context) ([]core.InsurancePolicy, error) {
	return s.store.ListInsurances(ctx)
}

func (s *TrackerService) UpdateInsurance(ctx context.Context, id int64, upd storage.HoldingUpdate) error {
	if err := s.store.UpdateInsurance(ctx, id, upd); err != nil {
		return err
	}
	s.publish(ctx, "insurance", id, events.ActionUpdated)
	return nil
}

func (s *TrackerService) DeleteInsurance(ctx context.Context, id int64) error {
	if err := s.store.DeleteInsurance(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, "insurance", id, events.ActionDeleted)
	return nil
}

func (s *TrackerService) AggregateTotal(ctx context.Context, category core.Category) (decimal.Decimal, error) {
	return s.store.AggregateTotal(ctx, category)
}

func (s *TrackerService) publish(ctx context.Context, entity string, id int64, action string) {
	if s.events == nil {
		return
	}
	msg := events.NewRecordChange(string(storage.ProfileTracker), entity, id, action)
	if err := s.events.PublishRecordChange(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record change",
			"entity", entity, "id", id, "action", action, "error", err)
	}
}

// Close closes both the store and the events connection.
func (s *TrackerService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("events: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close tracker service: %v", errs)
	}

	return nil
}
