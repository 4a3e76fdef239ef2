// Package services orchestrates writes across the store and the optional
// change-notification publisher. One service per schema profile.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"wealthbook/internal/core"
	"wealthbook/internal/events"
	"wealthbook/internal/storage"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when a login fails, without revealing
// whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrInsufficientFunds is returned when a purchase costs more than the
// payment account holds.
var ErrInsufficientFunds = errors.New("insufficient balance")

// LedgerService drives the normalized profile: user registration and
// login, CRUD on accounts, assets and transactions, and the portfolio
// summary.
type LedgerService struct {
	store  *storage.LedgerStore
	events *events.Client
}

func NewLedgerService(store *storage.LedgerStore, eventsClient *events.Client) *LedgerService {
	return &LedgerService{
		store:  store,
		events: eventsClient,
	}
}

// Register creates a user with a bcrypt-hashed password. The source system
// stored passwords in plaintext; that is not preserved.
func (s *LedgerService) Register(ctx context.Context, username, password, email string, role core.Role) (int64, error) {
	if strings.TrimSpace(password) == "" {
		return 0, core.ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	u := core.User{
		Username:     strings.TrimSpace(username),
		PasswordHash: string(hash),
		Email:        strings.TrimSpace(email),
		Role:         role,
	}
	if err := u.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.CreateUser(ctx, u)
	if err != nil {
		return 0, err
	}

	s.publish(ctx, "user", id, events.ActionCreated)
	return id, nil
}

// Authenticate verifies a username/password pair and returns the user.
func (s *LedgerService) Authenticate(ctx context.Context, username, password string) (core.User, error) {
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.User{}, ErrInvalidCredentials
		}
		return core.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return core.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// EnsureAdmin seeds the administrator account on first run. A user that
// already carries the username is left untouched, so the call is idempotent
// and a changed password in the environment does not overwrite the stored
// hash.
func (s *LedgerService) EnsureAdmin(ctx context.Context, username, password string) error {
	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, core.ErrNotFound) {
		return err
	}

	id, err := s.Register(ctx, username, password, "", core.RoleAdmin)
	if err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	slog.InfoContext(ctx, "Admin user created", "id", id, "username", username)
	return nil
}

// DeleteUser removes the user and everything they own.
func (s *LedgerService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, "user", id, events.ActionDeleted)
	return nil
}

func (s *LedgerService) GetUser(ctx context.Context, id int64) (core.User, error) {
	return s.store.GetUserByID(ctx, id)
}

func (s *LedgerService) ListUsers(ctx context.Context) ([]core.User, error) {
	return s.store.ListUsers(ctx)
}

func (s *LedgerService) AddAccount(ctx context.Context, a core.Account) (int64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	id, err := s.store.CreateAccount(ctx, a)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, "account", id, events.ActionCreated)
	return id, nil
}

func (s *LedgerService) ListAccounts(ctx context.Context, userID int64) ([]core.Account, error) {
	return s.store.ListAccounts(ctx, userID)
}

func (s *LedgerService) UpdateAccountBalance(ctx context.Context, userID, id int64, balance decimal.Decimal) error {
	if balance.IsNegative() {
		return core.ErrInvalidAmount
	}
	if err := s.store.UpdateAccountBalance(ctx, userID, id, balance); err != nil {
		return err
	}
	s.publish(ctx, "account", id, events.ActionUpdated)
	return nil
}

func (s *LedgerService) DeleteAccount(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteAccount(ctx, userID, id); err != nil {
		return err
	}
	s.publish(ctx, "account", id, events.ActionDeleted)
	return nil
}

func (s *LedgerService) AddAsset(ctx context.Context, a core.Asset) (int64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	id, err := s.store.CreateAsset(ctx, a)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, "asset", id, events.ActionCreated)
	return id, nil
}

func (s *LedgerService) ListAssets(ctx context.Context, userID int64) ([]core.Asset, error) {
	return s.store.ListAssets(ctx, userID)
}

func (s *LedgerService) UpdateAsset(ctx context.Context, userID, id int64, upd storage.AssetUpdate) error {
	if err := s.store.UpdateAsset(ctx, userID, id, upd); err != nil {
		return err
	}
	s.publish(ctx, "asset", id, events.ActionUpdated)
	return nil
}

func (s *LedgerService) DeleteAsset(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteAsset(ctx, userID, id); err != nil {
		return err
	}
	s.publish(ctx, "asset", id, events.ActionDeleted)
	return nil
}

// BuyAsset purchases quantity units of one of the user's assets at the
// given unit price, paying from one of the user's accounts: the total cost
// is checked against the account balance, deducted from it, added to the
// asset's quantity and value, and logged as a negative-amount buy
// transaction. Records belonging to another user read as not found.
func (s *LedgerService) BuyAsset(ctx context.Context, userID, accountID, assetID int64, quantity, unitPrice decimal.Decimal) (decimal.Decimal, error) {
	if !quantity.IsPositive() {
		return decimal.Zero, core.ErrInvalidQuantity
	}
	if !unitPrice.IsPositive() {
		return decimal.Zero, core.ErrInvalidAmount
	}

	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	if account.UserID != userID {
		return decimal.Zero, core.ErrNotFound
	}

	asset, err := s.store.GetAsset(ctx, assetID)
	if err != nil {
		return decimal.Zero, err
	}
	if asset.UserID != userID {
		return decimal.Zero, core.ErrNotFound
	}

	total := quantity.Mul(unitPrice)
	if total.GreaterThan(account.Balance) {
		return decimal.Zero, ErrInsufficientFunds
	}

	newBalance := account.Balance.Sub(total)
	if err := s.store.UpdateAccountBalance(ctx, userID, accountID, newBalance); err != nil {
		return decimal.Zero, fmt.Errorf("deduct account balance: %w", err)
	}
	s.publish(ctx, "account", accountID, events.ActionUpdated)

	newQuantity := asset.Quantity.Add(quantity)
	newValue := asset.Value.Add(total)
	if err := s.store.UpdateAsset(ctx, userID, assetID, storage.AssetUpdate{
		Quantity: &newQuantity,
		Value:    &newValue,
	}); err != nil {
		return decimal.Zero, fmt.Errorf("update asset holding: %w", err)
	}
	s.publish(ctx, "asset", assetID, events.ActionUpdated)

	txID, err := s.store.CreateTransaction(ctx, core.Transaction{
		UserID:      userID,
		AccountID:   accountID,
		AssetID:     assetID,
		Type:        "buy",
		Amount:      total.Neg(),
		Description: fmt.Sprintf("Bought %s units of %s", quantity.String(), asset.Name),
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("log buy transaction: %w", err)
	}
	s.publish(ctx, "transaction", txID, events.ActionCreated)

	return total, nil
}

func (s *LedgerService) AddTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	id, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, "transaction", id, events.ActionCreated)
	return id, nil
}

func (s *LedgerService) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}
	s.publish(ctx, "transaction", id, events.ActionDeleted)
	return nil
}

func (s *LedgerService) PortfolioSummary(ctx context.Context, userID int64) (storage.Summary, error) {
	return s.store.PortfolioSummary(ctx, userID)
}

// publish sends a change notification if a client is configured. The write
// already succeeded; a publish failure is logged and swallowed.
func (s *LedgerService) publish(ctx context.Context, entity string, id int64, action string) {
	if s.events == nil {
		return
	}
	msg := events.NewRecordChange(string(storage.ProfileLedger), entity, id, action)
	if err := s.events.PublishRecordChange(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record change",
			"entity", entity, "id", id, "action", action, "error", err)
	}
}

// Close closes both the store and the events connection.
func (s *LedgerService) Close() error {
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
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
