package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"wealthbook/internal/core"
	"wealthbook/internal/storage"

	"github.com/shopspring/decimal"
)

func newLedgerService(t *testing.T) *LedgerService {
	t.Helper()
	store, err := storage.OpenLedger(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open ledger store: %v", err)
	}
	svc := NewLedgerService(store, nil)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newLedgerService(t)
	ctx := context.Background()

	id, err := svc.Register(ctx, " alice ", "secret123", "alice@example.com", core.RoleUser)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	user, err := svc.Authenticate(ctx, "alice", "secret123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ID != id {
		t.Errorf("id = %d, want %d", user.ID, id)
	}
	// Only a hash is stored, never the password itself.
	if user.PasswordHash == "secret123" || user.PasswordHash == "" {
		t.Errorf("password stored badly: %q", user.PasswordHash)
	}
}

func TestAuthenticate_Failures(t *testing.T) {
	svc := newLedgerService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "secret123", "", core.RoleUser); err != nil {
		t.Fatalf("register: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "nope"},
		{"unknown user", "bob", "secret123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, tt.username, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("got %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newLedgerService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "", "secret123", "", core.RoleUser); !errors.Is(err, core.ErrEmptyUsername) {
		t.Errorf("empty username: got %v", err)
	}
	if _, err := svc.Register(ctx, "alice", "   ", "", core.RoleUser); !errors.Is(err, core.ErrEmptyPassword) {
		t.Errorf("blank password: got %v", err)
	}

	if _, err := svc.Register(ctx, "alice", "secret123", "", core.RoleUser); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "alice", "other", "", core.RoleUser); !errors.Is(err, core.ErrDuplicate) {
		t.Errorf("duplicate username: got %v", err)
	}
}

func TestUpdateAccountBalance_RejectsNegative(t *testing.T) {
	svc := newLedgerService(t)
	ctx := context.Background()

	userID, err := svc.Register(ctx, "alice", "secret123", "", core.RoleUser)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	accountID, err := svc.AddAccount(ctx, core.Account{
		UserID: userID, Name: "Checking", Type: "bank",
		Balance: decimal.NewFromInt(100), Currency: "EUR",
	})
	if err != nil {
		t.Fatalf("add account: %v", err)
	}

	err = svc.UpdateAccountBalance(ctx, userID, accountID, decimal.NewFromInt(-5))
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("got %v, want ErrInvalidAmount", err)
	}

	accounts, err := svc.ListAccounts(ctx, userID)
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if !accounts[0].Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("balance changed to %s", accounts[0].Balance)
	}
}

func TestAddTransaction_Validation(t *testing.T) {
	svc := newLedgerService(t)
	ctx := context.Background()

	userID, err := svc.Register(ctx, "alice", "secret123", "", core.RoleUser)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err = svc.AddTransaction(ctx, core.Transaction{
		UserID: userID, Type: "buy", Amount: decimal.Zero,
	})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("zero amount: got %v, want ErrInvalidAmount", err)
	}

	id, err := svc.AddTransaction(ctx, core.Transaction{
		UserID: userID, Type: "withdrawal", Amount: decimal.RequireFromString("-15.75"),
	})
	if err != nil {
		t.Fatalf("add transaction: %v", err)
	}
	if id <= 0 {
		t.Fatalf("id = %d", id)
	}
}

func seedBuyer(t *testing.T, svc *LedgerService) (userID, accountID, assetID int64) {
	t.Helper()
	ctx := context.Background()

	userID, err := svc.Register(ctx, "alice", "secret123", "", core.RoleUser)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	accountID, err = svc.AddAccount(ctx, core.Account{
		UserID: userID, Name: "Brokerage", Type: "brokerage",
		Balance: decimal.NewFromInt(1000), Currency: "USD",
	})
	if err != nil {
		t.Fatalf("add account: %v", err)
	}
	assetID, err = svc.AddAsset(ctx, core.Asset{
		UserID: userID, Name: "AAPL", Type: "stock",
		Value:    decimal.RequireFromString("1805.00"),
		Quantity: decimal.NewFromInt(10),
		Currency: "USD",
	})
	if err != nil {
		t.Fatalf("add asset: %v", err)
	}
	return userID, accountID, assetID
}

func TestBuyAsset(t *testing.T) {
	svc := newLedgerService(t)
	ctx := context.Background()
	userID, accountID, assetID := seedBuyer(t, svc)

	total, err := svc.BuyAsset(ctx, userID, accountID, assetID,
		decimal.NewFromInt(2), decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("buy asset: %v", err)
	}
	if total.StringFixed(2) != "200.00" {
		t.Errorf("total = %s, want 200.00", total.StringFixed(2))
	}

	accounts, err := svc.ListAccounts(ctx, userID)
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if accounts[0].Balance.StringFixed(2) != "800.00" {
		t.Errorf("balance = %s, want 800.00", accounts[0].Balance.StringFixed(2))
	}

	assets, err := svc.ListAssets(ctx, userID)
	if err != nil {
		t.Fatalf("list assets: %v", err)
	}
	if !assets[0].Quantity.Equal(decimal.NewFromInt(12)) {
		t.Errorf("quantity = %s, want 12", assets[0].Quantity)
	}
	if assets[0].Value.StringFixed(2) != "2005.00" {
		t.Errorf("value = %s, want 2005.00", assets[0].Value.StringFixed(2))
	}

	txs, err := svc.ListTransactions(ctx, userID)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("transaction count = %d, want 1", len(txs))
	}
	if txs[0].Type != "buy" || txs[0].Amount.StringFixed(2) != "-200.00" {
		t.Errorf("buy log = %s %s", txs[0].Type, txs[0].Amount.StringFixed(2))
	}
	if txs[0].AccountID != accountID || txs[0].AssetID != assetID {
		t.Errorf("buy log links = account %d asset %d", txs[0].AccountID, txs[0].AssetID)
	}
}

func TestBuyAsset_InsufficientFunds(t *testing.T) {
	svc := newLedgerService(t)
	ctx := context.Background()
	userID, accountID, assetID := seedBuyer(t, svc)

	// 20 × 100 = 2000 against a 1000 balance.
	_, err := svc.BuyAsset(ctx, userID, accountID, assetID,
		decimal.NewFromInt(20), decimal.NewFromInt(100))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("got %v, want ErrInsufficientFunds", err)
	}

	// Nothing moved.
	accounts, err := svc.ListAccounts(ctx, userID)
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if !accounts[0].Balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("balance changed to %s", accounts[0].Balance)
	}
	assets, err := svc.ListAssets(ctx, userID)
	if err != nil {
		t.Fatalf("list assets: %v", err)
	}
	if !assets[0].Quantity.Equal(decimal.NewFromInt(10)) {
		t.Errorf("quantity changed to %s", assets[0].Quantity)
	}
	txs, err := svc.ListTransactions(ctx, userID)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("transaction logged for rejected purchase: %+v", txs)
	}
}

func TestBuyAsset_OtherUsersRecords(t *testing.T) {
	svc := newLedgerService(t)
	ctx := context.Background()
	_, accountID, assetID := seedBuyer(t, svc)

	bobID, err := svc.Register(ctx, "bob", "secret123", "", core.RoleUser)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err = svc.BuyAsset(ctx, bobID, accountID, assetID,
		decimal.NewFromInt(1), decimal.NewFromInt(1))
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestBuyAsset_InvalidInputs(t *testing.T) {
	svc := newLedgerService(t)
	ctx := context.Background()
	userID, accountID, assetID := seedBuyer(t, svc)

	if _, err := svc.BuyAsset(ctx, userID, accountID, assetID,
		decimal.Zero, decimal.NewFromInt(1)); !errors.Is(err, core.ErrInvalidQuantity) {
		t.Errorf("zero quantity: got %v", err)
	}
	if _, err := svc.BuyAsset(ctx, userID, accountID, assetID,
		decimal.NewFromInt(1), decimal.Zero); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("zero price: got %v", err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	svc := newLedgerService(t)
	ctx := context.Background()

	if err := svc.EnsureAdmin(ctx, "admin", "bootpass"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}

	admin, err := svc.Authenticate(ctx, "admin", "bootpass")
	if err != nil {
		t.Fatalf("authenticate admin: %v", err)
	}
	if admin.Role != core.RoleAdmin {
		t.Errorf("role = %q, want admin", admin.Role)
	}

	// Second call is a no-op and a changed password does not overwrite.
	if err := svc.EnsureAdmin(ctx, "admin", "different"); err != nil {
		t.Fatalf("ensure admin again: %v", err)
	}
	users, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("user count = %d, want 1", len(users))
	}
	if _, err := svc.Authenticate(ctx, "admin", "bootpass"); err != nil {
		t.Errorf("original password stopped working: %v", err)
	}
}
