package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"wealthbook/internal/core"

	"github.com/shopspring/decimal"
)

// LedgerStore is the normalized-profile store: users own accounts, assets
// and transactions; referential integrity is enforced by the schema.
type LedgerStore struct {
	db *sql.DB
}

// OpenLedger opens (creating if needed) the ledger-profile database.
func OpenLedger(dbPath string) (*LedgerStore, error) {
	db, err := open(dbPath, ProfileLedger)
	if err != nil {
		return nil, err
	}
	return &LedgerStore{db: db}, nil
}

func (s *LedgerStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Summary aggregates a user's holdings: total account balance plus total
// asset value.
type Summary struct {
	AccountTotal decimal.Decimal
	AssetTotal   decimal.Decimal
}

func (s Summary) Total() decimal.Decimal {
	return s.AccountTotal.Add(s.AssetTotal)
}

// AssetUpdate carries the fields to overwrite on an existing asset.
// Nil fields are left unchanged.
type AssetUpdate struct {
	AccountID     *int64
	Name          *string
	Type          *string
	Value         *decimal.Decimal
	Quantity      *decimal.Decimal
	PurchasePrice *decimal.Decimal
	PurchaseDate  *string
	Currency      *string
}

func (s *LedgerStore) CreateUser(ctx context.Context, u core.User) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, email, role) VALUES (?, ?, ?, ?)`,
		u.Username, u.PasswordHash, nullStr(u.Email), string(u.Role))
	if err != nil {
		return 0, fmt.Errorf("create user: %w", mapErr(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create user id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "id", id, "username", u.Username, "role", u.Role)
	return id, nil
}

func (s *LedgerStore) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, username, password_hash, COALESCE(email, ''), role, created_at
		 FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (s *LedgerStore) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, username, password_hash, COALESCE(email, ''), role, created_at
		 FROM users WHERE user_id = ?`, id)
	return scanUser(row)
}

func (s *LedgerStore) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, username, password_hash, COALESCE(email, ''), role, created_at
		 FROM users ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// DeleteUser removes the user and, through the schema's cascade rules, all
// accounts, assets and transactions the user owns.
func (s *LedgerStore) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", mapErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "User deleted with all owned records", "id", id)
	return nil
}

func (s *LedgerStore) CreateAccount(ctx context.Context, a core.Account) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (user_id, account_name, account_type, balance, currency)
		 VALUES (?, ?, ?, ?, ?)`,
		a.UserID, a.Name, a.Type, a.Balance.String(), a.Currency)
	if err != nil {
		return 0, fmt.Errorf("create account: %w", mapErr(err))
	}
	return res.LastInsertId()
}

func (s *LedgerStore) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT account_id, user_id, account_name, account_type, balance, currency, created_at
		 FROM accounts WHERE account_id = ?`, id)
	return scanAccount(row)
}

func (s *LedgerStore) ListAccounts(ctx context.Context, userID int64) ([]core.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT account_id, user_id, account_name, account_type, balance, currency, created_at
		 FROM accounts WHERE user_id = ? ORDER BY account_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpdateAccountBalance is scoped by owner: another user's account id reads
// as not found.
func (s *LedgerStore) UpdateAccountBalance(ctx context.Context, userID, id int64, balance decimal.Decimal) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET balance = ? WHERE account_id = ? AND user_id = ?`,
		balance.String(), id, userID)
	if err != nil {
		return fmt.Errorf("update account balance: %w", mapErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteAccount removes the user's account; asset and transaction references
// to it are set to null by the schema, the records themselves survive.
func (s *LedgerStore) DeleteAccount(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE account_id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete account: %w", mapErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *LedgerStore) CreateAsset(ctx context.Context, a core.Asset) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO assets (user_id, account_id, name, asset_type, value, quantity,
		                     purchase_price, purchase_date, currency)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, nullID(a.AccountID), a.Name, a.Type,
		a.Value.String(), a.Quantity.String(),
		nullStr(a.PurchasePrice.String()), nullStr(a.PurchaseDate), a.Currency)
	if err != nil {
		return 0, fmt.Errorf("create asset: %w", mapErr(err))
	}
	return res.LastInsertId()
}

func (s *LedgerStore) GetAsset(ctx context.Context, id int64) (core.Asset, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT asset_id, user_id, COALESCE(account_id, 0), name, asset_type, value, quantity,
		        COALESCE(purchase_price, '0'), COALESCE(purchase_date, ''), currency, created_at
		 FROM assets WHERE asset_id = ?`, id)
	return scanAsset(row)
}

func (s *LedgerStore) ListAssets(ctx context.Context, userID int64) ([]core.Asset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT asset_id, user_id, COALESCE(account_id, 0), name, asset_type, value, quantity,
		        COALESCE(purchase_price, '0'), COALESCE(purchase_date, ''), currency, created_at
		 FROM assets WHERE user_id = ? ORDER BY asset_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []core.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// UpdateAsset overwrites the provided fields on the user's asset, leaving
// the rest untouched.
func (s *LedgerStore) UpdateAsset(ctx context.Context, userID, id int64, upd AssetUpdate) error {
	var sets []string
	var args []any
	if upd.AccountID != nil {
		sets = append(sets, "account_id = ?")
		args = append(args, nullID(*upd.AccountID))
	}
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Type != nil {
		sets = append(sets, "asset_type = ?")
		args = append(args, *upd.Type)
	}
	if upd.Value != nil {
		sets = append(sets, "value = ?")
		args = append(args, upd.Value.String())
	}
	if upd.Quantity != nil {
		sets = append(sets, "quantity = ?")
		args = append(args, upd.Quantity.String())
	}
	if upd.PurchasePrice != nil {
		sets = append(sets, "purchase_price = ?")
		args = append(args, upd.PurchasePrice.String())
	}
	if upd.PurchaseDate != nil {
		sets = append(sets, "purchase_date = ?")
		args = append(args, nullStr(*upd.PurchaseDate))
	}
	if upd.Currency != nil {
		sets = append(sets, "currency = ?")
		args = append(args, *upd.Currency)
	}
	if len(sets) == 0 {
		return fmt.Errorf("update asset: no fields to update")
	}

	args = append(args, id, userID)
	query := fmt.Sprintf("UPDATE assets SET %s WHERE asset_id = ? AND user_id = ?", strings.Join(sets, ", "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update asset: %w", mapErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *LedgerStore) DeleteAsset(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM assets WHERE asset_id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete asset: %w", mapErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *LedgerStore) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, account_id, asset_id, transaction_type, amount, description)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.UserID, nullID(t.AccountID), nullID(t.AssetID), t.Type,
		t.Amount.String(), nullStr(t.Description))
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", mapErr(err))
	}
	return res.LastInsertId()
}

// ListTransactions returns the user's transactions newest-first.
func (s *LedgerStore) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT transaction_id, user_id, COALESCE(account_id, 0), COALESCE(asset_id, 0),
		        transaction_type, amount, COALESCE(description, ''), transaction_date
		 FROM transactions WHERE user_id = ?
		 ORDER BY transaction_date DESC, transaction_id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (s *LedgerStore) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE transaction_id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", mapErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// PortfolioSummary totals the user's account balances and asset values.
// Sums run over decimals in Go; both totals are zero for a user with no
// records.
func (s *LedgerStore) PortfolioSummary(ctx context.Context, userID int64) (Summary, error) {
	sum := Summary{AccountTotal: decimal.Zero, AssetTotal: decimal.Zero}

	accounts, err := s.ListAccounts(ctx, userID)
	if err != nil {
		return sum, err
	}
	for _, a := range accounts {
		sum.AccountTotal = sum.AccountTotal.Add(a.Balance)
	}

	assets, err := s.ListAssets(ctx, userID)
	if err != nil {
		return sum, err
	}
	for _, a := range assets {
		sum.AssetTotal = sum.AssetTotal.Add(a.Value)
	}

	return sum, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (core.User, error) {
	var u core.User
	var role, createdAt string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &role, &createdAt); err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", mapErr(err))
	}
	u.Role = core.Role(role)
	u.CreatedAt = parseTimestamp(createdAt)
	return u, nil
}

func scanAccount(row rowScanner) (core.Account, error) {
	var a core.Account
	var balance, createdAt string
	if err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &balance, &a.Currency, &createdAt); err != nil {
		return core.Account{}, fmt.Errorf("scan account: %w", mapErr(err))
	}
	d, err := decimal.NewFromString(balance)
	if err != nil {
		return core.Account{}, fmt.Errorf("scan account balance %q: %w", balance, err)
	}
	a.Balance = d
	a.CreatedAt = parseTimestamp(createdAt)
	return a, nil
}

func scanAsset(row rowScanner) (core.Asset, error) {
	var a core.Asset
	var value, quantity, price, createdAt string
	if err := row.Scan(&a.ID, &a.UserID, &a.AccountID, &a.Name, &a.Type,
		&value, &quantity, &price, &a.PurchaseDate, &a.Currency, &createdAt); err != nil {
		return core.Asset{}, fmt.Errorf("scan asset: %w", mapErr(err))
	}
	var err error
	if a.Value, err = decimal.NewFromString(value); err != nil {
		return core.Asset{}, fmt.Errorf("scan asset value %q: %w", value, err)
	}
	if a.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return core.Asset{}, fmt.Errorf("scan asset quantity %q: %w", quantity, err)
	}
	if a.PurchasePrice, err = decimal.NewFromString(price); err != nil {
		return core.Asset{}, fmt.Errorf("scan asset purchase price %q: %w", price, err)
	}
	a.CreatedAt = parseTimestamp(createdAt)
	return a, nil
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var amount, date string
	if err := row.Scan(&t.ID, &t.UserID, &t.AccountID, &t.AssetID,
		&t.Type, &amount, &t.Description, &date); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", mapErr(err))
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction amount %q: %w", amount, err)
	}
	t.Amount = d
	t.Date = parseTimestamp(date)
	return t, nil
}

// parseTimestamp reads the formats SQLite emits for CURRENT_TIMESTAMP
// defaults. Timestamps are display-only, so an unparseable value degrades
// to the zero time rather than failing the read.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02T15:04:05Z"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
