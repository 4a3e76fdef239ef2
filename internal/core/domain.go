package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

const (
	Stocks      Category = "Stocks"
	MutualFunds Category = "MutualFunds"
	Insurance   Category = "Insurance"
)

type (
	Role string

	// Category is an asset-class bucket in the tracker profile.
	Category string

	User struct {
		ID           int64
		Username     string
		PasswordHash string
		Email        string
		Role         Role
		CreatedAt    time.Time
	}

	Account struct {
		ID        int64
		UserID    int64
		Name      string
		Type      string
		Balance   decimal.Decimal
		Currency  string
		CreatedAt time.Time
	}

	// Asset is a holding owned by a user. AccountID is zero for assets
	// not linked to any account (physical assets).
	Asset struct {
		ID            int64
		UserID        int64
		AccountID     int64
		Name          string
		Type          string
		Value         decimal.Decimal
		Quantity      decimal.Decimal
		PurchasePrice decimal.Decimal
		PurchaseDate  string
		Currency      string
		CreatedAt     time.Time
	}

	// Transaction records a money movement. Amount sign encodes direction
	// by convention: negative for outflows (buys, withdrawals), positive
	// for inflows (deposits). The convention is not enforced.
	Transaction struct {
		ID          int64
		UserID      int64
		AccountID   int64
		AssetID     int64
		Type        string
		Amount      decimal.Decimal
		Description string
		Date        time.Time
	}

	Stock struct {
		ID    int64
		Name  string
		Units decimal.Decimal
		Price decimal.Decimal
	}

	MutualFund struct {
		ID    int64
		Name  string
		Units decimal.Decimal
		Price decimal.Decimal
	}

	// InsurancePolicy is a tracker-profile insurance record. Term is in months.
	InsurancePolicy struct {
		ID      int64
		Name    string
		Premium decimal.Decimal
		Term    int
	}
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")

	ErrEmptyName       = errors.New("empty name")
	ErrEmptyUsername   = errors.New("empty username")
	ErrEmptyPassword   = errors.New("empty password")
	ErrEmptyType       = errors.New("empty type")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidTerm     = errors.New("invalid term")
	ErrUnknownCategory = errors.New("unknown category")
)

// ParseCategory maps a user-entered category name onto a Category.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stock", "stocks":
		return Stocks, nil
	case "mutualfund", "mutualfunds", "mutual fund", "mutual funds":
		return MutualFunds, nil
	case "insurance":
		return Insurance, nil
	}
	return "", ErrUnknownCategory
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return ErrEmptyUsername
	}
	if len(u.Username) > 50 {
		return errors.New("username too long (max 50 characters)")
	}
	if u.PasswordHash == "" {
		return ErrEmptyPassword
	}
	switch u.Role {
	case RoleUser, RoleAdmin:
	default:
		return errors.New("invalid role")
	}
	return nil
}

func (a Account) Validate() error {
	if a.UserID <= 0 {
		return errors.New("missing owner")
	}
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(a.Type) == "" {
		return ErrEmptyType
	}
	if strings.TrimSpace(a.Currency) == "" {
		return errors.New("empty currency")
	}
	return nil
}

func (a Asset) Validate() error {
	if a.UserID <= 0 {
		return errors.New("missing owner")
	}
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(a.Type) == "" {
		return ErrEmptyType
	}
	if a.Value.IsNegative() {
		return ErrInvalidAmount
	}
	if a.Quantity.IsNegative() {
		return ErrInvalidQuantity
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.UserID <= 0 {
		return errors.New("missing owner")
	}
	if strings.TrimSpace(t.Type) == "" {
		return ErrEmptyType
	}
	if t.Amount.IsZero() {
		return ErrInvalidAmount
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (s Stock) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if !s.Units.IsPositive() {
		return ErrInvalidQuantity
	}
	if s.Price.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

func (f MutualFund) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyName
	}
	if !f.Units.IsPositive() {
		return ErrInvalidQuantity
	}
	if f.Price.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

func (p InsurancePolicy) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if !p.Premium.IsPositive() {
		return ErrInvalidAmount
	}
	if p.Term <= 0 {
		return ErrInvalidTerm
	}
	return nil
}
