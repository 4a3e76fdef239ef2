package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"stocks", Stocks, true},
		{"Stocks", Stocks, true},
		{"STOCK", Stocks, true},
		{"mutualfunds", MutualFunds, true},
		{"Mutual Funds", MutualFunds, true},
		{"insurance", Insurance, true},
		{" Insurance ", Insurance, true},
		{"bonds", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseCategory(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("ParseCategory(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
			}
		} else {
			if !errors.Is(err, ErrUnknownCategory) {
				t.Fatalf("ParseCategory(%q) expected ErrUnknownCategory, got %v", tc.in, err)
			}
		}
	}
}

func TestUserValidate(t *testing.T) {
	valid := User{Username: "alice", PasswordHash: "hash", Role: RoleUser}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid user rejected: %v", err)
	}

	tests := []struct {
		name string
		user User
		want error
	}{
		{"empty username", User{PasswordHash: "hash", Role: RoleUser}, ErrEmptyUsername},
		{"blank username", User{Username: "   ", PasswordHash: "hash", Role: RoleUser}, ErrEmptyUsername},
		{"empty password hash", User{Username: "alice", Role: RoleUser}, ErrEmptyPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.user.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	long := valid
	for len(long.Username) <= 50 {
		long.Username += "aaaaaaaaaa"
	}
	if err := long.Validate(); err == nil {
		t.Error("over-long username accepted")
	}

	badRole := valid
	badRole.Role = "root"
	if err := badRole.Validate(); err == nil {
		t.Error("invalid role accepted")
	}
}

func TestAccountValidate(t *testing.T) {
	valid := Account{UserID: 1, Name: "Checking", Type: "bank", Currency: "EUR"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid account rejected: %v", err)
	}

	tests := []struct {
		name    string
		account Account
		want    error
	}{
		{"no owner", Account{Name: "Checking", Type: "bank", Currency: "EUR"}, nil},
		{"empty name", Account{UserID: 1, Type: "bank", Currency: "EUR"}, ErrEmptyName},
		{"empty type", Account{UserID: 1, Name: "Checking", Currency: "EUR"}, ErrEmptyType},
		{"empty currency", Account{UserID: 1, Name: "Checking", Type: "bank"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAssetValidate(t *testing.T) {
	valid := Asset{UserID: 1, Name: "AAPL", Type: "stock",
		Value: decimal.NewFromInt(1805), Quantity: decimal.NewFromInt(10)}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid asset rejected: %v", err)
	}

	negValue := valid
	negValue.Value = decimal.NewFromInt(-1)
	if err := negValue.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative value: got %v, want ErrInvalidAmount", err)
	}

	negQty := valid
	negQty.Quantity = decimal.NewFromInt(-1)
	if err := negQty.Validate(); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("negative quantity: got %v, want ErrInvalidQuantity", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{UserID: 1, Type: "buy", Amount: decimal.NewFromInt(-100)}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid transaction rejected: %v", err)
	}

	zero := valid
	zero.Amount = decimal.Zero
	if err := zero.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount: got %v, want ErrInvalidAmount", err)
	}

	noType := valid
	noType.Type = " "
	if err := noType.Validate(); !errors.Is(err, ErrEmptyType) {
		t.Errorf("blank type: got %v, want ErrEmptyType", err)
	}

	long := valid
	for len(long.Description) <= 200 {
		long.Description += "0123456789"
	}
	if err := long.Validate(); err == nil {
		t.Error("over-long description accepted")
	}
}

func TestHoldingValidate(t *testing.T) {
	stock := Stock{Name: "AAPL", Units: decimal.NewFromInt(10), Price: decimal.RequireFromString("180.50")}
	if err := stock.Validate(); err != nil {
		t.Fatalf("valid stock rejected: %v", err)
	}
	stock.Units = decimal.Zero
	if err := stock.Validate(); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("zero units: got %v, want ErrInvalidQuantity", err)
	}

	fund := MutualFund{Name: "Index", Units: decimal.NewFromInt(2), Price: decimal.NewFromInt(3)}
	if err := fund.Validate(); err != nil {
		t.Fatalf("valid fund rejected: %v", err)
	}
	fund.Name = ""
	if err := fund.Validate(); !errors.Is(err, ErrEmptyName) {
		t.Errorf("empty name: got %v, want ErrEmptyName", err)
	}

	policy := InsurancePolicy{Name: "Life", Premium: decimal.NewFromInt(120), Term: 12}
	if err := policy.Validate(); err != nil {
		t.Fatalf("valid policy rejected: %v", err)
	}
	policy.Term = 0
	if err := policy.Validate(); !errors.Is(err, ErrInvalidTerm) {
		t.Errorf("zero term: got %v, want ErrInvalidTerm", err)
	}
	policy.Term = 12
	policy.Premium = decimal.Zero
	if err := policy.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero premium: got %v, want ErrInvalidAmount", err)
	}
}
