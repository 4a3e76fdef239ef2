// Package core holds the domain entities shared by both schema profiles.
//
// This file contains parsing helpers for monetary amounts and quantities
// entered at the menu prompt.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered decimal string into a Decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Negative values are allowed; transaction amounts use the sign to encode
// direction. Returns ErrInvalidAmount for anything that does not parse.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParsePositiveAmount is ParseAmount restricted to strictly positive values,
// for fields like prices and premiums.
func ParsePositiveAmount(s string) (decimal.Decimal, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseQuantity parses a strictly positive unit count.
func ParseQuantity(s string) (decimal.Decimal, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, ErrInvalidQuantity
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidQuantity
	}
	return d, nil
}

// FormatAmount renders a decimal with two fractional digits for display.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
