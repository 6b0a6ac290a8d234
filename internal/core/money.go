// Package core provides the domain model of the accessory tracker.
//
// This file contains Money helpers: exact cent arithmetic, decimal parsing
// and the JSON number encoding used by the remote store.
package core

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseMoney converts a decimal string to Money with half-up rounding on the
// third decimal place. Both dot (72.80) and comma (72,80) separators are
// accepted. Negative values are rejected; zero is allowed since catalog
// items may be free (reused stock).
//
// Examples:
//
//	ParseMoney("72.80")  -> {7280}
//	ParseMoney("72,8")   -> {7280}
//	ParseMoney("0.005")  -> {1}
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if d.IsNegative() {
		return Money{}, ErrInvalidAmount
	}
	return fromDecimal(d), nil
}

func fromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Mul(hundred).Round(0).IntPart()}
}

func (m Money) decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Times returns m multiplied by a quantity.
func (m Money) Times(qty int) Money {
	return Money{Cents: m.Cents * int64(qty)}
}

// Add returns the sum of m and o.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Reais returns the value as a float64 for display and charts only.
func (m Money) Reais() float64 {
	return float64(m.Cents) / 100.0
}

// String renders the shortest decimal form: 7280 cents is "72.8",
// 14560 is "145.6", 3800 is "38".
func (m Money) String() string {
	return m.decimal().String()
}

// MarshalJSON encodes Money as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string, with the same
// rules as ParseMoney.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Money{}
		return nil
	}
	data = bytes.Trim(data, `"`)
	v, err := ParseMoney(string(data))
	if err != nil {
		return fmt.Errorf("decode money %q: %w", data, err)
	}
	*m = v
	return nil
}
