// Package core holds the domain model of the finance tracker.
//
// Monetary amounts are kept as integer cents. Parsing goes through
// shopspring/decimal so user input never touches binary floating point.
package core

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

type Money struct {
	Cents int64
}

const (
	// MinAmountCents is the smallest amount accepted on a form (0.01).
	MinAmountCents int64 = 1
	// MaxAmountCents is the largest amount accepted on a form (1,000,000.00).
	MaxAmountCents int64 = 1_000_000_00
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrAmountOutOfRange = errors.New("amount out of range")
)

// ParseMoney converts a decimal string to Money.
//
// Both dot (12.34) and comma (12,34) separators are accepted. Digits past the
// second decimal place are rounded half-up. Negative values, exponents and
// anything that is not a plain decimal number are rejected.
//
// Examples:
//
//	ParseMoney("12.34")  -> 1234 cents
//	ParseMoney("12,345") -> 1235 cents
//	ParseMoney("1000")   -> 100000 cents
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.ContainsAny(s, "eE+-_ ") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if cents.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return Money{}, ErrAmountOutOfRange
	}
	return Money{Cents: cents.IntPart()}, nil
}

// Decimal returns the amount as a decimal with two fractional digits.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the amount with exactly two decimals, e.g. "1000.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// Validate checks the amount is within the range accepted for a single entry.
func (m Money) Validate() error {
	if m.Cents < MinAmountCents || m.Cents > MaxAmountCents {
		return ErrAmountOutOfRange
	}
	return nil
}
