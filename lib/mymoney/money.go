package mymoney

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FromMinorUnits converts cents into a major unit amount: 4999 -> 49.99
func FromMinorUnits(amountInCents int64) decimal.Decimal {
	return decimal.New(amountInCents, -2)
}

// Format renders an amount as shown to shoppers, e.g. "EUR 49.99"
func Format(amountInCents int64, currency string) string {
	return strings.ToUpper(currency) + " " + FromMinorUnits(amountInCents).StringFixed(2)
}

// Value renders an amount in the two-decimal notation payment providers expect
func Value(amountInCents int64) string {
	return FromMinorUnits(amountInCents).StringFixed(2)
}

// Percentage returns the given percentage of an amount, rounded to whole cents
func Percentage(amountInCents int64, percentage int64) int64 {
	return decimal.NewFromInt(amountInCents).
		Mul(decimal.NewFromInt(percentage)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// ToMinorUnits parses a two-decimal notation amount into cents: "49.99" -> 4999
func ToMinorUnits(value string) (int64, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("invalid amount '%s': %w", value, err)
	}
	return amount.Shift(2).Round(0).IntPart(), nil
}
