// Package money wraps shopspring/decimal with the rounding and formatting
// conventions of EN 16931: monetary amounts carry exactly two fractional
// digits, quantities up to four with trailing zeros stripped, and rounding
// is half-up.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is decimal zero.
var Zero = decimal.Zero

// Hundred is the percentage divisor.
var Hundred = decimal.NewFromInt(100)

// One is decimal one.
var One = decimal.NewFromInt(1)

// FromFloat creates a decimal from a float without rounding.
func FromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// FromString parses a decimal from a string.
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}

// MustFromString parses a decimal from a string, panics on error.
func MustFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Round2 rounds to two fractional digits, half away from zero. For the
// non-negative values invoices carry this is round-half-up.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatAmount renders a monetary amount with exactly two fractional
// digits after half-up rounding.
func FormatAmount(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

// FormatQuantity renders a quantity with up to four fractional digits,
// trailing zeros stripped.
func FormatQuantity(d decimal.Decimal) string {
	return stripTrailingZeros(d.Round(4).StringFixed(4))
}

// FormatRate renders a percentage rate with trailing zeros stripped, so a
// 19.00 rate prints as "19" and 7.5 as "7.5".
func FormatRate(d decimal.Decimal) string {
	return stripTrailingZeros(d.Round(4).StringFixed(4))
}

// Sum adds up a slice of decimals.
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// WithinHalfCent reports whether two amounts differ by at most 0.005, the
// tolerance used by the arithmetic invariants.
func WithinHalfCent(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(decimal.New(5, -3))
}

func stripTrailingZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
