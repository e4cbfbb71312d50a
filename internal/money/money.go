// Package money holds the cent-based arithmetic shared by the generation engine.
// Amounts are int64 minor units; fractional factors go through decimal so that
// rounding is half away from zero on the whole cent.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Epsilon is the reconciliation tolerance in cents (strictly less than one cent).
const Epsilon = 1

var hundred = decimal.NewFromInt(100)

// ApplyRate returns round2(cents * rate).
func ApplyRate(cents int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(cents).Mul(rate).Round(0).IntPart()
}

// Total returns round2(subtotal + subtotal*taxRate + shipping).
func Total(subtotal int64, taxRate decimal.Decimal, shipping int64) int64 {
	return subtotal + ApplyRate(subtotal, taxRate) + shipping
}

// Proportion returns round2(cents * num / den). den must be positive.
func Proportion(cents int64, num, den int64) int64 {
	return decimal.NewFromInt(cents).
		Mul(decimal.NewFromInt(num)).
		DivRound(decimal.NewFromInt(den), 4).
		Round(0).
		IntPart()
}

// Divide returns round2(cents / rate). rate must be non-zero.
func Divide(cents int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(cents).DivRound(rate, 4).Round(0).IntPart()
}

// FloorTo rounds cents down to a multiple of step.
func FloorTo(cents, step int64) int64 {
	if step <= 0 {
		return cents
	}

	return cents - cents%step
}

// Clamp bounds cents to [lo, hi].
func Clamp(cents, lo, hi int64) int64 {
	return max(lo, min(hi, cents))
}

// FromDollars converts a whole currency amount to cents.
func FromDollars(dollars int64) int64 {
	return dollars * 100
}

// Parse reads "1234.56", "1,234.56" or "1234,56" into cents.
func Parse(s string) (int64, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "$")

	// A trailing ",dd" is a decimal comma; otherwise commas are thousand separators.
	if i := strings.LastIndex(clean, ","); i >= 0 && len(clean)-i == 3 && !strings.Contains(clean, ".") {
		clean = clean[:i] + "." + clean[i+1:]
	}

	clean = strings.ReplaceAll(clean, ",", "")

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}

	return d.Mul(hundred).Round(0).IntPart(), nil
}

// Format renders cents as "1,234.56".
func Format(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	whole := fmt.Sprintf("%d", cents/100)

	var sb strings.Builder

	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			sb.WriteByte(',')
		}

		sb.WriteRune(r)
	}

	return fmt.Sprintf("%s%s.%02d", sign, sb.String(), cents%100)
}

// Decimal converts cents to a two-place decimal in currency units.
func Decimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
