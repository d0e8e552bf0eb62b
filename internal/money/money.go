// Package money centralizes monetary arithmetic. Amounts are persisted as
// float64 columns, but every computation goes through shopspring/decimal so
// that rounding behaves deterministically at cent precision.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Epsilon is the tolerance used when comparing balances.
const Epsilon = 0.01

// CeilCents rounds a value up to the next cent. Costs always round up,
// never down, to protect margin.
func CeilCents(v float64) float64 {
	d := decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).Ceil()
	f, _ := d.Div(decimal.NewFromInt(100)).Float64()
	return f
}

// RoundCents rounds a value half-up to cent precision.
func RoundCents(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Mul multiplies two amounts at full precision.
func Mul(a, b float64) float64 {
	f, _ := decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).Float64()
	return f
}

// LineCost computes quantity × unitCost rounded up to cents.
func LineCost(quantity, unitCost float64) float64 {
	return CeilCents(Mul(quantity, unitCost))
}

// UnitCost divides a line total by a quantity and rounds up to cents. A
// positive total floors at one cent so a paid-for material never costs
// zero; free-of-charge lines keep a zero cost.
func UnitCost(lineTotal, quantity float64) float64 {
	if quantity <= 0 {
		return 0
	}
	raw := decimal.NewFromFloat(lineTotal).Div(decimal.NewFromFloat(quantity))
	f, _ := raw.Float64()
	c := CeilCents(f)
	if lineTotal > 0 && c < Epsilon {
		return Epsilon
	}
	return c
}

// NormalizeRate interprets a mixed-convention percentage field: values above
// 1 are whole percents (3.5 means 3.5%), values at or below 1 are fractions
// (0.035 means 3.5%). Stored data genuinely mixes both forms.
func NormalizeRate(rate float64) float64 {
	if rate > 1 {
		f, _ := decimal.NewFromFloat(rate).Div(decimal.NewFromInt(100)).Float64()
		return f
	}
	return rate
}

// IsSettled reports whether a remaining balance is close enough to zero to
// be considered paid in full.
func IsSettled(balance float64) bool {
	return balance <= Epsilon
}

// ParseAmount parses a money string tolerating currency symbols, spaces and
// thousand separators ("$1,234.50" → 1234.50). Empty strings parse to zero.
func ParseAmount(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}
