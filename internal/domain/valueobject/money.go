// Package valueobject contains domain value objects for the back-office system.
package valueobject

import "github.com/shopspring/decimal"

// RoundCents rounds an amount to two decimal places. It is applied only at
// display and aggregation boundaries; internal diffs keep full precision until
// compared against a tolerance.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// AbsDiff returns |a - b| at full precision.
func AbsDiff(a, b decimal.Decimal) decimal.Decimal {
	return a.Sub(b).Abs()
}

// WithinTolerance reports whether |diff| does not exceed the tolerance.
func WithinTolerance(diff, tolerance decimal.Decimal) bool {
	return diff.Abs().LessThanOrEqual(tolerance)
}
