package balance

import "github.com/shopspring/decimal"

// DefaultTolerance bounds the residual left by share division rounding.
// Divisions carry decimal.DivisionPrecision digits, so any reconciliation
// residual is far below this.
var DefaultTolerance = decimal.New(1, -9)

// AmountEqual checks if two amounts are equal within tolerance.
func AmountEqual(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}
