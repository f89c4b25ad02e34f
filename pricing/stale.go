package pricing

import "github.com/shopspring/decimal"

// DefaultStaleTolerance is the relative divergence above which a stored cost
// basis no longer backs the product's sale price (0.5%).
var DefaultStaleTolerance = decimal.NewFromFloat(0.005)

// IsStale reports whether a freshly rolled-up cost has drifted from the cost
// basis the sale price was derived from. Advisory only: the flag never changes a
// live price, and only an explicit recalculation clears it. The check is
// idempotent over unchanged inputs.
func IsStale(costBasis, freshCost, tolerance decimal.Decimal) bool {
	if costBasis.IsZero() {
		return !freshCost.IsZero()
	}
	diff := freshCost.Sub(costBasis).Abs()
	return diff.Div(costBasis.Abs()).GreaterThan(tolerance)
}
