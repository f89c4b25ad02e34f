package pricing

import "github.com/shopspring/decimal"

// AdjustForTerm moves a cost basis from one deferred-payment term to another by
// compounding the monthly interest rate over the month delta:
//
//	adjusted = base * (1 + rate/100)^(target-source)
//
// A negative delta (target shorter than the component's own term) discounts the
// cost. Zero delta or zero rate is the identity. Callers only invoke this for
// vadeli (term) purchases; cash components keep factor 1.
func AdjustForTerm(baseCost decimal.Decimal, sourceTermMonths, targetTermMonths int, monthlyInterestRate decimal.Decimal) decimal.Decimal {
	delta := targetTermMonths - sourceTermMonths
	if delta == 0 || monthlyInterestRate.IsZero() {
		return baseCost
	}

	monthly := decimal.NewFromInt(1).Add(monthlyInterestRate.Div(decimal.NewFromInt(100)))
	months := delta
	if months < 0 {
		months = -months
	}
	factor := decimal.NewFromInt(1)
	for i := 0; i < months; i++ {
		factor = factor.Mul(monthly)
	}

	if delta < 0 {
		return baseCost.Div(factor)
	}
	return baseCost.Mul(factor)
}
