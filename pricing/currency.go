package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Rate struct {
	Buy  decimal.Decimal `json:"buy"`
	Sell decimal.Decimal `json:"sell"`
}

// CurrencyTable holds buy/sell rates quoted against the base currency (TRY).
type CurrencyTable struct {
	rates map[CurrencyCode]Rate
}

func NewCurrencyTable(rates map[CurrencyCode]Rate) CurrencyTable {
	cloned := make(map[CurrencyCode]Rate, len(rates))
	for code, r := range rates {
		cloned[code] = r
	}
	return CurrencyTable{rates: cloned}
}

func (t CurrencyTable) Rate(code CurrencyCode) (Rate, error) {
	r, ok := t.rates[code]
	if !ok {
		return Rate{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
	}
	return r, nil
}

// Convert moves an amount between currencies through the TRY pivot:
// foreign -> TRY multiplies by the source sell rate, TRY -> foreign divides by the
// target buy rate. The buy/sell assignment is the single place this convention
// lives; flip it here if the bank quote direction turns out to be inverted.
// The result is NOT rounded; callers round once at the end of their chain.
func (t CurrencyTable) Convert(amount decimal.Decimal, from, to CurrencyCode) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}

	inBase := amount
	if from != BaseCurrency {
		rate, err := t.Rate(from)
		if err != nil {
			return decimal.Zero, err
		}
		inBase = amount.Mul(rate.Sell)
	}
	if to == BaseCurrency {
		return inBase, nil
	}

	rate, err := t.Rate(to)
	if err != nil {
		return decimal.Zero, err
	}
	if rate.Buy.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: %s has zero buy rate", ErrUnknownCurrency, to)
	}
	return inBase.Div(rate.Buy), nil
}
