package pricing

import "github.com/shopspring/decimal"

type CurrencyCode string

const (
	CurrencyTRY CurrencyCode = "TRY"
	CurrencyUSD CurrencyCode = "USD"
	CurrencyEUR CurrencyCode = "EUR"
)

// BaseCurrency is the pivot for all conversions. Rates are quoted against it.
const BaseCurrency = CurrencyTRY

type PurchaseType string

const (
	PurchaseTypeCash PurchaseType = "cash"
	PurchaseTypeTerm PurchaseType = "term"
)

// Config is the explicit snapshot of process-wide pricing settings. Engines never
// read ambient state; callers build one Config per request (models.LoadPricingConfig)
// and pass it down.
type Config struct {
	MonthlyInterestRate   decimal.Decimal
	ShippingFreeThreshold decimal.Decimal
	Rates                 CurrencyTable
}

// Round2 rounds a finished monetary amount to 2 decimal places, half up.
// Applied once at the end of a computation chain, never on intermediates.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
