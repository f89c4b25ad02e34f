package models

import "github.com/enescc00/b2bsitesibitmis-sub000/pricing"

// Shared with the pure pricing layer so no mapping is needed at the boundary.
type CurrencyCode = pricing.CurrencyCode
type PurchaseType = pricing.PurchaseType

const (
	CurrencyTRY = pricing.CurrencyTRY
	CurrencyUSD = pricing.CurrencyUSD
	CurrencyEUR = pricing.CurrencyEUR

	PurchaseTypeCash = pricing.PurchaseTypeCash
	PurchaseTypeTerm = pricing.PurchaseTypeTerm
)

func ValidCurrencyCode(c CurrencyCode) bool {
	return c == CurrencyTRY || c == CurrencyUSD || c == CurrencyEUR
}

func ValidPurchaseType(p PurchaseType) bool {
	return p == PurchaseTypeCash || p == PurchaseTypeTerm
}

type PaymentTerms string

const (
	PaymentTermsCash   PaymentTerms = "cash"
	PaymentTermsCredit PaymentTerms = "credit"
)

func (w PaymentTerms) Valid() bool {
	return w == PaymentTermsCash || w == PaymentTermsCredit
}

// CustomerKind is a closed variant, not a loose discriminator field: every
// customer is exactly one of these.
type CustomerKind string

const (
	CustomerKindIndividual CustomerKind = "individual"
	CustomerKindCorporate  CustomerKind = "corporate"
)

func (k CustomerKind) Valid() bool {
	return k == CustomerKindIndividual || k == CustomerKindCorporate
}

type LedgerSourceType string

const (
	LedgerSourceOrder      LedgerSourceType = "Order"
	LedgerSourcePayment    LedgerSourceType = "Payment"
	LedgerSourceReturn     LedgerSourceType = "Return"
	LedgerSourceAdjustment LedgerSourceType = "Adjustment"
	LedgerSourceReversal   LedgerSourceType = "Reversal"
)
