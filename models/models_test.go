package models

import (
	"testing"

	"github.com/enescc00/b2bsitesibitmis-sub000/pricing"
	"github.com/shopspring/decimal"
)

func TestLedgerEntryHooks_RejectMutation(t *testing.T) {
	var entry LedgerEntry
	if err := entry.BeforeUpdate(nil); err == nil {
		t.Fatal("updating a ledger entry must be rejected")
	}
	if err := entry.BeforeDelete(nil); err == nil {
		t.Fatal("deleting a ledger entry must be rejected")
	}
}

func TestInventoryHistoryHooks_RejectMutation(t *testing.T) {
	var row InventoryHistory
	if err := row.BeforeUpdate(nil); err == nil {
		t.Fatal("updating an inventory history row must be rejected")
	}
	if err := row.BeforeDelete(nil); err == nil {
		t.Fatal("deleting an inventory history row must be rejected")
	}
}

func TestAvailableCredit_SignedBalance(t *testing.T) {
	// owes 500 with a 2000 limit: 1500 left
	c := Customer{
		CreditLimit:           decimal.NewFromInt(2000),
		CurrentAccountBalance: decimal.NewFromInt(-500),
	}
	if got := c.AvailableCredit(); !got.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("expected 1500, got %s", got)
	}

	// in credit: headroom grows past the limit
	c.CurrentAccountBalance = decimal.NewFromInt(300)
	if got := c.AvailableCredit(); !got.Equal(decimal.NewFromInt(2300)) {
		t.Fatalf("expected 2300, got %s", got)
	}
}

func TestToPricingView_FeedsResolver(t *testing.T) {
	list := PriceList{
		GlobalDiscountPercentage: decimal.NewFromInt(5),
		CategoryDiscounts: []*PriceListCategoryDiscount{
			{Category: "ventilation", DiscountPercentage: decimal.NewFromInt(10)},
		},
		ProductPrices: []*PriceListProductPrice{
			{ProductId: 7, Price: decimal.NewFromInt(900)},
		},
	}
	view := list.toPricingView()

	base := decimal.NewFromInt(1000)

	// product override wins and is used verbatim
	if got := pricing.ResolveSalePrice(7, "ventilation", base, view); got.StringFixed(2) != "900.00" {
		t.Fatalf("override price: expected 900.00, got %s", got)
	}
	// category discount beats global
	if got := pricing.ResolveSalePrice(8, "ventilation", base, view); got.StringFixed(2) != "900.00" {
		t.Fatalf("category discount: expected 900.00, got %s", got)
	}
	// global discount as fallback
	if got := pricing.ResolveSalePrice(8, "lighting", base, view); got.StringFixed(2) != "950.00" {
		t.Fatalf("global discount: expected 950.00, got %s", got)
	}
}

func TestEnumValidity(t *testing.T) {
	if !PaymentTermsCash.Valid() || !PaymentTermsCredit.Valid() {
		t.Fatal("known payment terms must be valid")
	}
	if PaymentTerms("net30").Valid() {
		t.Fatal("unknown payment terms must be invalid")
	}
	if !CustomerKindIndividual.Valid() || !CustomerKindCorporate.Valid() {
		t.Fatal("known customer kinds must be valid")
	}
	if CustomerKind("reseller").Valid() {
		t.Fatal("unknown customer kind must be invalid")
	}
	if !ValidCurrencyCode(CurrencyUSD) || ValidCurrencyCode("GBP") {
		t.Fatal("currency code validity mismatch")
	}
	if !ValidPurchaseType(PurchaseTypeTerm) || ValidPurchaseType("installment") {
		t.Fatal("purchase type validity mismatch")
	}
}
