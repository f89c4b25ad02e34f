package pricing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/enescc00/b2bsitesibitmis-sub000/pricing"
	"github.com/shopspring/decimal"
)

func testEngine() pricing.CostRollupEngine {
	return pricing.CostRollupEngine{
		Items: pricing.MapItemSource{
			1: {
				UnitPrice:    decimal.NewFromInt(100),
				Currency:     pricing.CurrencyTRY,
				PurchaseType: pricing.PurchaseTypeCash,
			},
			2: {
				UnitPrice:    decimal.NewFromInt(10),
				Currency:     pricing.CurrencyUSD,
				PurchaseType: pricing.PurchaseTypeTerm,
				TermMonths:   3,
			},
			3: {
				UnitPrice:    decimal.NewFromFloat(7.25),
				Currency:     pricing.CurrencyEUR,
				PurchaseType: pricing.PurchaseTypeCash,
			},
		},
		Config: pricing.Config{
			MonthlyInterestRate: decimal.NewFromInt(2),
			Rates:               testRates(),
		},
	}
}

func TestRollup_CashComponentInTRY(t *testing.T) {
	engine := testEngine()
	// 100 TRY cash x 2, target term irrelevant for cash
	got, err := engine.Rollup(context.Background(), []pricing.ComponentLine{{InventoryItemId: 1, Quantity: 2}}, pricing.CurrencyTRY, 9)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "200.00" {
		t.Fatalf("expected 200.00, got %s", got)
	}
}

func TestRollup_TermComponentCompoundsAfterConversion(t *testing.T) {
	engine := testEngine()
	// 10 USD -> 328.00 TRY, term 3 -> 5 at 2%: 328 * 1.02^2 = 341.2512, x5 = 1706.256
	got, err := engine.Rollup(context.Background(), []pricing.ComponentLine{{InventoryItemId: 2, Quantity: 5}}, pricing.CurrencyTRY, 5)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "1706.26" {
		t.Fatalf("expected 1706.26, got %s", got)
	}
}

func TestRollup_EmptyBOMCostsZero(t *testing.T) {
	engine := testEngine()
	got, err := engine.Rollup(context.Background(), nil, pricing.CurrencyTRY, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsZero() {
		t.Fatalf("empty BOM must cost zero, got %s", got)
	}
}

func TestRollup_Additivity(t *testing.T) {
	engine := testEngine()
	lines := []pricing.ComponentLine{
		{InventoryItemId: 1, Quantity: 2},
		{InventoryItemId: 2, Quantity: 5},
		{InventoryItemId: 3, Quantity: 7},
	}

	total, err := engine.Rollup(context.Background(), lines, pricing.CurrencyTRY, 5)
	if err != nil {
		t.Fatal(err)
	}

	sum := decimal.Zero
	for _, line := range lines {
		part, err := engine.Rollup(context.Background(), []pricing.ComponentLine{line}, pricing.CurrencyTRY, 5)
		if err != nil {
			t.Fatal(err)
		}
		sum = sum.Add(part)
	}

	if !total.Equal(sum) {
		t.Fatalf("rollup not additive: whole %s vs parts %s", total, sum)
	}
}

func TestRollup_RejectsNonPositiveQuantity(t *testing.T) {
	engine := testEngine()
	for _, qty := range []int{0, -3} {
		_, err := engine.Rollup(context.Background(), []pricing.ComponentLine{{InventoryItemId: 1, Quantity: qty}}, pricing.CurrencyTRY, 0)
		if !errors.Is(err, pricing.ErrInvalidQuantity) {
			t.Fatalf("quantity %d: expected ErrInvalidQuantity, got %v", qty, err)
		}
	}
}

func TestRollup_MissingComponent(t *testing.T) {
	engine := testEngine()
	_, err := engine.Rollup(context.Background(), []pricing.ComponentLine{{InventoryItemId: 99, Quantity: 1}}, pricing.CurrencyTRY, 0)
	if !errors.Is(err, pricing.ErrComponentNotFound) {
		t.Fatalf("expected ErrComponentNotFound, got %v", err)
	}
}
