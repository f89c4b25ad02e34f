package pricing_test

import (
	"errors"
	"testing"

	"github.com/enescc00/b2bsitesibitmis-sub000/pricing"
	"github.com/shopspring/decimal"
)

func TestResolveSalePrice_ProductOverrideWins(t *testing.T) {
	list := &pricing.PriceList{
		GlobalDiscountPercentage: decimal.NewFromInt(5),
		CategoryDiscounts:        map[string]decimal.Decimal{"fasteners": decimal.NewFromInt(10)},
		ProductPrices:            map[int]decimal.Decimal{42: decimal.NewFromInt(900)},
	}

	got := pricing.ResolveSalePrice(42, "fasteners", decimal.NewFromInt(1000), list)
	if got.String() != "900.00" {
		t.Fatalf("product override must win: expected 900.00, got %s", got)
	}

	// even an absurdly large category discount is ignored once the override matches
	list.CategoryDiscounts["fasteners"] = decimal.NewFromInt(99)
	got = pricing.ResolveSalePrice(42, "fasteners", decimal.NewFromInt(1000), list)
	if got.String() != "900.00" {
		t.Fatalf("rules must not stack: expected 900.00, got %s", got)
	}
}

func TestResolveSalePrice_CategoryBeforeGlobal(t *testing.T) {
	list := &pricing.PriceList{
		GlobalDiscountPercentage: decimal.NewFromInt(5),
		CategoryDiscounts:        map[string]decimal.Decimal{"fasteners": decimal.NewFromInt(10)},
	}

	got := pricing.ResolveSalePrice(7, "fasteners", decimal.NewFromInt(1000), list)
	if got.String() != "900.00" {
		t.Fatalf("expected category discount 10%%: got %s", got)
	}

	got = pricing.ResolveSalePrice(7, "pipes", decimal.NewFromInt(1000), list)
	if got.String() != "950.00" {
		t.Fatalf("expected global discount 5%%: got %s", got)
	}
}

func TestResolveSalePrice_NoListYieldsBasePrice(t *testing.T) {
	got := pricing.ResolveSalePrice(7, "pipes", decimal.NewFromFloat(123.456), nil)
	if got.String() != "123.46" {
		t.Fatalf("expected base price, got %s", got)
	}

	empty := &pricing.PriceList{}
	got = pricing.ResolveSalePrice(7, "pipes", decimal.NewFromInt(1000), empty)
	if got.String() != "1000.00" {
		t.Fatalf("expected base price with empty list, got %s", got)
	}
}

func TestValidateDiscountPercentage(t *testing.T) {
	if err := pricing.ValidateDiscountPercentage("global_discount_percentage", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("100 is a valid edge: %v", err)
	}
	if err := pricing.ValidateDiscountPercentage("global_discount_percentage", decimal.Zero); err != nil {
		t.Fatalf("0 is a valid edge: %v", err)
	}
	for _, pct := range []decimal.Decimal{decimal.NewFromInt(-1), decimal.NewFromFloat(100.01)} {
		err := pricing.ValidateDiscountPercentage("discount_percentage", pct)
		if !errors.Is(err, pricing.ErrInvalidDiscount) {
			t.Fatalf("%s: expected ErrInvalidDiscount, got %v", pct, err)
		}
	}
}
