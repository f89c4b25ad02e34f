package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceList is the resolver's view of a customer's assigned price list.
// models maps its gorm rows into this shape; duplicates are rejected at write
// time, so map keys are safe here.
type PriceList struct {
	GlobalDiscountPercentage decimal.Decimal
	CategoryDiscounts        map[string]decimal.Decimal
	ProductPrices            map[int]decimal.Decimal
}

// ResolveSalePrice turns a base (cost-plus-margin) price into the customer's sale
// price. Exactly one rule fires, highest precedence first:
//
//  1. product-specific price -> used verbatim
//  2. category discount      -> basePrice * (1 - pct/100)
//  3. global discount        -> basePrice * (1 - pct/100)
//  4. no list / no match     -> basePrice
//
// Rules never stack. A nil price list always yields the base price.
func ResolveSalePrice(productId int, category string, basePrice decimal.Decimal, list *PriceList) decimal.Decimal {
	if list == nil {
		return Round2(basePrice)
	}

	if price, ok := list.ProductPrices[productId]; ok {
		return Round2(price)
	}

	if pct, ok := list.CategoryDiscounts[category]; ok {
		return Round2(applyDiscount(basePrice, pct))
	}

	if !list.GlobalDiscountPercentage.IsZero() {
		return Round2(applyDiscount(basePrice, list.GlobalDiscountPercentage))
	}

	return Round2(basePrice)
}

func applyDiscount(base decimal.Decimal, pct decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	return base.Mul(hundred.Sub(pct)).Div(hundred)
}

// ValidateDiscountPercentage enforces the 0-100 range at price-list write time.
// Resolution assumes stored percentages are already valid.
func ValidateDiscountPercentage(field string, pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: %s must be between 0 and 100, got %s", ErrInvalidDiscount, field, pct)
	}
	return nil
}
