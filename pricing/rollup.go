package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// ComponentLine is one BOM row: which inventory item and how many of it.
type ComponentLine struct {
	InventoryItemId int `json:"inventory_item_id"`
	Quantity        int `json:"quantity"`
}

// ComponentItem is the pricing view of an inventory item. The engine never sees
// gorm entities; models adapts its rows into this shape.
type ComponentItem struct {
	UnitPrice    decimal.Decimal
	Currency     CurrencyCode
	PurchaseType PurchaseType
	TermMonths   int
}

// ItemSource resolves component ids. Backed by the database in production and by
// a map in tests.
type ItemSource interface {
	ComponentItem(ctx context.Context, id int) (*ComponentItem, error)
}

// MapItemSource is the in-memory ItemSource used by tests and ad-hoc quoting.
type MapItemSource map[int]ComponentItem

func (m MapItemSource) ComponentItem(_ context.Context, id int) (*ComponentItem, error) {
	item, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("%w: inventory item %d", ErrComponentNotFound, id)
	}
	return &item, nil
}

type CostRollupEngine struct {
	Items  ItemSource
	Config Config
}

// Rollup prices a BOM in the target currency at the target payment term.
// Per line: convert the unit price, compound term interest for vadeli items, then
// multiply by quantity; each line is rounded once at its end, and line totals sum
// exactly (so the total equals the sum of single-line rollups). An empty component
// list costs zero: it represents "not yet costed", not an error.
func (e CostRollupEngine) Rollup(ctx context.Context, lines []ComponentLine, targetCurrency CurrencyCode, targetTermMonths int) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, line := range lines {
		lineTotal, err := e.RollupLine(ctx, line, targetCurrency, targetTermMonths)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(lineTotal)
	}
	return total, nil
}

// RollupLine prices a single BOM row, rounded to 2 decimal places.
func (e CostRollupEngine) RollupLine(ctx context.Context, line ComponentLine, targetCurrency CurrencyCode, targetTermMonths int) (decimal.Decimal, error) {
	if line.Quantity <= 0 {
		return decimal.Zero, fmt.Errorf("%w: component %d has quantity %d", ErrInvalidQuantity, line.InventoryItemId, line.Quantity)
	}

	item, err := e.Items.ComponentItem(ctx, line.InventoryItemId)
	if err != nil {
		return decimal.Zero, err
	}

	perUnit, err := e.Config.Rates.Convert(item.UnitPrice, item.Currency, targetCurrency)
	if err != nil {
		return decimal.Zero, err
	}
	if item.PurchaseType == PurchaseTypeTerm {
		perUnit = AdjustForTerm(perUnit, item.TermMonths, targetTermMonths, e.Config.MonthlyInterestRate)
	}

	return Round2(perUnit.Mul(decimal.NewFromInt(int64(line.Quantity)))), nil
}
