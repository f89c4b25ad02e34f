package models

import (
	"context"
	"fmt"

	"github.com/enescc00/b2bsitesibitmis-sub000/pricing"
	"github.com/enescc00/b2bsitesibitmis-sub000/utils"
)

// dbItemSource adapts inventory rows into the pricing engine's component view.
type dbItemSource struct{}

func (dbItemSource) ComponentItem(ctx context.Context, id int) (*pricing.ComponentItem, error) {
	item, err := utils.FetchModel[InventoryItem](ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: inventory item %d", pricing.ErrComponentNotFound, id)
	}
	return &pricing.ComponentItem{
		UnitPrice:    item.UnitPrice,
		Currency:     item.Currency,
		PurchaseType: item.PurchaseType,
		TermMonths:   item.TermMonths,
	}, nil
}

// ItemSource returns the database-backed component lookup for rollups.
func ItemSource() pricing.ItemSource {
	return dbItemSource{}
}

// NewRollupEngine builds a rollup engine over live inventory and the given
// settings snapshot.
func NewRollupEngine(cfg pricing.Config) pricing.CostRollupEngine {
	return pricing.CostRollupEngine{Items: ItemSource(), Config: cfg}
}
