package models

import (
	"context"
	"errors"
	"time"

	"github.com/enescc00/b2bsitesibitmis-sub000/config"
	"github.com/enescc00/b2bsitesibitmis-sub000/pricing"
	"github.com/enescc00/b2bsitesibitmis-sub000/utils"
	"github.com/shopspring/decimal"
)

// Product is a sellable manufactured good. SalePrice is derived from CostBasis
// (the rollup at the last explicit recalculation) plus margin; when the live
// rollup drifts from CostBasis the product carries a profitability alert until
// an admin recalculates.
type Product struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	Name               string          `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Category           string          `gorm:"index;size:50;not null" json:"category"`
	ProductTreeId      *int            `gorm:"index" json:"product_tree_id"`
	MarginPercentage   decimal.Decimal `gorm:"type:decimal(10,4);default:0" json:"margin_percentage"`
	CostBasis          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost_basis"`
	SalePrice          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sale_price"`
	ProfitabilityAlert bool            `gorm:"not null;default:false" json:"profitability_alert"`
	IsActive           *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name             string          `json:"name" binding:"required"`
	Category         string          `json:"category" binding:"required"`
	ProductTreeId    *int            `json:"product_tree_id"`
	MarginPercentage decimal.Decimal `json:"margin_percentage"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewProduct) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Product](ctx, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateUnique[Product](ctx, "name", input.Name, id); err != nil {
		return err
	}
	if input.MarginPercentage.IsNegative() {
		return errors.New("margin_percentage cannot be negative")
	}
	if input.ProductTreeId != nil {
		if err := utils.ValidateResourceId[ProductTree](ctx, *input.ProductTreeId); err != nil {
			return errors.New("product_tree_id not found")
		}
	}
	return nil
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	product := Product{
		Name:             input.Name,
		Category:         input.Category,
		ProductTreeId:    input.ProductTreeId,
		MarginPercentage: input.MarginPercentage,
		IsActive:         utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}

	if product.ProductTreeId != nil {
		if _, err := RecalculateProductPrice(ctx, product.ID); err != nil {
			config.LogError(config.GetLogger(), "models", "CreateProduct", "initial price calculation", product.ID, err)
		}
	}
	return GetProduct(ctx, product.ID)
}

func UpdateProduct(ctx context.Context, id int, input *NewProduct) (*Product, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(product).Updates(map[string]interface{}{
		"Name":             input.Name,
		"Category":         input.Category,
		"ProductTreeId":    input.ProductTreeId,
		"MarginPercentage": input.MarginPercentage,
	}).Error
	if err != nil {
		return nil, err
	}

	// A margin or recipe change invalidates the derived price the same way a
	// component cost change does.
	if _, err := EvaluateStaleness(ctx, id); err != nil && !errors.Is(err, utils.ErrorRecordNotFound) {
		config.LogError(config.GetLogger(), "models", "UpdateProduct", "stale evaluation", id, err)
	}
	return GetProduct(ctx, id)
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	return utils.FetchModel[Product](ctx, id)
}

func GetProducts(ctx context.Context) ([]*Product, error) {
	return utils.FetchAllModels[Product](ctx)
}

func (p *Product) basePrice(cost decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	return cost.Mul(hundred.Add(p.MarginPercentage)).Div(hundred)
}

// freshCost rolls up the product's tree at the canonical basis (TRY, cash).
func (p *Product) freshCost(ctx context.Context) (decimal.Decimal, error) {
	if p.ProductTreeId == nil {
		return decimal.Zero, nil
	}
	return RollupTreeCost(ctx, *p.ProductTreeId, pricing.BaseCurrency, 0)
}

// RecalculateProductPrice is the only write path that clears the profitability
// alert: it re-rolls the cost, stores it as the new basis and derives the sale
// price from it. Running it twice in a row is a no-op.
func RecalculateProductPrice(ctx context.Context, id int) (*Product, error) {
	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}

	fresh, err := product.freshCost(ctx)
	if err != nil {
		return nil, err
	}
	salePrice := pricing.Round2(product.basePrice(fresh))

	db := config.GetDB()
	err = db.WithContext(ctx).Model(product).Updates(map[string]interface{}{
		"CostBasis":          fresh,
		"SalePrice":          salePrice,
		"ProfitabilityAlert": false,
	}).Error
	if err != nil {
		return nil, err
	}

	if product.ProductTreeId != nil {
		if _, err := RecalculateTreeCost(ctx, *product.ProductTreeId); err != nil {
			config.LogError(config.GetLogger(), "models", "RecalculateProductPrice", "tree cost cache", id, err)
		}
	}
	return GetProduct(ctx, id)
}

// EvaluateStaleness recomputes the product's cost and persists the advisory
// flag. It never touches SalePrice or CostBasis.
func EvaluateStaleness(ctx context.Context, id int) (bool, error) {
	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return false, err
	}
	if product.ProductTreeId == nil {
		return false, nil
	}

	fresh, err := product.freshCost(ctx)
	if err != nil {
		return false, err
	}
	stale := pricing.IsStale(product.CostBasis, fresh, pricing.DefaultStaleTolerance)

	if stale != product.ProfitabilityAlert {
		db := config.GetDB()
		err = db.WithContext(ctx).Model(product).
			UpdateColumn("profitability_alert", stale).Error
		if err != nil {
			return stale, err
		}
	}
	return stale, nil
}

// FlagProductsUsingItem re-evaluates every product whose recipe contains the
// given inventory item. Called after inventory cost edits.
func FlagProductsUsingItem(ctx context.Context, itemId int) error {
	db := config.GetDB()
	var treeIds []int
	err := db.WithContext(ctx).Model(&ProductTreeComponent{}).
		Where("inventory_item_id = ?", itemId).
		Distinct().Pluck("product_tree_id", &treeIds).Error
	if err != nil {
		return err
	}
	for _, treeId := range treeIds {
		if err := flagProductsForTree(ctx, treeId); err != nil {
			return err
		}
	}
	return nil
}

func flagProductsForTree(ctx context.Context, treeId int) error {
	db := config.GetDB()
	var productIds []int
	err := db.WithContext(ctx).Model(&Product{}).
		Where("product_tree_id = ?", treeId).
		Pluck("id", &productIds).Error
	if err != nil {
		return err
	}
	for _, id := range productIds {
		if _, err := EvaluateStaleness(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// FlagAllProductsStale re-evaluates every product with a recipe. Called after
// rate/interest settings change.
func FlagAllProductsStale(ctx context.Context) error {
	db := config.GetDB()
	var productIds []int
	err := db.WithContext(ctx).Model(&Product{}).
		Where("product_tree_id IS NOT NULL").
		Pluck("id", &productIds).Error
	if err != nil {
		return err
	}
	for _, id := range productIds {
		if _, err := EvaluateStaleness(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
