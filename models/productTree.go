package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/enescc00/b2bsitesibitmis-sub000/config"
	"github.com/enescc00/b2bsitesibitmis-sub000/pricing"
	"github.com/enescc00/b2bsitesibitmis-sub000/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductTree is the bill of materials of a manufactured product: the ordered
// recipe of inventory components and quantities. TotalCost is a cached rollup in
// the base currency at cash terms; it is recomputed, never hand-edited.
type ProductTree struct {
	ID         int                     `gorm:"primary_key" json:"id"`
	Name       string                  `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Components []*ProductTreeComponent `gorm:"foreignKey:ProductTreeId" json:"components"`
	TotalCost  decimal.Decimal         `gorm:"type:decimal(20,4);default:0" json:"total_cost"`
	CreatedAt  time.Time               `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time               `gorm:"autoUpdateTime" json:"updated_at"`
}

type ProductTreeComponent struct {
	ID              int `gorm:"primary_key" json:"id"`
	ProductTreeId   int `gorm:"index;not null" json:"product_tree_id"`
	InventoryItemId int `gorm:"index;not null" json:"inventory_item_id"`
	Quantity        int `gorm:"not null" json:"quantity"`
	SortOrder       int `gorm:"not null;default:0" json:"sort_order"`
}

type NewProductTree struct {
	Name       string                    `json:"name" binding:"required"`
	Components []NewProductTreeComponent `json:"components"`
}

type NewProductTreeComponent struct {
	InventoryItemId int `json:"inventory_item_id" binding:"required"`
	Quantity        int `json:"quantity" binding:"required,min=1"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewProductTree) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[ProductTree](ctx, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateUnique[ProductTree](ctx, "name", input.Name, id); err != nil {
		return err
	}
	itemIds := make([]int, 0, len(input.Components))
	for _, c := range input.Components {
		if c.Quantity < 1 {
			return fmt.Errorf("%w: component %d has quantity %d", pricing.ErrInvalidQuantity, c.InventoryItemId, c.Quantity)
		}
		itemIds = append(itemIds, c.InventoryItemId)
	}
	if len(itemIds) > 0 {
		if err := utils.ValidateResourcesId[InventoryItem](ctx, itemIds); err != nil {
			return errors.New("component inventory item not found")
		}
	}
	return nil
}

func CreateProductTree(ctx context.Context, input *NewProductTree) (*ProductTree, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	tree := ProductTree{Name: input.Name}
	for i, c := range input.Components {
		tree.Components = append(tree.Components, &ProductTreeComponent{
			InventoryItemId: c.InventoryItemId,
			Quantity:        c.Quantity,
			SortOrder:       i,
		})
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&tree).Error; err != nil {
		return nil, err
	}

	if _, err := RecalculateTreeCost(ctx, tree.ID); err != nil {
		config.LogError(config.GetLogger(), "models", "CreateProductTree", "initial cost rollup", tree.ID, err)
	}
	return GetProductTree(ctx, tree.ID)
}

// UpdateProductTree replaces the component list wholesale; editing a recipe is
// an admin action, and partial edits are not worth the merge complexity.
func UpdateProductTree(ctx context.Context, id int, input *NewProductTree) (*ProductTree, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	tree, err := utils.FetchModel[ProductTree](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(tree).Updates(map[string]interface{}{"Name": input.Name}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_tree_id = ?", id).Delete(&ProductTreeComponent{}).Error; err != nil {
			return err
		}
		for i, c := range input.Components {
			component := ProductTreeComponent{
				ProductTreeId:   id,
				InventoryItemId: c.InventoryItemId,
				Quantity:        c.Quantity,
				SortOrder:       i,
			}
			if err := tx.Create(&component).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := RecalculateTreeCost(ctx, id); err != nil {
		config.LogError(config.GetLogger(), "models", "UpdateProductTree", "cost rollup", id, err)
	}
	if err := flagProductsForTree(ctx, id); err != nil {
		config.LogError(config.GetLogger(), "models", "UpdateProductTree", "flag stale products", id, err)
	}
	return GetProductTree(ctx, id)
}

func GetProductTree(ctx context.Context, id int) (*ProductTree, error) {
	db := config.GetDB()
	var tree ProductTree
	err := db.WithContext(ctx).
		Preload("Components", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		First(&tree, id).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &tree, nil
}

func GetProductTrees(ctx context.Context) ([]*ProductTree, error) {
	return utils.FetchAllModels[ProductTree](ctx, "Components")
}

func (t *ProductTree) componentLines() []pricing.ComponentLine {
	lines := make([]pricing.ComponentLine, 0, len(t.Components))
	for _, c := range t.Components {
		lines = append(lines, pricing.ComponentLine{InventoryItemId: c.InventoryItemId, Quantity: c.Quantity})
	}
	return lines
}

// RollupTreeCost prices the tree in an arbitrary currency/term without touching
// the cache. Used for quoting.
func RollupTreeCost(ctx context.Context, id int, targetCurrency CurrencyCode, targetTermMonths int) (decimal.Decimal, error) {
	tree, err := GetProductTree(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	cfg, err := LoadPricingConfig(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return NewRollupEngine(cfg).Rollup(ctx, tree.componentLines(), targetCurrency, targetTermMonths)
}

// RecalculateTreeCost refreshes the cached TotalCost (base currency, cash terms).
func RecalculateTreeCost(ctx context.Context, id int) (decimal.Decimal, error) {
	total, err := RollupTreeCost(ctx, id, pricing.BaseCurrency, 0)
	if err != nil {
		return decimal.Zero, err
	}
	db := config.GetDB()
	err = db.WithContext(ctx).Model(&ProductTree{}).
		Where("id = ?", id).
		UpdateColumn("total_cost", total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
