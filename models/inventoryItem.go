package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/enescc00/b2bsitesibitmis-sub000/config"
	"github.com/enescc00/b2bsitesibitmis-sub000/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrInsufficientStock is returned per component so callers can decide to
// draft, partially fulfill, or abort.
var ErrInsufficientStock = errors.New("insufficient stock")

type InventoryItem struct {
	ID           int                 `gorm:"primary_key" json:"id"`
	Name         string              `gorm:"size:100;not null" json:"name"`
	ItemCode     string              `gorm:"uniqueIndex;size:50;not null" json:"item_code"`
	Quantity     int                 `gorm:"not null;default:0" json:"quantity"`
	UnitPrice    decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	Currency     CurrencyCode        `gorm:"type:enum('TRY','USD','EUR');default:'TRY';not null" json:"currency"`
	PurchaseType PurchaseType        `gorm:"type:enum('cash','term');default:'cash';not null" json:"purchase_type"`
	TermMonths   int                 `gorm:"default:0" json:"term_months"`
	IsActive     *bool               `gorm:"not null;default:true" json:"is_active"`
	History      []*InventoryHistory `gorm:"foreignKey:InventoryItemId" json:"history,omitempty"`
	CreatedAt    time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewInventoryItem struct {
	Name         string          `json:"name" binding:"required"`
	ItemCode     string          `json:"item_code" binding:"required"`
	Quantity     int             `json:"quantity" binding:"min=0"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Currency     CurrencyCode    `json:"currency" binding:"required"`
	PurchaseType PurchaseType    `json:"purchase_type" binding:"required"`
	TermMonths   int             `json:"term_months" binding:"min=0"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewInventoryItem) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[InventoryItem](ctx, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateUnique[InventoryItem](ctx, "item_code", input.ItemCode, id); err != nil {
		return err
	}
	if !ValidCurrencyCode(input.Currency) {
		return fmt.Errorf("currency must be one of TRY, USD, EUR, got %q", input.Currency)
	}
	if !ValidPurchaseType(input.PurchaseType) {
		return fmt.Errorf("purchase_type must be cash or term, got %q", input.PurchaseType)
	}
	if input.Quantity < 0 {
		return errors.New("quantity cannot be negative")
	}
	if input.UnitPrice.IsNegative() {
		return errors.New("unit_price cannot be negative")
	}
	if input.TermMonths < 0 {
		return errors.New("term_months cannot be negative")
	}
	if input.PurchaseType == PurchaseTypeCash && input.TermMonths != 0 {
		return errors.New("term_months is only meaningful for term purchases")
	}
	return nil
}

func CreateInventoryItem(ctx context.Context, input *NewInventoryItem) (*InventoryItem, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	item := InventoryItem{
		Name:         input.Name,
		ItemCode:     input.ItemCode,
		Quantity:     input.Quantity,
		UnitPrice:    input.UnitPrice,
		Currency:     input.Currency,
		PurchaseType: input.PurchaseType,
		TermMonths:   input.TermMonths,
		IsActive:     utils.NewTrue(),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		return appendInventoryHistory(ctx, tx, item.ID, utils.ActorFromContext(ctx), "created",
			fmt.Sprintf("item %s created with %d on hand", item.ItemCode, item.Quantity))
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func UpdateInventoryItem(ctx context.Context, id int, input *NewInventoryItem) (*InventoryItem, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	item, err := utils.FetchModel[InventoryItem](ctx, id)
	if err != nil {
		return nil, err
	}

	costChanged := !item.UnitPrice.Equal(input.UnitPrice) ||
		item.Currency != input.Currency ||
		item.PurchaseType != input.PurchaseType ||
		item.TermMonths != input.TermMonths

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(item).Updates(map[string]interface{}{
			"Name":         input.Name,
			"ItemCode":     input.ItemCode,
			"Quantity":     input.Quantity,
			"UnitPrice":    input.UnitPrice,
			"Currency":     input.Currency,
			"PurchaseType": input.PurchaseType,
			"TermMonths":   input.TermMonths,
		}).Error; err != nil {
			return err
		}
		return appendInventoryHistory(ctx, tx, item.ID, utils.ActorFromContext(ctx), "updated",
			fmt.Sprintf("item %s updated, cost basis changed: %t", input.ItemCode, costChanged))
	})
	if err != nil {
		return nil, err
	}

	// Cost edits invalidate previously derived sale prices. The flag is advisory:
	// nothing changes a live price until an explicit recalculation.
	if costChanged {
		if err := FlagProductsUsingItem(ctx, id); err != nil {
			config.LogError(config.GetLogger(), "models", "UpdateInventoryItem", "flag stale products", id, err)
		}
	}

	return item, nil
}

func GetInventoryItem(ctx context.Context, id int) (*InventoryItem, error) {
	return utils.FetchModel[InventoryItem](ctx, id, "History")
}

func GetInventoryItems(ctx context.Context) ([]*InventoryItem, error) {
	return utils.FetchAllModels[InventoryItem](ctx)
}

// DecrementStock atomically checks sufficiency and decrements in one conditional
// UPDATE, so two concurrent order creations can never both pass a stale check.
// Must run inside the caller's transaction.
func DecrementStock(ctx context.Context, tx *gorm.DB, itemId int, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("decrement quantity must be positive, got %d", qty)
	}
	res := tx.WithContext(ctx).Model(&InventoryItem{}).
		Where("id = ? AND quantity >= ?", itemId, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if err := utils.ValidateResourceId[InventoryItem](ctx, itemId); err != nil {
			return err
		}
		return fmt.Errorf("%w: item %d needs %d", ErrInsufficientStock, itemId, qty)
	}
	return appendInventoryHistory(ctx, tx, itemId, utils.ActorFromContext(ctx), "stock_out",
		fmt.Sprintf("%d units taken from stock", qty))
}

// RestockItem returns units to stock (approved returns, cancelled orders).
func RestockItem(ctx context.Context, tx *gorm.DB, itemId int, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("restock quantity must be positive, got %d", qty)
	}
	res := tx.WithContext(ctx).Model(&InventoryItem{}).
		Where("id = ?", itemId).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return appendInventoryHistory(ctx, tx, itemId, utils.ActorFromContext(ctx), "stock_in",
		fmt.Sprintf("%d units returned to stock", qty))
}
