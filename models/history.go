package models

import (
	"context"
	"errors"
	"time"

	"github.com/enescc00/b2bsitesibitmis-sub000/config"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryHistory is the append-only change log of an inventory item. Rows are
// written inside the same transaction as the mutation they describe and are
// never edited or deleted afterwards (enforced by hooks below).
type InventoryHistory struct {
	ID              string    `gorm:"primary_key;size:36" json:"id"`
	InventoryItemId int       `gorm:"index;not null" json:"inventory_item_id"`
	Actor           string    `gorm:"size:100;not null" json:"actor"`
	Action          string    `gorm:"size:50;not null" json:"action"`
	Detail          string    `gorm:"size:500" json:"detail"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

var errHistoryImmutable = errors.New("inventory history is append-only")

func (InventoryHistory) BeforeUpdate(*gorm.DB) error {
	return errHistoryImmutable
}

func (InventoryHistory) BeforeDelete(*gorm.DB) error {
	return errHistoryImmutable
}

func appendInventoryHistory(ctx context.Context, tx *gorm.DB, itemId int, actor, action, detail string) error {
	entry := InventoryHistory{
		ID:              uuid.NewString(),
		InventoryItemId: itemId,
		Actor:           actor,
		Action:          action,
		Detail:          detail,
	}
	return tx.WithContext(ctx).Create(&entry).Error
}

func GetInventoryHistory(ctx context.Context, itemId int) ([]*InventoryHistory, error) {
	db := config.GetDB()
	var entries []*InventoryHistory
	err := db.WithContext(ctx).
		Where("inventory_item_id = ?", itemId).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
