package models

import (
	"context"
	"errors"
	"time"

	"github.com/enescc00/b2bsitesibitmis-sub000/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerEntry is one row of a customer's cari hesap: the projection of orders,
// payments and returns onto a chronological feed. Amount is signed (debit
// negative, credit positive); Balance is the running total through this entry.
// Seq is the per-customer insertion sequence and the explicit tie-break for
// same-timestamp entries, so replay is deterministic regardless of storage
// order. Rows are append-only: a finalized transaction is corrected by a new
// offsetting entry, never by edit or delete.
type LedgerEntry struct {
	ID          int              `gorm:"primary_key" json:"id"`
	CustomerId  int              `gorm:"index:idx_ledger_customer_seq,unique;not null" json:"customer_id"`
	Seq         int              `gorm:"index:idx_ledger_customer_seq,unique;not null" json:"seq"`
	Date        time.Time        `gorm:"index;not null" json:"date"`
	SourceType  LedgerSourceType `gorm:"type:enum('Order','Payment','Return','Adjustment','Reversal');not null" json:"source_type"`
	SourceId    int              `gorm:"index" json:"source_id"`
	Description string           `gorm:"size:255" json:"description"`
	Amount      decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"amount"`
	Balance     decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"balance"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

var errLedgerImmutable = errors.New("ledger entries are append-only")

func (LedgerEntry) BeforeUpdate(*gorm.DB) error {
	return errLedgerImmutable
}

func (LedgerEntry) BeforeDelete(*gorm.DB) error {
	return errLedgerImmutable
}

// GetCustomerLedger returns the customer's entries in replay order.
func GetCustomerLedger(ctx context.Context, customerId int) ([]*LedgerEntry, error) {
	db := config.GetDB()
	var entries []*LedgerEntry
	err := db.WithContext(ctx).
		Where("customer_id = ?", customerId).
		Order("date ASC, seq ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
