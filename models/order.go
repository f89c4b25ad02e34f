package models

import (
	"context"
	"time"

	"github.com/enescc00/b2bsitesibitmis-sub000/utils"
	"github.com/shopspring/decimal"
)

// Source documents behind ledger entries. These records are the minimal shapes
// the posting workflows need; the wider order lifecycle (quotes, shipping,
// status history) lives outside the financial core.

type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID              int             `gorm:"primary_key" json:"id"`
	CustomerId      int             `gorm:"index;not null" json:"customer_id"`
	Lines           []*OrderLine    `gorm:"foreignKey:OrderId" json:"lines"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_price"`
	PaymentTerms    PaymentTerms    `gorm:"type:enum('cash','credit');not null" json:"payment_terms"`
	ShippingWaived  bool            `gorm:"not null;default:false" json:"shipping_waived"`
	CurrentStatus   OrderStatus     `gorm:"type:enum('draft','confirmed','cancelled');default:'draft';not null" json:"current_status"`
	OrderDate       time.Time       `gorm:"index;not null" json:"order_date"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type OrderLine struct {
	ID        int             `gorm:"primary_key" json:"id"`
	OrderId   int             `gorm:"index;not null" json:"order_id"`
	ProductId int             `gorm:"index;not null" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
}

type Payment struct {
	ID          int             `gorm:"primary_key" json:"id"`
	CustomerId  int             `gorm:"index;not null" json:"customer_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	PaymentDate time.Time       `gorm:"index;not null" json:"payment_date"`
	Reference   string          `gorm:"size:100" json:"reference"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type ReturnStatus string

const (
	ReturnStatusPending  ReturnStatus = "pending"
	ReturnStatusApproved ReturnStatus = "approved"
	ReturnStatusRejected ReturnStatus = "rejected"
)

type ReturnRecord struct {
	ID            int             `gorm:"primary_key" json:"id"`
	CustomerId    int             `gorm:"index;not null" json:"customer_id"`
	OrderId       int             `gorm:"index" json:"order_id"`
	Lines         []*ReturnLine   `gorm:"foreignKey:ReturnRecordId" json:"lines"`
	RefundAmount  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"refund_amount"`
	CurrentStatus ReturnStatus    `gorm:"type:enum('pending','approved','rejected');default:'pending';not null" json:"current_status"`
	ReturnDate    time.Time       `gorm:"index;not null" json:"return_date"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type ReturnLine struct {
	ID             int             `gorm:"primary_key" json:"id"`
	ReturnRecordId int             `gorm:"index;not null" json:"return_record_id"`
	ProductId      int             `gorm:"index;not null" json:"product_id"`
	Quantity       int             `gorm:"not null" json:"quantity"`
	PriceAtReturn  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price_at_return"`
}

func GetOrder(ctx context.Context, id int) (*Order, error) {
	return utils.FetchModel[Order](ctx, id, "Lines")
}

func GetReturnRecord(ctx context.Context, id int) (*ReturnRecord, error) {
	return utils.FetchModel[ReturnRecord](ctx, id, "Lines")
}
