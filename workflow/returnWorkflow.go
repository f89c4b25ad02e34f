package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/enescc00/b2bsitesibitmis-sub000/config"
	"github.com/enescc00/b2bsitesibitmis-sub000/models"
	"github.com/enescc00/b2bsitesibitmis-sub000/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type NewReturnLine struct {
	ProductId int `json:"product_id" binding:"required"`
	Quantity  int `json:"quantity" binding:"required,min=1"`
}

type NewReturn struct {
	CustomerId int             `json:"customer_id" binding:"required"`
	OrderId    int             `json:"order_id"`
	Lines      []NewReturnLine `json:"lines" binding:"required,min=1"`
	ReturnDate time.Time       `json:"return_date"`
}

// CreateReturnRequest registers a pending return. Each line captures the price
// the customer actually paid at that moment (priceAtReturn); the refund is
// computed from these captured prices, not from today's list, so later price
// edits cannot change an in-flight refund.
func CreateReturnRequest(ctx context.Context, input *NewReturn) (*models.ReturnRecord, error) {
	if err := utils.ValidateResourceId[models.Customer](ctx, input.CustomerId); err != nil {
		return nil, err
	}

	returnDate := input.ReturnDate
	if returnDate.IsZero() {
		returnDate = time.Now()
	}

	record := models.ReturnRecord{
		CustomerId:    input.CustomerId,
		OrderId:       input.OrderId,
		CurrentStatus: models.ReturnStatusPending,
		ReturnDate:    returnDate,
	}
	for _, line := range input.Lines {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("return line for product %d has quantity %d", line.ProductId, line.Quantity)
		}
		price, err := models.ResolveCustomerPrice(ctx, line.ProductId, input.CustomerId)
		if err != nil {
			return nil, err
		}
		record.Lines = append(record.Lines, &models.ReturnLine{
			ProductId:     line.ProductId,
			Quantity:      line.Quantity,
			PriceAtReturn: price,
		})
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return models.GetReturnRecord(ctx, record.ID)
}

// ApproveReturn financially processes a pending return: refund = sum of
// quantity x priceAtReturn per line, credited to the customer's account, and
// the returned goods' components go back to stock in the same transaction.
func ApproveReturn(ctx context.Context, returnId int) (*models.ReturnRecord, error) {
	record, err := models.GetReturnRecord(ctx, returnId)
	if err != nil {
		return nil, err
	}
	if record.CurrentStatus != models.ReturnStatusPending {
		return nil, fmt.Errorf("return #%d is %s, only pending returns can be approved", returnId, record.CurrentStatus)
	}

	refund := decimal.Zero
	componentReturns := map[int]int{}
	for _, line := range record.Lines {
		refund = refund.Add(line.PriceAtReturn.Mul(decimal.NewFromInt(int64(line.Quantity))))

		product, err := models.GetProduct(ctx, line.ProductId)
		if err != nil {
			return nil, err
		}
		if product.ProductTreeId == nil {
			continue
		}
		tree, err := models.GetProductTree(ctx, *product.ProductTreeId)
		if err != nil {
			return nil, err
		}
		for _, c := range tree.Components {
			componentReturns[c.InventoryItemId] += c.Quantity * line.Quantity
		}
	}
	refund = refund.Round(2)
	if !refund.IsPositive() {
		return nil, errors.New("refund amount must be positive")
	}

	lock, err := utils.ObtainCustomerLock(ctx, record.CustomerId, "workflow", "ApproveReturn")
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Release(ctx) }()

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for itemId, qty := range componentReturns {
			if err := models.RestockItem(ctx, tx, itemId, qty); err != nil {
				return err
			}
		}
		if err := tx.Model(&models.ReturnRecord{}).Where("id = ?", returnId).
			Updates(map[string]interface{}{
				"CurrentStatus": models.ReturnStatusApproved,
				"RefundAmount":  refund,
			}).Error; err != nil {
			return err
		}
		description := fmt.Sprintf("Return #%d approved", returnId)
		_, err := appendEntryLocked(ctx, tx, record.CustomerId, record.ReturnDate,
			models.LedgerSourceReturn, returnId, description, refund)
		return err
	})
	if err != nil {
		return nil, err
	}
	return models.GetReturnRecord(ctx, returnId)
}

// RejectReturn closes a pending return without any financial effect.
func RejectReturn(ctx context.Context, returnId int) (*models.ReturnRecord, error) {
	record, err := models.GetReturnRecord(ctx, returnId)
	if err != nil {
		return nil, err
	}
	if record.CurrentStatus != models.ReturnStatusPending {
		return nil, fmt.Errorf("return #%d is %s, only pending returns can be rejected", returnId, record.CurrentStatus)
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&models.ReturnRecord{}).Where("id = ?", returnId).
		UpdateColumn("current_status", models.ReturnStatusRejected).Error
	if err != nil {
		return nil, err
	}
	return models.GetReturnRecord(ctx, returnId)
}
