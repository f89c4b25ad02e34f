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

type NewOrderLine struct {
	ProductId int `json:"product_id" binding:"required"`
	Quantity  int `json:"quantity" binding:"required,min=1"`
}

type NewOrder struct {
	CustomerId int            `json:"customer_id" binding:"required"`
	Lines      []NewOrderLine `json:"lines" binding:"required,min=1"`
	OrderDate  time.Time      `json:"order_date"`
}

// StockShortage names one component that could not be taken from stock, so the
// caller can decide to draft, partially fulfill, or abort.
type StockShortage struct {
	InventoryItemId int `json:"inventory_item_id"`
	Requested       int `json:"requested"`
	OnHand          int `json:"on_hand"`
}

type StockShortageError struct {
	Shortages []StockShortage
}

func (e *StockShortageError) Error() string {
	return fmt.Sprintf("insufficient stock for %d component(s)", len(e.Shortages))
}

func (e *StockShortageError) Unwrap() error {
	return models.ErrInsufficientStock
}

var ErrCreditLimitExceeded = errors.New("credit limit exceeded")

// PostCreditOrder prices, stock-checks and finalizes an order in one serialized
// posting. Component stock moves through conditional decrements inside the
// transaction, so a concurrent posting can never oversell; every shortage is
// collected before rolling back. Credit-terms orders are checked against the
// credit limit and debited on the customer's ledger inside the same locked
// transaction; cash orders touch only stock.
func PostCreditOrder(ctx context.Context, input *NewOrder) (*models.Order, error) {
	customer, err := models.GetCustomer(ctx, input.CustomerId)
	if err != nil {
		return nil, err
	}

	orderDate := input.OrderDate
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	// Price lines through the customer's price list before touching anything.
	total := decimal.Zero
	lines := make([]*models.OrderLine, 0, len(input.Lines))
	componentNeeds := map[int]int{}
	for _, line := range input.Lines {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("order line for product %d has quantity %d", line.ProductId, line.Quantity)
		}
		unitPrice, err := models.ResolveCustomerPrice(ctx, line.ProductId, input.CustomerId)
		if err != nil {
			return nil, err
		}
		lines = append(lines, &models.OrderLine{
			ProductId: line.ProductId,
			Quantity:  line.Quantity,
			UnitPrice: unitPrice,
		})
		total = total.Add(unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))

		product, err := models.GetProduct(ctx, line.ProductId)
		if err != nil {
			return nil, err
		}
		if product.ProductTreeId != nil {
			tree, err := models.GetProductTree(ctx, *product.ProductTreeId)
			if err != nil {
				return nil, err
			}
			for _, c := range tree.Components {
				componentNeeds[c.InventoryItemId] += c.Quantity * line.Quantity
			}
		}
	}
	total = total.Round(2)

	cfg, err := models.LoadPricingConfig(ctx)
	if err != nil {
		return nil, err
	}
	shippingWaived := !cfg.ShippingFreeThreshold.IsZero() && total.GreaterThanOrEqual(cfg.ShippingFreeThreshold)

	lock, err := utils.ObtainCustomerLock(ctx, input.CustomerId, "workflow", "PostCreditOrder")
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Release(ctx) }()

	order := models.Order{
		CustomerId:     input.CustomerId,
		Lines:          lines,
		TotalPrice:     total,
		PaymentTerms:   customer.PaymentTerms,
		ShippingWaived: shippingWaived,
		CurrentStatus:  models.OrderStatusConfirmed,
		OrderDate:      orderDate,
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The credit check reads the balance under the customer's lock; a check
		// taken before the lock could pass for two concurrent postings at once.
		if customer.PaymentTerms == models.PaymentTermsCredit {
			var current models.Customer
			if err := tx.WithContext(ctx).First(&current, input.CustomerId).Error; err != nil {
				return utils.ErrorRecordNotFound
			}
			if total.GreaterThan(current.AvailableCredit()) {
				return fmt.Errorf("%w: order total %s, available credit %s",
					ErrCreditLimitExceeded, total, current.AvailableCredit())
			}
		}
		if err := decrementComponents(ctx, tx, componentNeeds); err != nil {
			return err
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if customer.PaymentTerms == models.PaymentTermsCredit {
			description := fmt.Sprintf("Order #%d", order.ID)
			if _, err := appendEntryLocked(ctx, tx, input.CustomerId, orderDate,
				models.LedgerSourceOrder, order.ID, description, total.Neg()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return models.GetOrder(ctx, order.ID)
}

// decrementComponents tries every conditional decrement and reports all
// shortages at once; any shortage rolls the whole posting back.
func decrementComponents(ctx context.Context, tx *gorm.DB, needs map[int]int) error {
	var shortages []StockShortage
	for itemId, qty := range needs {
		err := models.DecrementStock(ctx, tx, itemId, qty)
		if err == nil {
			continue
		}
		if !errors.Is(err, models.ErrInsufficientStock) {
			return err
		}
		var item models.InventoryItem
		onHand := 0
		if ferr := tx.WithContext(ctx).First(&item, itemId).Error; ferr == nil {
			onHand = item.Quantity
		}
		shortages = append(shortages, StockShortage{InventoryItemId: itemId, Requested: qty, OnHand: onHand})
	}
	if len(shortages) > 0 {
		return &StockShortageError{Shortages: shortages}
	}
	return nil
}

// CancelOrder restocks components and, for credit orders, offsets the original
// debit with a Reversal entry. The order document flips status; its ledger
// history stays intact.
func CancelOrder(ctx context.Context, orderId int, reason string) (*models.Order, error) {
	order, err := models.GetOrder(ctx, orderId)
	if err != nil {
		return nil, err
	}
	if order.CurrentStatus == models.OrderStatusCancelled {
		return nil, errors.New("order is already cancelled")
	}

	componentNeeds := map[int]int{}
	for _, line := range order.Lines {
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
			componentNeeds[c.InventoryItemId] += c.Quantity * line.Quantity
		}
	}

	lock, err := utils.ObtainCustomerLock(ctx, order.CustomerId, "workflow", "CancelOrder")
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Release(ctx) }()

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for itemId, qty := range componentNeeds {
			if err := models.RestockItem(ctx, tx, itemId, qty); err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", orderId).
			UpdateColumn("current_status", models.OrderStatusCancelled).Error; err != nil {
			return err
		}
		if order.PaymentTerms == models.PaymentTermsCredit {
			description := fmt.Sprintf("Cancellation of order #%d", orderId)
			if reason != "" {
				description = fmt.Sprintf("%s: %s", description, reason)
			}
			if _, err := appendEntryLocked(ctx, tx, order.CustomerId, time.Now(),
				models.LedgerSourceReversal, orderId, description, order.TotalPrice); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return models.GetOrder(ctx, orderId)
}
