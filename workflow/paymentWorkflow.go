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

type NewPayment struct {
	CustomerId  int             `json:"customer_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate time.Time       `json:"payment_date"`
	Reference   string          `json:"reference"`
}

// PostCustomerPayment records a received payment and credits the customer's
// account in the same serialized posting.
func PostCustomerPayment(ctx context.Context, input *NewPayment) (*models.Payment, error) {
	if !input.Amount.IsPositive() {
		return nil, errors.New("payment amount must be positive")
	}
	if err := utils.ValidateResourceId[models.Customer](ctx, input.CustomerId); err != nil {
		return nil, err
	}

	paymentDate := input.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	lock, err := utils.ObtainCustomerLock(ctx, input.CustomerId, "workflow", "PostCustomerPayment")
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Release(ctx) }()

	payment := models.Payment{
		CustomerId:  input.CustomerId,
		Amount:      input.Amount,
		PaymentDate: paymentDate,
		Reference:   input.Reference,
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		description := fmt.Sprintf("Payment #%d", payment.ID)
		if payment.Reference != "" {
			description = fmt.Sprintf("%s (%s)", description, payment.Reference)
		}
		_, err := appendEntryLocked(ctx, tx, input.CustomerId, paymentDate,
			models.LedgerSourcePayment, payment.ID, description, input.Amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
