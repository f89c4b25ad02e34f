package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/enescc00/b2bsitesibitmis-sub000/config"
	"github.com/enescc00/b2bsitesibitmis-sub000/utils"
	"github.com/shopspring/decimal"
)

// Customer balance sign convention: negative = customer owes the business,
// positive = the business owes the customer. Same convention as ledger entries.
type Customer struct {
	ID                    int             `gorm:"primary_key" json:"id"`
	Name                  string          `gorm:"size:100;not null" json:"name"`
	Kind                  CustomerKind    `gorm:"type:enum('individual','corporate');default:'individual';not null" json:"kind"`
	TaxNumber             string          `gorm:"size:20" json:"tax_number"`
	Email                 string          `gorm:"size:100" json:"email"`
	Phone                 string          `gorm:"size:20" json:"phone"`
	PaymentTerms          PaymentTerms    `gorm:"type:enum('cash','credit');default:'cash';not null" json:"payment_terms"`
	PriceListId           *int            `gorm:"index" json:"price_list_id"`
	CreditLimit           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"credit_limit"`
	OpeningBalance        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"opening_balance"`
	CurrentAccountBalance decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"current_account_balance"`
	IsActive              *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt             time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name           string          `json:"name" binding:"required"`
	Kind           CustomerKind    `json:"kind" binding:"required"`
	TaxNumber      string          `json:"tax_number"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	PaymentTerms   PaymentTerms    `json:"payment_terms" binding:"required"`
	PriceListId    *int            `json:"price_list_id"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewCustomer) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Customer](ctx, id); err != nil {
			return err
		}
	}
	if !input.Kind.Valid() {
		return fmt.Errorf("kind must be individual or corporate, got %q", input.Kind)
	}
	if !input.PaymentTerms.Valid() {
		return fmt.Errorf("payment_terms must be cash or credit, got %q", input.PaymentTerms)
	}
	if input.Kind == CustomerKindCorporate && input.TaxNumber == "" {
		return errors.New("tax_number is required for corporate customers")
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return errors.New("email is not valid")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return fmt.Errorf("phone: %w", err)
		}
	}
	if input.CreditLimit.IsNegative() {
		return errors.New("credit_limit cannot be negative")
	}
	if input.PriceListId != nil {
		if err := utils.ValidateResourceId[PriceList](ctx, *input.PriceListId); err != nil {
			return errors.New("price_list_id not found")
		}
	}
	return nil
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	customer := Customer{
		Name:                  input.Name,
		Kind:                  input.Kind,
		TaxNumber:             input.TaxNumber,
		Email:                 input.Email,
		Phone:                 input.Phone,
		PaymentTerms:          input.PaymentTerms,
		PriceListId:           input.PriceListId,
		CreditLimit:           input.CreditLimit,
		OpeningBalance:        input.OpeningBalance,
		CurrentAccountBalance: input.OpeningBalance,
		IsActive:              utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// UpdateCustomer never touches balances; those move only through ledger posting.
func UpdateCustomer(ctx context.Context, id int, input *NewCustomer) (*Customer, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	customer, err := utils.FetchModel[Customer](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(customer).Updates(map[string]interface{}{
		"Name":         input.Name,
		"Kind":         input.Kind,
		"TaxNumber":    input.TaxNumber,
		"Email":        input.Email,
		"Phone":        input.Phone,
		"PaymentTerms": input.PaymentTerms,
		"PriceListId":  input.PriceListId,
		"CreditLimit":  input.CreditLimit,
	}).Error
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	return utils.FetchModel[Customer](ctx, id)
}

func GetCustomers(ctx context.Context) ([]*Customer, error) {
	return utils.FetchAllModels[Customer](ctx)
}

// AvailableCredit is what checkout checks before accepting another credit order.
// Balance is signed, so a customer owing 500 with a 2000 limit has 1500 left.
func (c *Customer) AvailableCredit() decimal.Decimal {
	return c.CreditLimit.Add(c.CurrentAccountBalance)
}
