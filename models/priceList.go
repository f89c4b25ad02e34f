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

// PriceList bundles discount rules assignable to customers. Discounts are
// validated here, at write time; resolution (pricing.ResolveSalePrice) trusts
// stored data.
type PriceList struct {
	ID                       int                          `gorm:"primary_key" json:"id"`
	Name                     string                       `gorm:"uniqueIndex;size:100;not null" json:"name"`
	GlobalDiscountPercentage decimal.Decimal              `gorm:"type:decimal(10,4);default:0" json:"global_discount_percentage"`
	CategoryDiscounts        []*PriceListCategoryDiscount `gorm:"foreignKey:PriceListId" json:"category_discounts"`
	ProductPrices            []*PriceListProductPrice     `gorm:"foreignKey:PriceListId" json:"product_prices"`
	CreatedAt                time.Time                    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time                    `gorm:"autoUpdateTime" json:"updated_at"`
}

type PriceListCategoryDiscount struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	PriceListId        int             `gorm:"index;not null" json:"price_list_id"`
	Category           string          `gorm:"size:50;not null" json:"category"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"discount_percentage"`
}

type PriceListProductPrice struct {
	ID          int             `gorm:"primary_key" json:"id"`
	PriceListId int             `gorm:"index;not null" json:"price_list_id"`
	ProductId   int             `gorm:"index;not null" json:"product_id"`
	Price       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price"`
}

type NewPriceList struct {
	Name                     string                 `json:"name" binding:"required"`
	GlobalDiscountPercentage decimal.Decimal        `json:"global_discount_percentage"`
	CategoryDiscounts        []NewCategoryDiscount  `json:"category_discounts"`
	ProductPrices            []NewProductPriceEntry `json:"product_prices"`
}

type NewCategoryDiscount struct {
	Category           string          `json:"category" binding:"required"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
}

type NewProductPriceEntry struct {
	ProductId int             `json:"product_id" binding:"required"`
	Price     decimal.Decimal `json:"price"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewPriceList) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[PriceList](ctx, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateUnique[PriceList](ctx, "name", input.Name, id); err != nil {
		return err
	}
	if err := pricing.ValidateDiscountPercentage("global_discount_percentage", input.GlobalDiscountPercentage); err != nil {
		return err
	}

	seenCategories := map[string]bool{}
	for _, cd := range input.CategoryDiscounts {
		if seenCategories[cd.Category] {
			return fmt.Errorf("%w: duplicate category %q", pricing.ErrInvalidDiscount, cd.Category)
		}
		seenCategories[cd.Category] = true
		if err := pricing.ValidateDiscountPercentage("category_discounts."+cd.Category, cd.DiscountPercentage); err != nil {
			return err
		}
	}

	seenProducts := map[int]bool{}
	productIds := make([]int, 0, len(input.ProductPrices))
	for _, pp := range input.ProductPrices {
		if seenProducts[pp.ProductId] {
			return fmt.Errorf("%w: duplicate product %d", pricing.ErrInvalidDiscount, pp.ProductId)
		}
		seenProducts[pp.ProductId] = true
		if pp.Price.IsNegative() {
			return fmt.Errorf("%w: product_prices.%d price cannot be negative", pricing.ErrInvalidDiscount, pp.ProductId)
		}
		productIds = append(productIds, pp.ProductId)
	}
	if len(productIds) > 0 {
		if err := utils.ValidateResourcesId[Product](ctx, productIds); err != nil {
			return errors.New("product in product_prices not found")
		}
	}
	return nil
}

func CreatePriceList(ctx context.Context, input *NewPriceList) (*PriceList, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	list := PriceList{
		Name:                     input.Name,
		GlobalDiscountPercentage: input.GlobalDiscountPercentage,
	}
	for _, cd := range input.CategoryDiscounts {
		list.CategoryDiscounts = append(list.CategoryDiscounts, &PriceListCategoryDiscount{
			Category:           cd.Category,
			DiscountPercentage: cd.DiscountPercentage,
		})
	}
	for _, pp := range input.ProductPrices {
		list.ProductPrices = append(list.ProductPrices, &PriceListProductPrice{
			ProductId: pp.ProductId,
			Price:     pp.Price,
		})
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&list).Error; err != nil {
		return nil, err
	}
	return GetPriceList(ctx, list.ID)
}

func UpdatePriceList(ctx context.Context, id int, input *NewPriceList) (*PriceList, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	list, err := utils.FetchModel[PriceList](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(list).Updates(map[string]interface{}{
			"Name":                     input.Name,
			"GlobalDiscountPercentage": input.GlobalDiscountPercentage,
		}).Error; err != nil {
			return err
		}
		if err := tx.Where("price_list_id = ?", id).Delete(&PriceListCategoryDiscount{}).Error; err != nil {
			return err
		}
		if err := tx.Where("price_list_id = ?", id).Delete(&PriceListProductPrice{}).Error; err != nil {
			return err
		}
		for _, cd := range input.CategoryDiscounts {
			row := PriceListCategoryDiscount{PriceListId: id, Category: cd.Category, DiscountPercentage: cd.DiscountPercentage}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		for _, pp := range input.ProductPrices {
			row := PriceListProductPrice{PriceListId: id, ProductId: pp.ProductId, Price: pp.Price}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetPriceList(ctx, id)
}

func DeletePriceList(ctx context.Context, id int) (*PriceList, error) {
	list, err := GetPriceList(ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	// check if the price list is assigned
	var count int64
	if err := db.WithContext(ctx).Model(&Customer{}).
		Where("price_list_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("price list is assigned to customers")
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("price_list_id = ?", id).Delete(&PriceListCategoryDiscount{}).Error; err != nil {
			return err
		}
		if err := tx.Where("price_list_id = ?", id).Delete(&PriceListProductPrice{}).Error; err != nil {
			return err
		}
		return tx.Delete(&PriceList{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func GetPriceList(ctx context.Context, id int) (*PriceList, error) {
	return utils.FetchModel[PriceList](ctx, id, "CategoryDiscounts", "ProductPrices")
}

func GetPriceLists(ctx context.Context) ([]*PriceList, error) {
	return utils.FetchAllModels[PriceList](ctx, "CategoryDiscounts", "ProductPrices")
}

// toPricingView maps stored rows into the resolver's plain shape.
func (l *PriceList) toPricingView() *pricing.PriceList {
	view := &pricing.PriceList{
		GlobalDiscountPercentage: l.GlobalDiscountPercentage,
		CategoryDiscounts:        make(map[string]decimal.Decimal, len(l.CategoryDiscounts)),
		ProductPrices:            make(map[int]decimal.Decimal, len(l.ProductPrices)),
	}
	for _, cd := range l.CategoryDiscounts {
		view.CategoryDiscounts[cd.Category] = cd.DiscountPercentage
	}
	for _, pp := range l.ProductPrices {
		view.ProductPrices[pp.ProductId] = pp.Price
	}
	return view
}

// ResolveCustomerPrice is the checkout-facing price: the product's sale price
// run through the customer's assigned price list, if any.
func ResolveCustomerPrice(ctx context.Context, productId int, customerId int) (decimal.Decimal, error) {
	product, err := GetProduct(ctx, productId)
	if err != nil {
		return decimal.Zero, err
	}
	customer, err := GetCustomer(ctx, customerId)
	if err != nil {
		return decimal.Zero, err
	}

	var view *pricing.PriceList
	if customer.PriceListId != nil {
		list, err := GetPriceList(ctx, *customer.PriceListId)
		if err != nil {
			return decimal.Zero, err
		}
		view = list.toPricingView()
	}

	return pricing.ResolveSalePrice(product.ID, product.Category, product.SalePrice, view), nil
}
