package main

import (
	"context"
	"log"

	"github.com/enescc00/b2bsitesibitmis-sub000/config"
	"github.com/enescc00/b2bsitesibitmis-sub000/models"
	"github.com/enescc00/b2bsitesibitmis-sub000/pricing"
	"github.com/enescc00/b2bsitesibitmis-sub000/utils"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Seeds a development database with a small but complete data set: rates,
// inventory, one manufactured product with its tree, a price list and two
// customers. Run once against an empty schema.
func main() {
	godotenv.Load()
	config.ConnectDatabaseWithRetry()
	config.ConnectRedis()

	ctx := context.Background()

	utils.ErrorPanic(config.GetDB().AutoMigrate(models.AllModels()...))

	if _, err := models.UpdateSettings(ctx, &models.NewSettings{
		MonthlyInterestRate:   decimal.NewFromInt(2),
		ShippingFreeThreshold: decimal.NewFromInt(10000),
		CurrencyRates: []models.NewCurrencyRate{
			{Code: pricing.CurrencyUSD, Buy: decimal.NewFromFloat(41.00), Sell: decimal.NewFromFloat(41.50)},
			{Code: pricing.CurrencyEUR, Buy: decimal.NewFromFloat(47.50), Sell: decimal.NewFromFloat(48.20)},
		},
	}); err != nil {
		log.Fatalf("seed settings: %v", err)
	}

	frame, err := models.CreateInventoryItem(ctx, &models.NewInventoryItem{
		Name:         "Steel frame",
		ItemCode:     "FRM-001",
		Quantity:     500,
		UnitPrice:    decimal.NewFromInt(100),
		Currency:     pricing.CurrencyTRY,
		PurchaseType: pricing.PurchaseTypeCash,
	})
	if err != nil {
		log.Fatalf("seed frame: %v", err)
	}

	motor, err := models.CreateInventoryItem(ctx, &models.NewInventoryItem{
		Name:         "Drive motor",
		ItemCode:     "MTR-001",
		Quantity:     200,
		UnitPrice:    decimal.NewFromInt(8),
		Currency:     pricing.CurrencyUSD,
		PurchaseType: pricing.PurchaseTypeTerm,
		TermMonths:   2,
	})
	if err != nil {
		log.Fatalf("seed motor: %v", err)
	}

	tree, err := models.CreateProductTree(ctx, &models.NewProductTree{
		Name: "Fan assembly",
		Components: []models.NewProductTreeComponent{
			{InventoryItemId: frame.ID, Quantity: 1},
			{InventoryItemId: motor.ID, Quantity: 2},
		},
	})
	if err != nil {
		log.Fatalf("seed tree: %v", err)
	}

	product, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:             "Industrial fan",
		Category:         "ventilation",
		ProductTreeId:    &tree.ID,
		MarginPercentage: decimal.NewFromInt(25),
	})
	if err != nil {
		log.Fatalf("seed product: %v", err)
	}
	if _, err := models.RecalculateProductPrice(ctx, product.ID); err != nil {
		log.Fatalf("price product: %v", err)
	}

	list, err := models.CreatePriceList(ctx, &models.NewPriceList{
		Name:                     "Dealer tier A",
		GlobalDiscountPercentage: decimal.NewFromInt(5),
		CategoryDiscounts: []models.NewCategoryDiscount{
			{Category: "ventilation", DiscountPercentage: decimal.NewFromInt(10)},
		},
	})
	if err != nil {
		log.Fatalf("seed price list: %v", err)
	}

	if _, err := models.CreateCustomer(ctx, &models.NewCustomer{
		Name:         "Yilmaz Hirdavat",
		Kind:         models.CustomerKindIndividual,
		Email:        "yilmaz@example.com",
		PaymentTerms: models.PaymentTermsCash,
	}); err != nil {
		log.Fatalf("seed cash customer: %v", err)
	}

	if _, err := models.CreateCustomer(ctx, &models.NewCustomer{
		Name:           "Demir Insaat A.S.",
		Kind:           models.CustomerKindCorporate,
		TaxNumber:      "1234567890",
		Email:          "satinalma@demirinsaat.example.com",
		PaymentTerms:   models.PaymentTermsCredit,
		PriceListId:    &list.ID,
		CreditLimit:    decimal.NewFromInt(50000),
		OpeningBalance: decimal.NewFromInt(-500),
	}); err != nil {
		log.Fatalf("seed credit customer: %v", err)
	}

	log.Println("development data seeded")
}
