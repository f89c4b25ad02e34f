package main

import (
	"context"
	"net/http"

	"github.com/enescc00/b2bsitesibitmis-sub000/config"
	"github.com/enescc00/b2bsitesibitmis-sub000/models"
	"github.com/enescc00/b2bsitesibitmis-sub000/pricing"
	"github.com/enescc00/b2bsitesibitmis-sub000/utils"
	"github.com/enescc00/b2bsitesibitmis-sub000/workflow"
	"github.com/gin-gonic/gin"
)

func registerRoutes(router *gin.Engine) {
	router.GET("/healthz", healthHandler)

	api := router.Group("/api")

	api.POST("/cost-rollup", costRollupHandler)

	api.POST("/inventory-items", createHandler(models.CreateInventoryItem))
	api.PUT("/inventory-items/:id", updateHandler(models.UpdateInventoryItem))
	api.GET("/inventory-items", listHandler(models.GetInventoryItems))
	api.GET("/inventory-items/:id", getHandler(models.GetInventoryItem))

	api.POST("/product-trees", createHandler(models.CreateProductTree))
	api.PUT("/product-trees/:id", updateHandler(models.UpdateProductTree))
	api.GET("/product-trees", listHandler(models.GetProductTrees))
	api.GET("/product-trees/:id", getHandler(models.GetProductTree))

	api.POST("/products", createHandler(models.CreateProduct))
	api.PUT("/products/:id", updateHandler(models.UpdateProduct))
	api.GET("/products", listHandler(models.GetProducts))
	api.GET("/products/:id", getHandler(models.GetProduct))
	api.POST("/products/:id/recalculate", recalculateProductHandler)

	api.POST("/price-lists", createHandler(models.CreatePriceList))
	api.PUT("/price-lists/:id", updateHandler(models.UpdatePriceList))
	api.GET("/price-lists", listHandler(models.GetPriceLists))
	api.GET("/price-lists/:id", getHandler(models.GetPriceList))
	api.DELETE("/price-lists/:id", deletePriceListHandler)

	api.POST("/customers", createHandler(models.CreateCustomer))
	api.PUT("/customers/:id", updateHandler(models.UpdateCustomer))
	api.GET("/customers", listHandler(models.GetCustomers))
	api.GET("/customers/:id", getHandler(models.GetCustomer))
	api.GET("/customers/:id/price/:productId", resolvePriceHandler)
	api.GET("/customers/:id/balance", balanceHandler)
	api.GET("/customers/:id/statement", statementHandler)
	api.GET("/customers/:id/statement.xlsx", statementExportHandler)
	api.GET("/customers/:id/verify-ledger", verifyLedgerHandler)

	api.POST("/orders", createHandler(workflow.PostCreditOrder))
	api.POST("/orders/:id/cancel", cancelOrderHandler)
	api.POST("/payments", createHandler(workflow.PostCustomerPayment))
	api.POST("/returns", createHandler(workflow.CreateReturnRequest))
	api.POST("/returns/:id/approve", returnDecisionHandler(workflow.ApproveReturn))
	api.POST("/returns/:id/reject", returnDecisionHandler(workflow.RejectReturn))
	api.POST("/adjustments", adjustmentHandler)
	api.POST("/ledger-entries/:id/reverse", reverseEntryHandler)

	api.GET("/settings", settingsHandler)
	api.PUT("/settings", updateSettingsHandler)
}

// healthHandler is the readiness probe: MySQL must answer; Redis is checked
// only when configured, since cache and locks degrade without it.
func healthHandler(c *gin.Context) {
	sqlDB, err := config.GetDB().DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": err.Error()})
		return
	}
	if rdb := config.GetRedisDB(); rdb != nil {
		if err := rdb.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// costRollupRequest matches the checkout boundary shape. "TL" is the UI's name
// for the base currency.
type costRollupRequest struct {
	Components     []pricing.ComponentLine `json:"components" binding:"required"`
	TargetTerm     int                     `json:"targetTerm"`
	TargetCurrency string                  `json:"targetCurrency" binding:"required"`
}

func normalizeCurrency(code string) pricing.CurrencyCode {
	if code == "TL" {
		return pricing.CurrencyTRY
	}
	return pricing.CurrencyCode(code)
}

func costRollupHandler(c *gin.Context) {
	var req costRollupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	cfg, err := models.LoadPricingConfig(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	total, err := models.NewRollupEngine(cfg).Rollup(ctx, req.Components, normalizeCurrency(req.TargetCurrency), req.TargetTerm)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalCostTL": total.StringFixed(2)})
}

func recalculateProductHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	product, err := models.RecalculateProductPrice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func deletePriceListHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	list, err := models.DeletePriceList(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func resolvePriceHandler(c *gin.Context) {
	customerId, ok := pathId(c, "id")
	if !ok {
		return
	}
	productId, ok := pathId(c, "productId")
	if !ok {
		return
	}
	price, err := models.ResolveCustomerPrice(c.Request.Context(), productId, customerId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"salePrice": price.StringFixed(2)})
}

func balanceHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	balance, err := workflow.CurrentBalance(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"currentBalance": balance.StringFixed(2)})
}

func statementHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	statement, err := workflow.BuildStatement(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, statement)
}

func statementExportHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	file, err := workflow.ExportStatementXLSX(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", "attachment; filename=statement.xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(c.Writer); err != nil {
		config.LogError(config.GetLogger(), "handlers", "statementExportHandler", "write workbook", id, err)
	}
}

func verifyLedgerHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	if err := workflow.VerifyCustomerLedger(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"consistent": true})
}

func cancelOrderHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)

	order, err := workflow.CancelOrder(c.Request.Context(), id, body.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func returnDecisionHandler(decide func(ctx context.Context, id int) (*models.ReturnRecord, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		record, err := decide(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, record)
	}
}

func adjustmentHandler(c *gin.Context) {
	var body struct {
		CustomerId  int    `json:"customer_id" binding:"required"`
		Date        string `json:"date"`
		Description string `json:"description" binding:"required"`
		Amount      string `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := utils.ParseDecimalString(body.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount: " + err.Error()})
		return
	}
	date, err := parseDateOrNow(body.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date: " + err.Error()})
		return
	}

	entry, err := workflow.PostManualAdjustment(c.Request.Context(), body.CustomerId, date, body.Description, amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func reverseEntryHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)

	entry, err := workflow.ReverseLedgerEntry(c.Request.Context(), id, body.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func settingsHandler(c *gin.Context) {
	settings, rates, err := models.GetSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"monthlyInterestRate":   settings.MonthlyInterestRate,
		"shippingFreeThreshold": settings.ShippingFreeThreshold,
		"currencyRates":         rates,
	})
}

func updateSettingsHandler(c *gin.Context) {
	var input models.NewSettings
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	settings, err := models.UpdateSettings(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
