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

// BusinessSettings is a single-row table: the knobs pricing depends on.
// The core never reads it directly; LoadPricingConfig snapshots it into an
// explicit pricing.Config per request.
type BusinessSettings struct {
	ID                    int             `gorm:"primary_key" json:"id"`
	MonthlyInterestRate   decimal.Decimal `gorm:"type:decimal(10,4);default:0" json:"monthly_interest_rate"`
	ShippingFreeThreshold decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"shipping_free_threshold"`
	UpdatedAt             time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type CurrencyRate struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Code      CurrencyCode    `gorm:"uniqueIndex;size:3;not null" json:"code"`
	Buy       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"buy"`
	Sell      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"sell"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSettings struct {
	MonthlyInterestRate   decimal.Decimal   `json:"monthly_interest_rate"`
	ShippingFreeThreshold decimal.Decimal   `json:"shipping_free_threshold"`
	CurrencyRates         []NewCurrencyRate `json:"currency_rates"`
}

type NewCurrencyRate struct {
	Code CurrencyCode    `json:"code" binding:"required"`
	Buy  decimal.Decimal `json:"buy" binding:"required"`
	Sell decimal.Decimal `json:"sell" binding:"required"`
}

const pricingConfigCacheKey = "pricing:config"

type cachedPricingConfig struct {
	MonthlyInterestRate   decimal.Decimal               `json:"monthly_interest_rate"`
	ShippingFreeThreshold decimal.Decimal               `json:"shipping_free_threshold"`
	Rates                 map[CurrencyCode]pricing.Rate `json:"rates"`
}

func (c cachedPricingConfig) toConfig() pricing.Config {
	return pricing.Config{
		MonthlyInterestRate:   c.MonthlyInterestRate,
		ShippingFreeThreshold: c.ShippingFreeThreshold,
		Rates:                 pricing.NewCurrencyTable(c.Rates),
	}
}

// LoadPricingConfig snapshots settings + rates, redis-cached for a minute.
// A missing settings row is a configuration fault, not a user error.
func LoadPricingConfig(ctx context.Context) (pricing.Config, error) {
	var cached cachedPricingConfig
	hit, err := config.GetRedisObject(pricingConfigCacheKey, &cached)
	if err == nil && hit {
		return cached.toConfig(), nil
	}

	db := config.GetDB()

	var settings BusinessSettings
	if err := db.WithContext(ctx).First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = errors.New("business settings row is missing")
		}
		config.LogConfigFault(config.GetLogger(), "models", "LoadPricingConfig", "load settings", nil, err)
		return pricing.Config{}, err
	}

	var rates []CurrencyRate
	if err := db.WithContext(ctx).Find(&rates).Error; err != nil {
		config.LogConfigFault(config.GetLogger(), "models", "LoadPricingConfig", "load currency rates", nil, err)
		return pricing.Config{}, err
	}

	cached = cachedPricingConfig{
		MonthlyInterestRate:   settings.MonthlyInterestRate,
		ShippingFreeThreshold: settings.ShippingFreeThreshold,
		Rates:                 make(map[CurrencyCode]pricing.Rate, len(rates)),
	}
	for _, r := range rates {
		cached.Rates[r.Code] = pricing.Rate{Buy: r.Buy, Sell: r.Sell}
	}

	_ = config.SetRedisObject(pricingConfigCacheKey, cached, time.Minute)
	return cached.toConfig(), nil
}

func GetSettings(ctx context.Context) (*BusinessSettings, []*CurrencyRate, error) {
	db := config.GetDB()
	var settings BusinessSettings
	if err := db.WithContext(ctx).First(&settings).Error; err != nil {
		return nil, nil, utils.ErrorRecordNotFound
	}
	rates, err := utils.FetchAllModels[CurrencyRate](ctx)
	if err != nil {
		return nil, nil, err
	}
	return &settings, rates, nil
}

// UpdateSettings upserts the settings row and replaces the rate table.
// sell < buy is a domain oddity worth surfacing but not a hard rule, so it is
// logged instead of rejected.
func UpdateSettings(ctx context.Context, input *NewSettings) (*BusinessSettings, error) {
	if input.MonthlyInterestRate.IsNegative() {
		return nil, errors.New("monthly_interest_rate cannot be negative")
	}
	if input.ShippingFreeThreshold.IsNegative() {
		return nil, errors.New("shipping_free_threshold cannot be negative")
	}
	seen := map[CurrencyCode]bool{}
	for _, r := range input.CurrencyRates {
		if !ValidCurrencyCode(r.Code) {
			return nil, fmt.Errorf("unsupported currency code %q", r.Code)
		}
		if seen[r.Code] {
			return nil, fmt.Errorf("duplicate currency rate for %s", r.Code)
		}
		seen[r.Code] = true
		if !r.Buy.IsPositive() || !r.Sell.IsPositive() {
			return nil, fmt.Errorf("rates for %s must be positive", r.Code)
		}
		if r.Sell.LessThan(r.Buy) {
			config.GetLogger().WithField("code", r.Code).
				Warnf("sell rate %s below buy rate %s", r.Sell, r.Buy)
		}
	}

	db := config.GetDB()
	var settings BusinessSettings
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&settings).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			settings = BusinessSettings{}
		}
		settings.MonthlyInterestRate = input.MonthlyInterestRate
		settings.ShippingFreeThreshold = input.ShippingFreeThreshold
		if err := tx.Save(&settings).Error; err != nil {
			return err
		}

		for _, r := range input.CurrencyRates {
			rate := CurrencyRate{Code: r.Code, Buy: r.Buy, Sell: r.Sell}
			var existing CurrencyRate
			err := tx.Where("code = ?", r.Code).First(&existing).Error
			if err == nil {
				if err := tx.Model(&existing).Updates(map[string]interface{}{
					"Buy":  r.Buy,
					"Sell": r.Sell,
				}).Error; err != nil {
					return err
				}
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err := tx.Create(&rate).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = config.DeleteRedisKey(pricingConfigCacheKey)

	// Rate changes silently invalidate every derived sale price.
	if err := FlagAllProductsStale(ctx); err != nil {
		config.LogError(config.GetLogger(), "models", "UpdateSettings", "flag stale products", nil, err)
	}

	return &settings, nil
}
