package models

// AllModels is the AutoMigrate list; order matters for FK creation.
func AllModels() []interface{} {
	return []interface{}{
		&BusinessSettings{},
		&CurrencyRate{},
		&InventoryItem{},
		&InventoryHistory{},
		&ProductTree{},
		&ProductTreeComponent{},
		&Product{},
		&PriceList{},
		&PriceListCategoryDiscount{},
		&PriceListProductPrice{},
		&Customer{},
		&LedgerEntry{},
		&Order{},
		&OrderLine{},
		&Payment{},
		&ReturnRecord{},
		&ReturnLine{},
	}
}
