package catalog

import (
	"github.com/shopspring/decimal"
)

// Stock availability literals as they appear in the stock table.
const (
	AvailabilityTrue  = "True"
	AvailabilityFalse = "False"
)

type Product struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// StockRecord keeps the raw availability literal; only "False" means out of stock.
type StockRecord struct {
	ProductID    string `json:"product_id"`
	Availability string `json:"availability"`
}

// EnrichedProduct is a Product joined with its stock status. Key is unique per
// catalog position, so repeated product ids still render as distinct rows.
type EnrichedProduct struct {
	Product
	InStock  bool   `json:"in_stock"`
	Key      string `json:"key"`
	Position int    `json:"position"`
}

// InStock resolves availability default-open: a missing record or any value
// other than exactly "False" counts as available.
func InStock(rec StockRecord, found bool) bool {
	return !(found && rec.Availability == AvailabilityFalse)
}

func knownAvailability(v string) bool {
	switch v {
	case "", AvailabilityTrue, AvailabilityFalse:
		return true
	}
	return false
}
