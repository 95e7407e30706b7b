package models

import "github.com/shopspring/decimal"

type MenuItem struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Quantity    float64         `json:"quantity"`
	MinQuantity float64         `json:"min_quantity"`
	Unit        string          `json:"unit"`
	Price       decimal.Decimal `json:"price"`
	Status      StockStatus     `json:"status"`
	CreatedAt   Timestamp       `json:"created_at"`
	UpdatedAt   Timestamp       `json:"updated_at"`
}

func (m MenuItem) StockStatus() StockStatus {
	return ResolveStockStatus(m.Status, m.Quantity, m.MinQuantity)
}

type MenuUploadResponse struct {
	Success      bool     `json:"success"`
	Message      string   `json:"message"`
	ItemsCreated int      `json:"items_created"`
	ItemsUpdated int      `json:"items_updated"`
	Errors       []string `json:"errors,omitempty"`
}
