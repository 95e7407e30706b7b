package models

import "github.com/shopspring/decimal"

type InventoryItem struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Quantity    float64         `json:"quantity"`
	Unit        string          `json:"unit"`
	MinQuantity float64         `json:"min_quantity"`
	Price       decimal.Decimal `json:"price"`
	LastUpdated Timestamp       `json:"last_updated"`
	CreatedAt   Timestamp       `json:"created_at"`
	UpdatedAt   Timestamp       `json:"updated_at"`
}

// StockStatus is always derived from the quantities; inventory rows carry
// no server status.
func (i InventoryItem) StockStatus() StockStatus {
	return DeriveStockStatus(i.Quantity, i.MinQuantity)
}

// InventoryItemCreate doubles as the add/edit dialog form.
type InventoryItemCreate struct {
	Name        string          `json:"name" validate:"required"`
	Category    string          `json:"category" validate:"required"`
	Quantity    float64         `json:"quantity" validate:"gte=0"`
	Unit        string          `json:"unit" validate:"required"`
	MinQuantity float64         `json:"min_quantity" validate:"gte=0"`
	Price       decimal.Decimal `json:"price"`
}

type InventoryItemUpdate struct {
	Name        *string          `json:"name,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Quantity    *float64         `json:"quantity,omitempty"`
	Unit        *string          `json:"unit,omitempty"`
	MinQuantity *float64         `json:"min_quantity,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
}

// FullUpdate turns a complete form into an update that sets every field.
func (c InventoryItemCreate) FullUpdate() InventoryItemUpdate {
	return InventoryItemUpdate{
		Name:        &c.Name,
		Category:    &c.Category,
		Quantity:    &c.Quantity,
		Unit:        &c.Unit,
		MinQuantity: &c.MinQuantity,
		Price:       &c.Price,
	}
}

// Form returns the dialog form prefilled from an existing row.
func (i InventoryItem) Form() InventoryItemCreate {
	return InventoryItemCreate{
		Name:        i.Name,
		Category:    i.Category,
		Quantity:    i.Quantity,
		Unit:        i.Unit,
		MinQuantity: i.MinQuantity,
		Price:       i.Price,
	}
}

type InventoryStats struct {
	TotalItems      int `json:"total_items"`
	LowStockCount   int `json:"low_stock_count"`
	OutOfStockCount int `json:"out_of_stock_count"`
}
