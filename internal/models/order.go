package models

import "github.com/shopspring/decimal"

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "높음"
	case PriorityMedium:
		return "보통"
	case PriorityLow:
		return "낮음"
	default:
		return ""
	}
}

type OrderRecommendation struct {
	ID                  int64           `json:"id"`
	Name                string          `json:"name"`
	CurrentStock        float64         `json:"current_stock"`
	MinStock            float64         `json:"min_stock"`
	AvgDaily            float64         `json:"avg_daily"`
	RecommendedQty      float64         `json:"recommended_qty"`
	Unit                string          `json:"unit"`
	Priority            Priority        `json:"priority"`
	EstimatedCost       decimal.Decimal `json:"estimated_cost"`
	DaysUntilOutOfStock float64         `json:"days_until_out_of_stock"`
}

type OrderItemCreate struct {
	InventoryItemID int64    `json:"inventory_item_id"`
	Quantity        float64  `json:"quantity"`
	Priority        Priority `json:"priority"`
}

type OrderCreate struct {
	Items []OrderItemCreate `json:"items"`
}

type OrderResponseItem struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Quantity   float64         `json:"quantity"`
	Unit       string          `json:"unit"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Priority   string          `json:"priority"`
}

type OrderResponse struct {
	ID        int64               `json:"id"`
	Status    string              `json:"status"`
	TotalCost decimal.Decimal     `json:"total_cost"`
	Items     []OrderResponseItem `json:"items"`
	CreatedAt Timestamp           `json:"created_at"`
	UpdatedAt Timestamp           `json:"updated_at"`
}
