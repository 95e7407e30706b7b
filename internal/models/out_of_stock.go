package models

import "github.com/shopspring/decimal"

type OutOfStockStatus string

const (
	OutOfStockCritical OutOfStockStatus = "critical"
	OutOfStockWarning  OutOfStockStatus = "warning"
	OutOfStockRecent   OutOfStockStatus = "recent"
)

func (s OutOfStockStatus) Label() string {
	switch s {
	case OutOfStockCritical:
		return "급한"
	case OutOfStockWarning:
		return "중요"
	case OutOfStockRecent:
		return "최근"
	default:
		return ""
	}
}

type OutOfStockItem struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	Category       string           `json:"category"`
	DaysOutOfStock int              `json:"days_out_of_stock"`
	LastStock      float64          `json:"last_stock"`
	Unit           string           `json:"unit"`
	EstimatedLoss  decimal.Decimal  `json:"estimated_loss"`
	Status         OutOfStockStatus `json:"status"`
}

type RestockResponse struct {
	Message string        `json:"message"`
	Item    InventoryItem `json:"item"`
}
