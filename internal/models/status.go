package models

// StockStatus is the stock level label shown next to an inventory or menu row.
type StockStatus string

const (
	StockNormal     StockStatus = "normal"
	StockSufficient StockStatus = "sufficient"
	StockLow        StockStatus = "low"
	StockOutOfStock StockStatus = "out_of_stock"
)

// DeriveStockStatus is the one rule used wherever the API does not send a
// status: zero is out of stock, at or below the minimum is low.
func DeriveStockStatus(quantity, minQuantity float64) StockStatus {
	switch {
	case quantity == 0:
		return StockOutOfStock
	case quantity <= minQuantity:
		return StockLow
	default:
		return StockNormal
	}
}

// ResolveStockStatus trusts a server-provided status and only derives one
// when the server sent nothing.
func ResolveStockStatus(server StockStatus, quantity, minQuantity float64) StockStatus {
	if server != "" {
		return server
	}
	return DeriveStockStatus(quantity, minQuantity)
}

func (s StockStatus) Label() string {
	switch s {
	case StockNormal:
		return "정상"
	case StockSufficient:
		return "충분"
	case StockLow:
		return "부족"
	case StockOutOfStock:
		return "품절"
	default:
		return "알 수 없음"
	}
}
