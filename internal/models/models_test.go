package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDeriveStockStatus(t *testing.T) {
	testCases := []struct {
		name        string
		quantity    float64
		minQuantity float64
		expected    StockStatus
		label       string
	}{
		{"low stock", 5, 10, StockLow, "부족"},
		{"at minimum is low", 10, 10, StockLow, "부족"},
		{"out of stock", 0, 10, StockOutOfStock, "품절"},
		{"out of stock regardless of minimum", 0, 0, StockOutOfStock, "품절"},
		{"normal", 11, 10, StockNormal, "정상"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveStockStatus(tc.quantity, tc.minQuantity)
			if got != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, got)
			}
			if got.Label() != tc.label {
				t.Errorf("Expected label %s, got %s", tc.label, got.Label())
			}
		})
	}
}

func TestResolveStockStatus_TrustsServer(t *testing.T) {
	item := MenuItem{Quantity: 100, MinQuantity: 10, Status: StockLow}
	if got := item.StockStatus(); got != StockLow {
		t.Errorf("Expected server status low to be kept, got %s", got)
	}

	inv := InventoryItem{Quantity: 0, MinQuantity: 3}
	if got := inv.StockStatus(); got != StockOutOfStock {
		t.Errorf("Expected derived out_of_stock, got %s", got)
	}
}

func TestInventoryItem_IgnoresServerStatus(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		expected StockStatus
	}{
		{"zero quantity with normal status", `{"quantity":0,"min_quantity":10,"status":"normal"}`, StockOutOfStock},
		{"low quantity with sufficient status", `{"quantity":5,"min_quantity":10,"status":"sufficient"}`, StockLow},
		{"plenty with out_of_stock status", `{"quantity":50,"min_quantity":10,"status":"out_of_stock"}`, StockNormal},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var item InventoryItem
			if err := json.Unmarshal([]byte(tc.body), &item); err != nil {
				t.Fatalf("Expected item to decode, got %v", err)
			}
			if got := item.StockStatus(); got != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestTimestamp_Decode(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{"rfc3339", `"2024-03-01T09:30:00Z"`, time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)},
		{"naive with micros", `"2024-03-01T09:30:00.123456"`, time.Date(2024, 3, 1, 9, 30, 0, 123456000, time.UTC)},
		{"date only", `"2024-03-01"`, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"null", `null`, time.Time{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var ts Timestamp
			if err := json.Unmarshal([]byte(tc.input), &ts); err != nil {
				t.Fatalf("Expected %s to decode: %v", tc.input, err)
			}
			if !ts.Equal(tc.expected) {
				t.Errorf("Expected %v, got %v", tc.expected, ts.Time)
			}
		})
	}

	var ts Timestamp
	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Errorf("Expected error for unrecognized timestamp")
	}
}

func TestNotificationSettings_With(t *testing.T) {
	n := NotificationSettings{LowStock: true}
	updated := n.With(NotifyDailyReport, true)

	if !updated.DailyReport || !updated.LowStock {
		t.Errorf("Expected daily_report on and low_stock kept, got %+v", updated)
	}
	if n.DailyReport {
		t.Errorf("Expected original settings to stay unchanged")
	}

	body, err := json.Marshal(updated.Update())
	if err != nil {
		t.Fatalf("Expected update to marshal: %v", err)
	}
	expected := `{"low_stock":true,"out_of_stock":false,"order_reminder":false,"daily_report":true}`
	if string(body) != expected {
		t.Errorf("Expected %s, got %s", expected, body)
	}
}

func TestParseNotificationKey(t *testing.T) {
	if _, ok := ParseNotificationKey("daily_report"); !ok {
		t.Errorf("Expected daily_report to be a valid key")
	}
	if _, ok := ParseNotificationKey("weekly_report"); ok {
		t.Errorf("Expected weekly_report to be rejected")
	}
}

func TestTimestamp_KeepsSubSecondPrecision(t *testing.T) {
	in := Timestamp{Time: time.Date(2024, 3, 1, 9, 30, 0, 123456789, time.UTC)}
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Expected timestamp to encode, got %v", err)
	}
	var out Timestamp
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Expected timestamp to decode, got %v", err)
	}
	if !out.Equal(in.Time) {
		t.Errorf("Expected %s, got %s (encoded %s)", in.Time, out.Time, raw)
	}
}
