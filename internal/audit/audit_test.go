package audit

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"bizup-dashboard/internal/logger"
	"bizup-dashboard/internal/models"
)

func TestEncode(t *testing.T) {
	testCases := []struct {
		name     string
		in       any
		expected string
	}{
		{"nil", nil, "null"},
		{"map", map[string]int{"quantity": 3}, `{"quantity":3}`},
		{"unencodable", make(chan int), "null"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := encode(tc.in); got != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestMemoryRecorder(t *testing.T) {
	r := NewMemoryRecorder(3)
	ctx := logger.ContextWithRequestID(context.Background(), "req-1")

	for i := int64(1); i <= 4; i++ {
		entityType := "employee"
		if i%2 == 0 {
			entityType = "order"
		}
		r.Record(ctx, Entry{EntityType: entityType, EntityID: i, Action: models.ActivityCreate})
	}

	all, _ := r.List(ctx, "", DefaultListLimit)
	if len(all) != 3 {
		t.Fatalf("Expected 3 retained entries, got %d", len(all))
	}
	if all[0].EntityID != 4 || all[2].EntityID != 2 {
		t.Errorf("Expected newest first [4 3 2], got %d..%d", all[0].EntityID, all[2].EntityID)
	}
	if all[0].RequestID != "req-1" {
		t.Errorf("Expected request id to be recorded, got %q", all[0].RequestID)
	}
	if all[0].BeforeData != "null" {
		t.Errorf("Expected null before data, got %q", all[0].BeforeData)
	}

	orders, _ := r.List(ctx, "order", DefaultListLimit)
	if len(orders) != 2 {
		t.Errorf("Expected 2 order entries, got %d", len(orders))
	}
}

func TestListHandler(t *testing.T) {
	r := NewMemoryRecorder(0)
	r.Record(context.Background(), Entry{EntityType: "order", EntityID: 12, Action: models.ActivityOrder, Description: "2 items"})
	r.Record(context.Background(), Entry{EntityType: "employee", EntityID: 3, Action: models.ActivityDelete})

	app := fiber.New()
	app.Get("/api/activity", ListHandler(r))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/activity?entity_type=order", nil))
	if err != nil {
		t.Fatalf("Expected request to succeed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)

	var got []activityResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("Expected JSON list, got %s", body)
	}
	if len(got) != 1 || got[0].EntityID != 12 || got[0].Action != models.ActivityOrder {
		t.Errorf("Expected the single order entry, got %+v", got)
	}
}
