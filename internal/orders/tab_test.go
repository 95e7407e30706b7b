package orders

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"bizup-dashboard/internal/apitest"
	"bizup-dashboard/internal/audit"
	"bizup-dashboard/internal/dashboard"
	"bizup-dashboard/internal/models"
	"bizup-dashboard/internal/toast"
	"bizup-dashboard/internal/validation"
)

func seed(fake *apitest.Server) {
	fake.Update(func(s *apitest.State) {
		s.Recommendations = []models.OrderRecommendation{
			{ID: 1, Name: "우유", RecommendedQty: 20, Unit: "L", Priority: models.PriorityHigh, EstimatedCost: decimal.NewFromInt(1000)},
			{ID: 2, Name: "원두", RecommendedQty: 5, Unit: "kg", Priority: models.PriorityHigh, EstimatedCost: decimal.NewFromInt(2500)},
			{ID: 3, Name: "설탕", RecommendedQty: 10, Unit: "kg", Priority: models.PriorityMedium, EstimatedCost: decimal.NewFromInt(700)},
			{ID: 4, Name: "컵", RecommendedQty: 100, Unit: "개", Priority: models.PriorityLow, EstimatedCost: decimal.NewFromInt(300)},
		}
	})
}

type fixture struct {
	fake   *apitest.Server
	tab    *Tab
	toasts *toast.Feed
	audit  *audit.MemoryRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := apitest.New(t)
	seed(fake)
	f := &fixture{fake: fake, toasts: toast.NewFeed(), audit: audit.NewMemoryRecorder(0)}
	f.tab = New(NewAPI(fake.Client()), dashboard.Deps{Toasts: f.toasts, Audit: f.audit})
	t.Cleanup(f.tab.Close)
	if err := f.tab.Open(context.Background()); err != nil {
		t.Fatalf("Expected tab to open, got %v", err)
	}
	return f
}

func TestView_CountsPerPriority(t *testing.T) {
	f := newFixture(t)
	v := f.tab.View()

	expected := PriorityCounts{High: 2, Medium: 1, Low: 1}
	if v.Counts != expected {
		t.Errorf("Expected counts %+v, got %+v", expected, v.Counts)
	}
	if v.Items[0].PriorityLabel != "높음" || v.Items[2].PriorityLabel != "보통" || v.Items[3].PriorityLabel != "낮음" {
		t.Errorf("Expected priority labels, got %+v", v.Items)
	}
	if v.SelectedCount != 0 || !v.SelectedTotal.IsZero() {
		t.Errorf("Expected empty selection, got %d / %s", v.SelectedCount, v.SelectedTotal)
	}
}

func TestToggle_SelectedTotal(t *testing.T) {
	f := newFixture(t)

	testCases := []struct {
		name     string
		toggle   int64
		selected bool
		total    int64
	}{
		{"select first", 1, true, 1000},
		{"select second", 2, true, 3500},
		{"deselect first", 1, false, 2500},
		{"select fourth", 4, true, 2800},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			selected, err := f.tab.Toggle(tc.toggle)
			if err != nil {
				t.Fatalf("Expected toggle to succeed, got %v", err)
			}
			if selected != tc.selected {
				t.Errorf("Expected selected=%v, got %v", tc.selected, selected)
			}
			if total := f.tab.View().SelectedTotal; !total.Equal(decimal.NewFromInt(tc.total)) {
				t.Errorf("Expected total %d, got %s", tc.total, total)
			}
		})
	}

	if _, err := f.tab.Toggle(99); !validation.IsValidation(err) {
		t.Errorf("Expected validation error for an unlisted id, got %v", err)
	}

	f.tab.ClearSelection()
	if v := f.tab.View(); v.SelectedCount != 0 || !v.SelectedTotal.IsZero() {
		t.Errorf("Expected cleared selection, got %d / %s", v.SelectedCount, v.SelectedTotal)
	}
}

func TestSubmit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.tab.Submit(ctx); !validation.IsValidation(err) {
		t.Errorf("Expected validation error for empty selection, got %v", err)
	}
	if n := f.fake.Count("POST", "/orders"); n != 0 {
		t.Errorf("Expected no order request, got %d", n)
	}
	f.toasts.Drain()

	f.tab.Toggle(1)
	f.tab.Toggle(3)

	f.fake.Fail("POST", "/orders", 500, "db down")
	if _, err := f.tab.Submit(ctx); err == nil {
		t.Fatal("Expected failed order to return an error")
	}
	if got := f.toasts.Drain(); len(got) != 1 || got[0].Message != msgOrderFailed {
		t.Errorf("Expected order failure toast, got %+v", got)
	}
	if v := f.tab.View(); v.SelectedCount != 2 || v.Submitting {
		t.Errorf("Expected selection kept and submitting cleared, got %+v", v)
	}

	f.fake.Recover("POST", "/orders")
	resp, err := f.tab.Submit(ctx)
	if err != nil {
		t.Fatalf("Expected order to succeed, got %v", err)
	}
	if !resp.TotalCost.Equal(decimal.NewFromInt(1700)) {
		t.Errorf("Expected total cost 1700, got %s", resp.TotalCost)
	}

	orders := f.fake.Snapshot().Orders
	if len(orders) != 1 || len(orders[0].Items) != 2 {
		t.Fatalf("Expected one order with two items, got %+v", orders)
	}
	first := orders[0].Items[0]
	if first.InventoryItemID != 1 || first.Quantity != 20 || first.Priority != models.PriorityHigh {
		t.Errorf("Expected recommended quantity and priority, got %+v", first)
	}

	if got := f.toasts.Drain(); len(got) != 1 || got[0].Message != "2개의 상품을 발주했습니다." {
		t.Errorf("Expected order success toast, got %+v", got)
	}
	v := f.tab.View()
	if v.SelectedCount != 0 || len(v.Items) != 2 {
		t.Errorf("Expected cleared selection and reloaded list, got %+v", v)
	}
	logs, _ := f.audit.List(ctx, "order", 0)
	if len(logs) != 1 || logs[0].Action != models.ActivityOrder {
		t.Errorf("Expected one order activity, got %+v", logs)
	}
}

func TestRefresh_PrunesSelection(t *testing.T) {
	f := newFixture(t)
	f.tab.Toggle(1)
	f.tab.Toggle(2)

	f.fake.Update(func(s *apitest.State) {
		s.Recommendations = s.Recommendations[1:]
	})
	if err := f.tab.Refresh(context.Background()); err != nil {
		t.Fatalf("Expected refresh to succeed, got %v", err)
	}
	v := f.tab.View()
	if len(v.SelectedIDs) != 1 || v.SelectedIDs[0] != 2 {
		t.Errorf("Expected only id 2 selected, got %v", v.SelectedIDs)
	}
}

func TestOpen_LoadFailure(t *testing.T) {
	fake := apitest.New(t)
	fake.Fail("GET", "/orders/recommendations", 503, "")
	feed := toast.NewFeed()
	tab := New(NewAPI(fake.Client()), dashboard.Deps{Toasts: feed})
	defer tab.Close()

	if err := tab.Open(context.Background()); err == nil {
		t.Fatal("Expected open to report the load failure")
	}
	if got := feed.Drain(); len(got) != 1 || got[0].Message != msgLoadFailed {
		t.Errorf("Expected load failure toast, got %+v", got)
	}
	if v := tab.View(); v.Error == "" || v.Loading {
		t.Errorf("Expected error set and loading cleared, got %+v", v)
	}
}

func TestRoutes(t *testing.T) {
	fake := apitest.New(t)
	seed(fake)
	shell := dashboard.NewShell(nil, nil)
	shell.Register(dashboard.TabOrder, func() dashboard.Tab {
		return New(NewAPI(fake.Client()), dashboard.Deps{Toasts: shell.Toasts()})
	})
	t.Cleanup(shell.Close)

	app := fiber.New()
	RegisterRoutes(app.Group("/api"), shell)

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/orders", nil))
	if resp.StatusCode != fiber.StatusConflict {
		t.Errorf("Expected 409 before activation, got %d", resp.StatusCode)
	}

	if err := shell.Activate(context.Background(), dashboard.TabOrder); err != nil {
		t.Fatalf("Expected activation, got %v", err)
	}

	testCases := []struct {
		method   string
		path     string
		expected int
	}{
		{"POST", "/api/orders", fiber.StatusBadRequest},
		{"POST", "/api/orders/selection/abc", fiber.StatusBadRequest},
		{"POST", "/api/orders/selection/2", fiber.StatusOK},
		{"POST", "/api/orders/selection/4", fiber.StatusOK},
		{"POST", "/api/orders", fiber.StatusCreated},
		{"DELETE", "/api/orders/selection", fiber.StatusOK},
		{"POST", "/api/orders/refresh", fiber.StatusOK},
	}
	for _, tc := range testCases {
		resp, err := app.Test(httptest.NewRequest(tc.method, tc.path, nil))
		if err != nil {
			t.Fatalf("%s %s: %v", tc.method, tc.path, err)
		}
		if resp.StatusCode != tc.expected {
			t.Errorf("%s %s: expected %d, got %d", tc.method, tc.path, tc.expected, resp.StatusCode)
		}
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/api/orders", nil))
	var v View
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("Expected view JSON, got %s", raw)
	}
	if len(v.Items) != 2 {
		t.Errorf("Expected ordered items removed from recommendations, got %d", len(v.Items))
	}
}
