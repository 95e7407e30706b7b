package inventory

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"bizup-dashboard/internal/apiclient"
	"bizup-dashboard/internal/apitest"
	"bizup-dashboard/internal/audit"
	"bizup-dashboard/internal/dashboard"
	"bizup-dashboard/internal/models"
	"bizup-dashboard/internal/toast"
	"bizup-dashboard/internal/validation"
)

func seed(fake *apitest.Server) {
	fake.Update(func(s *apitest.State) {
		s.Inventory = []models.InventoryItem{
			{ID: 1, Name: "우유", Category: "유제품", Quantity: 5, MinQuantity: 10, Unit: "L", Price: decimal.NewFromInt(2500)},
			{ID: 2, Name: "원두", Category: "커피", Quantity: 0, MinQuantity: 3, Unit: "kg", Price: decimal.NewFromInt(18000)},
			{ID: 3, Name: "설탕", Category: "재료", Quantity: 20, MinQuantity: 5, Unit: "kg", Price: decimal.NewFromInt(3000)},
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

func rowByID(v View, id int64) (Row, bool) {
	for _, r := range v.Items {
		if r.ID == id {
			return r, true
		}
	}
	return Row{}, false
}

func TestOpen_DerivesStatus(t *testing.T) {
	f := newFixture(t)
	v := f.tab.View()

	if len(v.Items) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(v.Items))
	}
	testCases := []struct {
		id       int64
		status   models.StockStatus
		expected string
	}{
		{1, models.StockLow, "부족"},
		{2, models.StockOutOfStock, "품절"},
		{3, models.StockNormal, "정상"},
	}
	for _, tc := range testCases {
		r, _ := rowByID(v, tc.id)
		if r.Status != tc.status || r.StatusLabel != tc.expected {
			t.Errorf("Expected item %d to be %s/%s, got %s/%s", tc.id, tc.status, tc.expected, r.Status, r.StatusLabel)
		}
	}
	if v.Stats == nil || v.Stats.LowStockCount != 1 || v.Stats.OutOfStockCount != 1 || v.Stats.TotalItems != 3 {
		t.Errorf("Expected stats 3/1/1, got %+v", v.Stats)
	}
	if f.fake.Count("GET", "/inventory") != 1 {
		t.Errorf("Expected one list request, got %v", f.fake.Requests())
	}
	if reqs := f.fake.Requests(); !containsRequest(reqs, "GET /inventory?search=") {
		t.Errorf("Expected empty search to be sent, got %v", reqs)
	}
}

func containsRequest(reqs []string, want string) bool {
	for _, r := range reqs {
		if r == want {
			return true
		}
	}
	return false
}

func TestSetSearch(t *testing.T) {
	f := newFixture(t)

	if err := f.tab.SetSearch(context.Background(), "커피"); err != nil {
		t.Fatalf("Expected search to succeed, got %v", err)
	}
	v := f.tab.View()
	if len(v.Items) != 1 || v.Items[0].ID != 2 {
		t.Errorf("Expected only the coffee item, got %+v", v.Items)
	}
	if v.Search != "커피" {
		t.Errorf("Expected search to be kept, got %q", v.Search)
	}
}

func TestAdd_MissingFieldsStaysOpen(t *testing.T) {
	f := newFixture(t)
	form := Form{Name: "  ", Category: "유제품", Quantity: 3}

	err := f.tab.Add(context.Background(), form)
	if !validation.IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if f.fake.Count("POST", "/inventory") != 0 {
		t.Errorf("Expected no request for an invalid form")
	}
	v := f.tab.View()
	if !v.AddDialog.Open || v.AddDialog.Form.Category != "유제품" {
		t.Errorf("Expected dialog open with entered values, got %+v", v.AddDialog)
	}
	toasts := f.toasts.Drain()
	if len(toasts) != 1 || toasts[0].Message != msgAddMissing {
		t.Errorf("Expected missing-field toast, got %+v", toasts)
	}
}

func TestAdd_RoundTrip(t *testing.T) {
	f := newFixture(t)
	f.tab.OpenAdd()

	form := Form{Name: "바닐라 시럽", Category: "시럽", Quantity: 4, Unit: "병", MinQuantity: 2, Price: decimal.NewFromInt(9000)}
	if err := f.tab.Add(context.Background(), form); err != nil {
		t.Fatalf("Expected add to succeed, got %v", err)
	}

	v := f.tab.View()
	if v.AddDialog.Open {
		t.Errorf("Expected add dialog to close after success")
	}
	var created *Row
	for i := range v.Items {
		if v.Items[i].Name == "바닐라 시럽" {
			created = &v.Items[i]
		}
	}
	if created == nil {
		t.Fatalf("Expected created item in reloaded list, got %+v", v.Items)
	}
	if created.ID == 0 || created.Category != "시럽" || created.Unit != "병" || created.Quantity != 4 || !created.Price.Equal(form.Price) {
		t.Errorf("Expected submitted fields with server id, got %+v", created.InventoryItem)
	}
	if v.Stats == nil || v.Stats.TotalItems != 4 {
		t.Errorf("Expected stats reloaded to 4 items, got %+v", v.Stats)
	}

	toasts := f.toasts.Drain()
	if len(toasts) != 1 || toasts[0].Message != msgAddSuccess {
		t.Errorf("Expected success toast, got %+v", toasts)
	}
	logs, _ := f.audit.List(context.Background(), entityType, 10)
	if len(logs) != 1 || logs[0].Action != models.ActivityCreate || logs[0].EntityID != created.ID {
		t.Errorf("Expected create activity for the new item, got %+v", logs)
	}
}

func TestEdit_RejectedKeepsDialog(t *testing.T) {
	f := newFixture(t)
	if err := f.tab.OpenEdit(context.Background(), 1); err != nil {
		t.Fatalf("Expected edit dialog to open, got %v", err)
	}
	if v := f.tab.View(); v.EditDialog.Form.Name != "우유" || v.EditingID != 1 {
		t.Fatalf("Expected dialog prefilled from row 1, got %+v", v.EditDialog)
	}

	f.fake.Fail("PUT", "/inventory/1", 400, "수량이 올바르지 않습니다.")
	form := Form{Name: "저지방 우유", Category: "유제품", Quantity: 7, Unit: "L", MinQuantity: 10}
	err := f.tab.Edit(context.Background(), 1, form)

	apiErr, ok := apiclient.AsAPIError(err)
	if !ok || apiErr.StatusCode != 400 {
		t.Fatalf("Expected 400 APIError, got %v", err)
	}
	v := f.tab.View()
	if !v.EditDialog.Open || v.EditDialog.Submitting {
		t.Errorf("Expected dialog open and not submitting, got %+v", v.EditDialog)
	}
	if v.EditDialog.Form.Name != "저지방 우유" || v.EditDialog.Form.Quantity != 7 {
		t.Errorf("Expected entered values kept, got %+v", v.EditDialog.Form)
	}
	toasts := f.toasts.Drain()
	if len(toasts) != 1 || toasts[0].Level != toast.LevelError || toasts[0].Message != msgEditFailed {
		t.Errorf("Expected edit error toast, got %+v", toasts)
	}

	f.fake.Recover("PUT", "/inventory/1")
	if err := f.tab.Edit(context.Background(), 1, form); err != nil {
		t.Fatalf("Expected retry to succeed, got %v", err)
	}
	v = f.tab.View()
	if v.EditDialog.Open {
		t.Errorf("Expected dialog to close after successful retry")
	}
	if r, _ := rowByID(v, 1); r.Name != "저지방 우유" {
		t.Errorf("Expected updated row, got %+v", r.InventoryItem)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)

	f.fake.Fail("DELETE", "/inventory/3", 500, "")
	if err := f.tab.Delete(context.Background(), 3); err == nil {
		t.Fatal("Expected delete to fail")
	}
	if _, ok := rowByID(f.tab.View(), 3); !ok {
		t.Errorf("Expected row to remain after failed delete")
	}
	if got := f.toasts.Drain(); len(got) != 1 || got[0].Message != msgDeleteFailed {
		t.Errorf("Expected delete error toast, got %+v", got)
	}

	f.fake.Recover("DELETE", "/inventory/3")
	if err := f.tab.Delete(context.Background(), 3); err != nil {
		t.Fatalf("Expected delete to succeed, got %v", err)
	}
	if _, ok := rowByID(f.tab.View(), 3); ok {
		t.Errorf("Expected row to disappear after reload")
	}
}

func TestLoadFailureToast(t *testing.T) {
	fake := apitest.New(t)
	fake.Fail("GET", "/inventory", 503, "")
	feed := toast.NewFeed()
	tab := New(NewAPI(fake.Client()), dashboard.Deps{Toasts: feed})
	defer tab.Close()

	if err := tab.Open(context.Background()); err == nil {
		t.Fatal("Expected open to report the failed load")
	}
	v := tab.View()
	if v.Error != "Service Unavailable" || v.Loading {
		t.Errorf("Expected status text error and loading cleared, got %+v", v)
	}
	if got := feed.Drain(); len(got) != 1 || got[0].Message != msgLoadFailed {
		t.Errorf("Expected load error toast, got %+v", got)
	}
}

func TestRoutes(t *testing.T) {
	fake := apitest.New(t)
	seed(fake)
	shell := dashboard.NewShell(toast.NewFeed(), nil)
	shell.Register(dashboard.TabInventory, func() dashboard.Tab {
		return New(NewAPI(fake.Client()), dashboard.Deps{Toasts: shell.Toasts()})
	})
	t.Cleanup(shell.Close)
	if err := shell.Activate(context.Background(), dashboard.TabInventory); err != nil {
		t.Fatalf("Expected activation, got %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app.Group("/api"), shell)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/inventory", nil))
	if err != nil || resp.StatusCode != 200 {
		t.Fatalf("Expected 200, got %v %v", resp, err)
	}
	var v View
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &v); err != nil || len(v.Items) != 3 {
		t.Fatalf("Expected view with 3 items, got %s", body)
	}

	req := httptest.NewRequest("PUT", "/api/inventory/items/1", strings.NewReader(`{"name":"","category":"유제품","unit":"L"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("Expected 400 for missing name, got %d", resp.StatusCode)
	}
	var failed struct {
		Error string `json:"error"`
		View  View   `json:"view"`
	}
	body, _ = io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &failed); err != nil || !failed.View.EditDialog.Open || !strings.HasPrefix(failed.Error, msgEditMissing) {
		t.Errorf("Expected error with open edit dialog, got %s", body)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/api/inventory/export.xlsx", nil))
	if ct := resp.Header.Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("Expected xlsx content type, got %q", ct)
	}
}

func TestHandlers_MountIndividually(t *testing.T) {
	fake := apitest.New(t)
	seed(fake)
	shell := dashboard.NewShell(toast.NewFeed(), nil)
	shell.Register(dashboard.TabInventory, func() dashboard.Tab {
		return New(NewAPI(fake.Client()), dashboard.Deps{Toasts: shell.Toasts()})
	})
	t.Cleanup(shell.Close)
	if err := shell.Activate(context.Background(), dashboard.TabInventory); err != nil {
		t.Fatalf("Expected activation, got %v", err)
	}

	app := fiber.New()
	app.Get("/stock", ViewHandler(shell))
	app.Delete("/stock/:id", DeleteItemHandler(shell))

	resp, err := app.Test(httptest.NewRequest("GET", "/stock", nil))
	if err != nil || resp.StatusCode != 200 {
		t.Fatalf("Expected 200, got %v %v", resp, err)
	}
	resp, _ = app.Test(httptest.NewRequest("DELETE", "/stock/abc", nil))
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("Expected 400 for a bad id, got %d", resp.StatusCode)
	}
}
