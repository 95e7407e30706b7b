// Package apitest runs an in-memory stand-in for the external REST API so
// package tests can exercise the real client and tabs end to end.
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bizup-dashboard/internal/apiclient"
	"bizup-dashboard/internal/models"
)

// State is the fake's data. Mutate it through Server.Update.
type State struct {
	Inventory       []models.InventoryItem
	Menus           []models.MenuItem
	Recommendations []models.OrderRecommendation
	OutOfStock      []models.OutOfStockItem
	Employees       []models.Employee
	Store           models.Store
	Notifications   models.NotificationSettings

	UploadResult models.MenuUploadResponse

	// Recorded by the handlers.
	Orders          []models.OrderCreate
	Restocks        map[int64]float64
	Uploads         []string
	NotificationPut []models.NotificationSettingsUpdate
}

type failure struct {
	status int
	body   string
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	state    State
	nextID   int64
	failures map[string]failure
	requests []string
	gates    map[string]chan struct{}
}

func New(t testing.TB) *Server {
	s := &Server{
		nextID:   1000,
		failures: map[string]failure{},
		gates:    map[string]chan struct{}{},
		state: State{
			Restocks:     map[int64]float64{},
			UploadResult: models.MenuUploadResponse{Success: true, Message: "ok", ItemsCreated: 1},
		},
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// Client returns an apiclient pointed at the fake.
func (s *Server) Client(opts ...apiclient.Option) *apiclient.Client {
	return apiclient.New(s.URL, opts...)
}

func (s *Server) Update(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// Snapshot returns a copy of the current state.
func (s *Server) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Inventory = slices.Clone(s.state.Inventory)
	st.Employees = slices.Clone(s.state.Employees)
	st.Orders = slices.Clone(s.state.Orders)
	st.Uploads = slices.Clone(s.state.Uploads)
	st.NotificationPut = slices.Clone(s.state.NotificationPut)
	st.Restocks = map[int64]float64{}
	for k, v := range s.state.Restocks {
		st.Restocks[k] = v
	}
	return st
}

// Fail makes "METHOD /path" answer with status. An empty detail sends a
// body that is not JSON.
func (s *Server) Fail(method, path string, status int, detail string) {
	body := "<html>upstream error</html>"
	if detail != "" {
		b, _ := json.Marshal(map[string]string{"detail": detail})
		body = string(b)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, body: body}
}

func (s *Server) Recover(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, method+" "+path)
}

// Hold blocks "METHOD /path" until the returned release func is called.
func (s *Server) Hold(method, path string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.gates[method+" "+path] = ch
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.gates, method+" "+path)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Requests lists "METHOD /path?query" for every request received.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// Count returns how many requests matched "METHOD /path" exactly.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if strings.SplitN(r, "?", 2)[0] == method+" "+path {
			n++
		}
	}
	return n
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /inventory", s.listInventory)
	mux.HandleFunc("GET /inventory/stats", s.inventoryStats)
	mux.HandleFunc("GET /inventory/{id}", s.getInventory)
	mux.HandleFunc("POST /inventory", s.createInventory)
	mux.HandleFunc("PUT /inventory/{id}", s.updateInventory)
	mux.HandleFunc("DELETE /inventory/{id}", s.deleteInventory)

	mux.HandleFunc("GET /menus", s.listMenus)
	mux.HandleFunc("POST /menus/upload", s.uploadMenus)

	mux.HandleFunc("GET /orders/recommendations", s.listRecommendations)
	mux.HandleFunc("POST /orders", s.createOrder)

	mux.HandleFunc("GET /out-of-stock", s.listOutOfStock)
	mux.HandleFunc("POST /out-of-stock/{id}/restock", s.restock)

	mux.HandleFunc("GET /employees", s.listEmployees)
	mux.HandleFunc("GET /employees/{id}", s.getEmployee)
	mux.HandleFunc("POST /employees", s.createEmployee)
	mux.HandleFunc("PUT /employees/{id}", s.updateEmployee)
	mux.HandleFunc("DELETE /employees/{id}", s.deleteEmployee)

	mux.HandleFunc("GET /store", s.getStore)
	mux.HandleFunc("PUT /store", s.updateStore)
	mux.HandleFunc("GET /store/notifications", s.getNotifications)
	mux.HandleFunc("PUT /store/notifications", s.updateNotifications)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		line := key
		if r.URL.RawQuery != "" {
			line += "?" + r.URL.RawQuery
		}
		s.requests = append(s.requests, line)
		f, failing := s.failures[key]
		gate := s.gates[key]
		s.mu.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
		if failing {
			w.WriteHeader(f.status)
			io.WriteString(w, f.body)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter, what string) {
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": what + " not found"})
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func now() models.Timestamp {
	return models.Timestamp{Time: time.Now().UTC().Truncate(time.Second)}
}

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Server) listInventory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("search")
	s.mu.Lock()
	out := []models.InventoryItem{}
	for _, it := range s.state.Inventory {
		if q == "" || contains(it.Name, q) || contains(it.Category, q) {
			out = append(out, it)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) inventoryStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stats := models.InventoryStats{TotalItems: len(s.state.Inventory)}
	for _, it := range s.state.Inventory {
		switch models.DeriveStockStatus(it.Quantity, it.MinQuantity) {
		case models.StockOutOfStock:
			stats.OutOfStockCount++
		case models.StockLow:
			stats.LowStockCount++
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) findInventory(id int64) int {
	return slices.IndexFunc(s.state.Inventory, func(it models.InventoryItem) bool { return it.ID == id })
}

func (s *Server) getInventory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findInventory(pathID(r))
	if i < 0 {
		notFound(w, "inventory item")
		return
	}
	writeJSON(w, http.StatusOK, s.state.Inventory[i])
}

func (s *Server) createInventory(w http.ResponseWriter, r *http.Request) {
	var in models.InventoryItemCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]string{{"msg": err.Error()}}})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := now()
	item := models.InventoryItem{
		ID:          s.id(),
		Name:        in.Name,
		Category:    in.Category,
		Quantity:    in.Quantity,
		Unit:        in.Unit,
		MinQuantity: in.MinQuantity,
		Price:       in.Price,
		LastUpdated: ts,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	s.state.Inventory = append(s.state.Inventory, item)
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) updateInventory(w http.ResponseWriter, r *http.Request) {
	var in models.InventoryItemUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findInventory(pathID(r))
	if i < 0 {
		notFound(w, "inventory item")
		return
	}
	it := &s.state.Inventory[i]
	if in.Name != nil {
		it.Name = *in.Name
	}
	if in.Category != nil {
		it.Category = *in.Category
	}
	if in.Quantity != nil {
		it.Quantity = *in.Quantity
	}
	if in.Unit != nil {
		it.Unit = *in.Unit
	}
	if in.MinQuantity != nil {
		it.MinQuantity = *in.MinQuantity
	}
	if in.Price != nil {
		it.Price = *in.Price
	}
	it.UpdatedAt = now()
	writeJSON(w, http.StatusOK, *it)
}

func (s *Server) deleteInventory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findInventory(pathID(r))
	if i < 0 {
		notFound(w, "inventory item")
		return
	}
	s.state.Inventory = slices.Delete(s.state.Inventory, i, i+1)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listMenus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search, category := q.Get("search"), q.Get("category")
	s.mu.Lock()
	out := []models.MenuItem{}
	for _, m := range s.state.Menus {
		if search != "" && !contains(m.Name, search) {
			continue
		}
		if category != "" && m.Category != category {
			continue
		}
		out = append(out, m)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) uploadMenus(w http.ResponseWriter, r *http.Request) {
	_, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "file is required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Uploads = append(s.state.Uploads, header.Filename)
	writeJSON(w, http.StatusOK, s.state.UploadResult)
}

func (s *Server) listRecommendations(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := append([]models.OrderRecommendation{}, s.state.Recommendations...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var in models.OrderCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || len(in.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "items are required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Orders = append(s.state.Orders, in)

	resp := models.OrderResponse{ID: s.id(), Status: "pending", TotalCost: decimal.Zero, CreatedAt: now()}
	for _, item := range in.Items {
		i := slices.IndexFunc(s.state.Recommendations, func(rec models.OrderRecommendation) bool {
			return rec.ID == item.InventoryItemID
		})
		if i < 0 {
			continue
		}
		rec := s.state.Recommendations[i]
		resp.TotalCost = resp.TotalCost.Add(rec.EstimatedCost)
		resp.Items = append(resp.Items, models.OrderResponseItem{
			ID:         rec.ID,
			Name:       rec.Name,
			Quantity:   item.Quantity,
			Unit:       rec.Unit,
			TotalPrice: rec.EstimatedCost,
			Priority:   string(item.Priority),
		})
		s.state.Recommendations = slices.Delete(s.state.Recommendations, i, i+1)
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) listOutOfStock(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := append([]models.OutOfStockItem{}, s.state.OutOfStock...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) restock(w http.ResponseWriter, r *http.Request) {
	qty, err := strconv.ParseFloat(r.URL.Query().Get("quantity"), 64)
	if err != nil || qty <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "quantity must be positive"})
		return
	}
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.state.OutOfStock, func(it models.OutOfStockItem) bool { return it.ID == id })
	if i < 0 {
		notFound(w, "out of stock item")
		return
	}
	it := s.state.OutOfStock[i]
	s.state.OutOfStock = slices.Delete(s.state.OutOfStock, i, i+1)
	s.state.Restocks[id] += qty
	writeJSON(w, http.StatusOK, models.RestockResponse{
		Message: "restocked",
		Item:    models.InventoryItem{ID: id, Name: it.Name, Category: it.Category, Quantity: qty, Unit: it.Unit},
	})
}

func (s *Server) findEmployee(id int64) int {
	return slices.IndexFunc(s.state.Employees, func(e models.Employee) bool { return e.ID == id })
}

func (s *Server) listEmployees(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := append([]models.Employee{}, s.state.Employees...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getEmployee(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findEmployee(pathID(r))
	if i < 0 {
		notFound(w, "employee")
		return
	}
	writeJSON(w, http.StatusOK, s.state.Employees[i])
}

func (s *Server) createEmployee(w http.ResponseWriter, r *http.Request) {
	var in models.EmployeeCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := now()
	e := models.Employee{
		ID:        s.id(),
		Name:      in.Name,
		Role:      in.Role,
		Phone:     in.Phone,
		Status:    models.EmployeeActive,
		JoinDate:  in.JoinDate,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	s.state.Employees = append(s.state.Employees, e)
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) updateEmployee(w http.ResponseWriter, r *http.Request) {
	var in models.EmployeeUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findEmployee(pathID(r))
	if i < 0 {
		notFound(w, "employee")
		return
	}
	e := &s.state.Employees[i]
	if in.Name != nil {
		e.Name = *in.Name
	}
	if in.Role != nil {
		e.Role = *in.Role
	}
	if in.Phone != nil {
		e.Phone = *in.Phone
	}
	if in.Status != nil {
		e.Status = *in.Status
	}
	e.UpdatedAt = now()
	writeJSON(w, http.StatusOK, *e)
}

func (s *Server) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findEmployee(pathID(r))
	if i < 0 {
		notFound(w, "employee")
		return
	}
	s.state.Employees = slices.Delete(s.state.Employees, i, i+1)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getStore(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.state.Store)
}

func (s *Server) updateStore(w http.ResponseWriter, r *http.Request) {
	var in models.StoreUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if in.Name != nil {
		s.state.Store.Name = *in.Name
	}
	if in.Address != nil {
		s.state.Store.Address = *in.Address
	}
	if in.Phone != nil {
		s.state.Store.Phone = *in.Phone
	}
	s.state.Store.UpdatedAt = now()
	writeJSON(w, http.StatusOK, s.state.Store)
}

func (s *Server) getNotifications(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.state.Notifications)
}

func (s *Server) updateNotifications(w http.ResponseWriter, r *http.Request) {
	var in models.NotificationSettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.NotificationPut = append(s.state.NotificationPut, in)
	n := &s.state.Notifications
	if in.LowStock != nil {
		n.LowStock = *in.LowStock
	}
	if in.OutOfStock != nil {
		n.OutOfStock = *in.OutOfStock
	}
	if in.OrderReminder != nil {
		n.OrderReminder = *in.OrderReminder
	}
	if in.DailyReport != nil {
		n.DailyReport = *in.DailyReport
	}
	n.UpdatedAt = now()
	writeJSON(w, http.StatusOK, *n)
}
