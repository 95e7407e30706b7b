package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"bizup-dashboard/internal/audit"
	"bizup-dashboard/internal/dashboard"
	"bizup-dashboard/internal/loader"
	"bizup-dashboard/internal/logger"
	"bizup-dashboard/internal/models"
	"bizup-dashboard/internal/validation"
	"bizup-dashboard/internal/view"
)

const (
	msgLoadFailed   = "발주 추천 목록 로딩 오류가 발생했습니다."
	msgOrderFailed  = "발주 오류가 발생했습니다."
	msgNothingToAdd = "발주할 상품을 선택해 주세요."
	snapshotKey     = "orders:recommendations"
)

type Row struct {
	models.OrderRecommendation
	PriorityLabel string `json:"priority_label"`
	Selected      bool   `json:"selected"`
}

type PriorityCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type View struct {
	Items         []Row           `json:"items"`
	Counts        PriorityCounts  `json:"counts"`
	SelectedIDs   []int64         `json:"selected_ids"`
	SelectedCount int             `json:"selected_count"`
	SelectedTotal decimal.Decimal `json:"selected_total"`
	Submitting    bool            `json:"submitting"`
	Loading       bool            `json:"loading"`
	Error         string          `json:"error,omitempty"`
	Stale         bool            `json:"stale"`
	UpdatedAt     *time.Time      `json:"updated_at,omitempty"`
}

// Tab is one mounted instance of the order recommendation tab. The
// selection lives only as long as the instance.
type Tab struct {
	api  *API
	deps dashboard.Deps
	log  *logger.Logger

	recs *loader.Loader[[]models.OrderRecommendation]

	mu         sync.Mutex
	selection  *view.Selection[int64]
	submitting bool
}

var _ dashboard.Tab = (*Tab)(nil)

func New(api *API, deps dashboard.Deps) *Tab {
	deps = deps.Normalize()
	t := &Tab{
		api:       api,
		deps:      deps,
		log:       deps.Logger.WithComponent("orders_tab"),
		selection: view.NewSelection[int64](),
	}
	t.recs = loader.New(api.Recommendations, loader.Options{
		OnError:     func(error) { deps.Toasts.Error(msgLoadFailed) },
		Snapshots:   deps.Snapshots,
		SnapshotKey: snapshotKey,
		Logger:      deps.Logger,
	})
	return t
}

func (t *Tab) Open(ctx context.Context) error {
	return t.recs.Start(ctx)
}

func (t *Tab) Close() {
	t.recs.Close()
}

func recID(r models.OrderRecommendation) int64 { return r.ID }

func (t *Tab) View() View {
	st := t.recs.State()

	t.mu.Lock()
	v := View{Submitting: t.submitting}
	v.Items = make([]Row, 0, len(st.Data))
	for _, r := range st.Data {
		v.Items = append(v.Items, Row{
			OrderRecommendation: r,
			PriorityLabel:       r.Priority.Label(),
			Selected:            t.selection.Has(r.ID),
		})
		switch r.Priority {
		case models.PriorityHigh:
			v.Counts.High++
		case models.PriorityMedium:
			v.Counts.Medium++
		case models.PriorityLow:
			v.Counts.Low++
		}
	}
	selected := view.Selected(st.Data, t.selection, recID)
	t.mu.Unlock()

	v.SelectedIDs = make([]int64, 0, len(selected))
	for _, r := range selected {
		v.SelectedIDs = append(v.SelectedIDs, r.ID)
	}
	v.SelectedCount = len(selected)
	v.SelectedTotal = view.Sum(selected, func(r models.OrderRecommendation) decimal.Decimal { return r.EstimatedCost })

	v.Loading = st.Loading
	v.Stale = st.Stale
	if st.Err != nil {
		v.Error = st.Err.Error()
	}
	if !st.UpdatedAt.IsZero() {
		updated := st.UpdatedAt
		v.UpdatedAt = &updated
	}
	return v
}

// Toggle flips the selection of a listed recommendation and reports
// whether it is selected afterwards.
func (t *Tab) Toggle(id int64) (bool, error) {
	if _, ok := t.find(id); !ok {
		return false, validation.New(fmt.Sprintf("recommendation %d is not listed", id))
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selection.Toggle(id), nil
}

func (t *Tab) ClearSelection() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selection.Clear()
}

func (t *Tab) Refresh(ctx context.Context) error {
	err := t.recs.Load(ctx)
	if errors.Is(err, loader.ErrSuperseded) {
		return nil
	}
	if err == nil {
		t.prune()
	}
	return err
}

// Submit orders every selected recommendation at its recommended quantity
// and priority. The selection is kept when the order fails.
func (t *Tab) Submit(ctx context.Context) (*models.OrderResponse, error) {
	st := t.recs.State()

	t.mu.Lock()
	if t.submitting {
		t.mu.Unlock()
		return nil, validation.New("order already in progress")
	}
	selected := view.Selected(st.Data, t.selection, recID)
	if len(selected) == 0 {
		t.mu.Unlock()
		t.deps.Toasts.Error(msgNothingToAdd)
		return nil, validation.New(msgNothingToAdd)
	}
	t.submitting = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.submitting = false
		t.mu.Unlock()
	}()

	order := models.OrderCreate{Items: make([]models.OrderItemCreate, 0, len(selected))}
	for _, r := range selected {
		order.Items = append(order.Items, models.OrderItemCreate{
			InventoryItemID: r.ID,
			Quantity:        r.RecommendedQty,
			Priority:        r.Priority,
		})
	}

	resp, err := t.api.Create(ctx, order)
	if err != nil {
		t.deps.Toasts.Error(msgOrderFailed)
		return nil, err
	}

	t.ClearSelection()
	t.deps.Toasts.Success(fmt.Sprintf("%d개의 상품을 발주했습니다.", len(selected)))
	t.deps.Audit.Record(ctx, audit.Entry{
		EntityType:  "order",
		EntityID:    resp.ID,
		Action:      models.ActivityOrder,
		Description: fmt.Sprintf("발주: %d개 상품, %s원", len(selected), resp.TotalCost.StringFixed(0)),
		Before:      order,
		After:       resp,
	})
	if err := t.Refresh(ctx); err != nil {
		t.log.WithRequestID(ctx).Warn("reload after order failed", "error", err)
	}
	return resp, nil
}

func (t *Tab) find(id int64) (models.OrderRecommendation, bool) {
	for _, r := range t.recs.State().Data {
		if r.ID == id {
			return r, true
		}
	}
	return models.OrderRecommendation{}, false
}

// prune drops selected ids that are no longer recommended.
func (t *Tab) prune() {
	listed := map[int64]bool{}
	for _, r := range t.recs.State().Data {
		listed[r.ID] = true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selection.Retain(func(id int64) bool { return listed[id] })
}
