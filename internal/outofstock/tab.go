package outofstock

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"bizup-dashboard/internal/audit"
	"bizup-dashboard/internal/config"
	"bizup-dashboard/internal/dashboard"
	"bizup-dashboard/internal/loader"
	"bizup-dashboard/internal/logger"
	"bizup-dashboard/internal/models"
	"bizup-dashboard/internal/validation"
)

const (
	msgLoadFailed     = "품절 상품을 불러오지 못했어요. 잠시 후 다시 시도해 주세요."
	msgRestockSuccess = "재입고를 완료했어요."
	msgRestockFailed  = "재입고를 진행하지 못했어요. 잠시 후 다시 시도해 주세요."
	snapshotKey       = "outofstock:items"
)

type Options struct {
	RestockQuantity int
}

type Row struct {
	models.OutOfStockItem
	StatusLabel string `json:"status_label"`
	Restocking  bool   `json:"restocking"`
}

type Summary struct {
	TotalLoss   decimal.Decimal `json:"total_loss"`
	ItemCount   int             `json:"item_count"`
	AverageDays int             `json:"average_days"`
}

type View struct {
	Items      []Row      `json:"items"`
	Summary    Summary    `json:"summary"`
	Restocking []int64    `json:"restocking"`
	Loading    bool       `json:"loading"`
	Error      string     `json:"error,omitempty"`
	Stale      bool       `json:"stale"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// Tab is one mounted instance of the out-of-stock tab.
type Tab struct {
	api      *API
	deps     dashboard.Deps
	log      *logger.Logger
	quantity int

	items *loader.Loader[[]models.OutOfStockItem]

	mu         sync.Mutex
	restocking map[int64]bool
}

var _ dashboard.Tab = (*Tab)(nil)

func New(api *API, deps dashboard.Deps, opts Options) *Tab {
	deps = deps.Normalize()
	if opts.RestockQuantity <= 0 {
		opts.RestockQuantity = config.DefaultRestockQuantity
	}
	t := &Tab{
		api:        api,
		deps:       deps,
		log:        deps.Logger.WithComponent("outofstock_tab"),
		quantity:   opts.RestockQuantity,
		restocking: map[int64]bool{},
	}
	t.items = loader.New(api.List, loader.Options{
		OnError:     func(error) { deps.Toasts.Error(msgLoadFailed) },
		Snapshots:   deps.Snapshots,
		SnapshotKey: snapshotKey,
		Logger:      deps.Logger,
	})
	return t
}

func (t *Tab) Open(ctx context.Context) error {
	return t.items.Start(ctx)
}

func (t *Tab) Close() {
	t.items.Close()
}

func (t *Tab) View() View {
	st := t.items.State()
	v := View{
		Loading: st.Loading,
		Stale:   st.Stale,
		Summary: summarize(st.Data),
	}
	if st.Err != nil {
		v.Error = st.Err.Error()
	}
	if !st.UpdatedAt.IsZero() {
		updated := st.UpdatedAt
		v.UpdatedAt = &updated
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	v.Items = make([]Row, 0, len(st.Data))
	for _, it := range st.Data {
		v.Items = append(v.Items, Row{
			OutOfStockItem: it,
			StatusLabel:    it.Status.Label(),
			Restocking:     t.restocking[it.ID],
		})
	}
	v.Restocking = make([]int64, 0, len(t.restocking))
	for _, it := range st.Data {
		if t.restocking[it.ID] {
			v.Restocking = append(v.Restocking, it.ID)
		}
	}
	return v
}

func summarize(items []models.OutOfStockItem) Summary {
	s := Summary{TotalLoss: decimal.Zero, ItemCount: len(items)}
	if len(items) == 0 {
		return s
	}
	days := 0
	for _, it := range items {
		s.TotalLoss = s.TotalLoss.Add(it.EstimatedLoss)
		days += it.DaysOutOfStock
	}
	s.AverageDays = int(math.Round(float64(days) / float64(len(items))))
	return s
}

func (t *Tab) Refresh(ctx context.Context) error {
	err := t.items.Load(ctx)
	if errors.Is(err, loader.ErrSuperseded) {
		return nil
	}
	return err
}

// Restock puts the configured quantity back onto one item. Only one
// restock per item runs at a time.
func (t *Tab) Restock(ctx context.Context, id int64) (*models.RestockResponse, error) {
	before, ok := t.find(id)
	if !ok {
		return nil, validation.New(fmt.Sprintf("out of stock item %d is not listed", id))
	}

	t.mu.Lock()
	if t.restocking[id] {
		t.mu.Unlock()
		return nil, validation.New(fmt.Sprintf("restock of %d already in progress", id))
	}
	t.restocking[id] = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.restocking, id)
		t.mu.Unlock()
	}()

	resp, err := t.api.Restock(ctx, id, t.quantity)
	if err != nil {
		t.deps.Toasts.Error(msgRestockFailed)
		return nil, err
	}

	t.deps.Toasts.Success(msgRestockSuccess)
	t.deps.Audit.Record(ctx, audit.Entry{
		EntityType:  "inventory_item",
		EntityID:    id,
		Action:      models.ActivityRestock,
		Description: fmt.Sprintf("재입고: %s %d%s", before.Name, t.quantity, before.Unit),
		Before:      before,
		After:       resp.Item,
	})
	if err := t.Refresh(ctx); err != nil {
		t.log.WithRequestID(ctx).Warn("reload after restock failed", "error", err)
	}
	return resp, nil
}

func (t *Tab) find(id int64) (models.OutOfStockItem, bool) {
	for _, it := range t.items.State().Data {
		if it.ID == id {
			return it, true
		}
	}
	return models.OutOfStockItem{}, false
}
