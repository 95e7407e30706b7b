package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"bizup-dashboard/internal/audit"
	"bizup-dashboard/internal/dashboard"
	"bizup-dashboard/internal/loader"
	"bizup-dashboard/internal/logger"
	"bizup-dashboard/internal/models"
	"bizup-dashboard/internal/validation"
	"bizup-dashboard/internal/view"
)

const (
	msgLoadFailed      = "재고 목록 로딩 오류가 발생했습니다."
	msgAddMissing      = "재고 추가 필수 정보가 누락되었습니다."
	msgAddSuccess      = "재고 추가 성공"
	msgAddFailed       = "재고 추가 오류가 발생했습니다."
	msgEditMissing     = "재고 수정 필수 정보가 누락되었습니다."
	msgEditSuccess     = "재고 정보가 수정되었습니다."
	msgEditFailed      = "재고 수정 중 오류가 발생했습니다."
	msgDeleteSuccess   = "재고 항목이 삭제되었습니다."
	msgDeleteFailed    = "재고 항목 삭제 중 오류가 발생했습니다."
	msgEditNotFound    = "수정할 재고 항목을 찾을 수 없습니다."
	entityType         = "inventory_item"
	itemsSnapshotKey   = "inventory:items"
	statsSnapshotKey   = "inventory:stats"
	defaultExportSheet = "재고"
)

type Form = models.InventoryItemCreate

type Row struct {
	models.InventoryItem
	Status      models.StockStatus `json:"status"`
	StatusLabel string             `json:"status_label"`
}

type View struct {
	Search     string                 `json:"search"`
	Items      []Row                  `json:"items"`
	Total      int                    `json:"total"`
	Stats      *models.InventoryStats `json:"stats"`
	Loading    bool                   `json:"loading"`
	Error      string                 `json:"error,omitempty"`
	Stale      bool                   `json:"stale"`
	UpdatedAt  *time.Time             `json:"updated_at,omitempty"`
	AddDialog  view.Dialog[Form]      `json:"add_dialog"`
	EditDialog view.Dialog[Form]      `json:"edit_dialog"`
	EditingID  int64                  `json:"editing_id,omitempty"`
}

// Tab is one mounted instance of the inventory tab.
type Tab struct {
	api  *API
	deps dashboard.Deps
	log  *logger.Logger

	items *loader.Loader[[]models.InventoryItem]
	stats *loader.Loader[models.InventoryStats]

	mu        sync.Mutex
	search    string
	add       view.Dialog[Form]
	edit      view.Dialog[Form]
	editingID int64
}

var _ dashboard.Tab = (*Tab)(nil)

func New(api *API, deps dashboard.Deps) *Tab {
	deps = deps.Normalize()
	t := &Tab{
		api:  api,
		deps: deps,
		log:  deps.Logger.WithComponent("inventory_tab"),
	}
	t.items = loader.New(t.fetchItems, loader.Options{
		OnError:     func(error) { deps.Toasts.Error(msgLoadFailed) },
		Snapshots:   deps.Snapshots,
		SnapshotKey: itemsSnapshotKey,
		Logger:      deps.Logger,
	})
	t.stats = loader.New(api.Stats, loader.Options{
		Snapshots:   deps.Snapshots,
		SnapshotKey: statsSnapshotKey,
		Logger:      deps.Logger,
	})
	return t
}

func (t *Tab) fetchItems(ctx context.Context) ([]models.InventoryItem, error) {
	t.mu.Lock()
	search := t.search
	t.mu.Unlock()
	return t.api.List(ctx, search)
}

// Open loads the list and the stats in parallel. A stats failure is only
// logged.
func (t *Tab) Open(ctx context.Context) error {
	var g errgroup.Group
	var itemsErr error
	g.Go(func() error {
		itemsErr = t.items.Start(ctx)
		return nil
	})
	g.Go(func() error {
		if err := t.stats.Start(ctx); err != nil {
			t.log.WithRequestID(ctx).Warn("inventory stats unavailable", "error", err)
		}
		return nil
	})
	g.Wait()
	return itemsErr
}

func (t *Tab) Close() {
	t.items.Close()
	t.stats.Close()
}

func (t *Tab) View() View {
	t.mu.Lock()
	search := t.search
	v := View{
		Search:     search,
		AddDialog:  t.add,
		EditDialog: t.edit,
		EditingID:  t.editingID,
	}
	t.mu.Unlock()

	st := t.items.State()
	v.Loading = st.Loading
	v.Stale = st.Stale
	if st.Err != nil {
		v.Error = st.Err.Error()
	}
	if !st.UpdatedAt.IsZero() {
		updated := st.UpdatedAt
		v.UpdatedAt = &updated
	}

	filtered := filter(search).Apply(st.Data)
	v.Items = make([]Row, 0, len(filtered))
	for _, it := range filtered {
		status := it.StockStatus()
		v.Items = append(v.Items, Row{InventoryItem: it, Status: status, StatusLabel: status.Label()})
	}
	v.Total = len(st.Data)

	if ss := t.stats.State(); ss.HasData {
		stats := ss.Data
		v.Stats = &stats
	}
	return v
}

func filter(query string) view.Filter[models.InventoryItem] {
	return view.Filter[models.InventoryItem]{
		Query:  query,
		Fields: func(it models.InventoryItem) []string { return []string{it.Name, it.Category} },
	}
}

// SetSearch stores the query and reloads the list with it.
func (t *Tab) SetSearch(ctx context.Context, query string) error {
	t.mu.Lock()
	t.search = query
	t.mu.Unlock()

	t.stats.Refresh()
	return ignoreSuperseded(t.items.Load(ctx))
}

// Refresh reloads the list and the stats.
func (t *Tab) Refresh(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return ignoreSuperseded(t.items.Load(ctx)) })
	g.Go(func() error {
		if err := ignoreSuperseded(t.stats.Load(ctx)); err != nil {
			t.log.WithRequestID(ctx).Warn("inventory stats unavailable", "error", err)
		}
		return nil
	})
	return g.Wait()
}

func (t *Tab) OpenAdd() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.add.Show(Form{})
}

func (t *Tab) CloseAdd() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.add.Hide()
}

// Add creates an item from form. On any failure the add dialog stays open
// with the submitted values.
func (t *Tab) Add(ctx context.Context, form Form) error {
	form = normalize(form)

	t.mu.Lock()
	t.add.Open = true
	t.add.Form = form
	t.mu.Unlock()

	if err := validation.Struct(form, msgAddMissing); err != nil {
		t.deps.Toasts.Error(msgAddMissing)
		return err
	}

	t.setAddSubmitting(true)
	item, err := t.api.Create(ctx, form)
	if err != nil {
		t.setAddSubmitting(false)
		t.deps.Toasts.Error(msgAddFailed)
		return err
	}

	t.mu.Lock()
	t.add.Hide()
	t.mu.Unlock()

	t.deps.Toasts.Success(msgAddSuccess)
	t.deps.Audit.Record(ctx, audit.Entry{
		EntityType:  entityType,
		EntityID:    item.ID,
		Action:      models.ActivityCreate,
		Description: fmt.Sprintf("재고 추가: %s", item.Name),
		After:       item,
	})
	t.reload(ctx)
	return nil
}

func (t *Tab) setAddSubmitting(v bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.add.Submitting = v
}

// OpenEdit fills the edit dialog from the listed row, asking the API when
// the row is not in the current list.
func (t *Tab) OpenEdit(ctx context.Context, id int64) error {
	item, ok := t.find(id)
	if !ok {
		fetched, err := t.api.Get(ctx, id)
		if err != nil {
			t.deps.Toasts.Error(msgEditNotFound)
			return err
		}
		item = *fetched
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.editingID = id
	t.edit.Show(item.Form())
	return nil
}

func (t *Tab) CloseEdit() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.editingID = 0
	t.edit.Hide()
}

// Edit sends every form field as the update. On any failure the edit
// dialog stays open with the submitted values.
func (t *Tab) Edit(ctx context.Context, id int64, form Form) error {
	form = normalize(form)
	before, _ := t.find(id)

	t.mu.Lock()
	t.editingID = id
	t.edit.Open = true
	t.edit.Form = form
	t.mu.Unlock()

	if err := validation.Struct(form, msgEditMissing); err != nil {
		t.deps.Toasts.Error(msgEditMissing)
		return err
	}

	t.setEditSubmitting(true)
	item, err := t.api.Update(ctx, id, form.FullUpdate())
	if err != nil {
		t.setEditSubmitting(false)
		t.deps.Toasts.Error(msgEditFailed)
		return err
	}

	t.mu.Lock()
	t.editingID = 0
	t.edit.Hide()
	t.mu.Unlock()

	t.deps.Toasts.Success(msgEditSuccess)
	t.deps.Audit.Record(ctx, audit.Entry{
		EntityType:  entityType,
		EntityID:    id,
		Action:      models.ActivityUpdate,
		Description: fmt.Sprintf("재고 수정: %s", item.Name),
		Before:      before,
		After:       item,
	})
	t.reload(ctx)
	return nil
}

func (t *Tab) setEditSubmitting(v bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.edit.Submitting = v
}

func (t *Tab) Delete(ctx context.Context, id int64) error {
	before, _ := t.find(id)
	if err := t.api.Delete(ctx, id); err != nil {
		t.deps.Toasts.Error(msgDeleteFailed)
		return err
	}

	t.deps.Toasts.Success(msgDeleteSuccess)
	t.deps.Audit.Record(ctx, audit.Entry{
		EntityType:  entityType,
		EntityID:    id,
		Action:      models.ActivityDelete,
		Description: fmt.Sprintf("재고 삭제: %s", before.Name),
		Before:      before,
	})
	t.reload(ctx)
	return nil
}

func (t *Tab) find(id int64) (models.InventoryItem, bool) {
	for _, it := range t.items.State().Data {
		if it.ID == id {
			return it, true
		}
	}
	return models.InventoryItem{}, false
}

// reload refreshes the list and stats after a mutation. Failures are
// reported through the loaders and do not fail the mutation.
func (t *Tab) reload(ctx context.Context) {
	if err := t.Refresh(ctx); err != nil {
		t.log.WithRequestID(ctx).Warn("reload after mutation failed", "error", err)
	}
}

func normalize(f Form) Form {
	f.Name = strings.TrimSpace(f.Name)
	f.Category = strings.TrimSpace(f.Category)
	f.Unit = strings.TrimSpace(f.Unit)
	return f
}

func ignoreSuperseded(err error) error {
	if errors.Is(err, loader.ErrSuperseded) {
		return nil
	}
	return err
}
