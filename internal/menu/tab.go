package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"bizup-dashboard/internal/audit"
	"bizup-dashboard/internal/dashboard"
	"bizup-dashboard/internal/loader"
	"bizup-dashboard/internal/logger"
	"bizup-dashboard/internal/models"
	"bizup-dashboard/internal/spreadsheet"
	"bizup-dashboard/internal/validation"
	"bizup-dashboard/internal/view"
)

const (
	msgBadExtension   = "CSV 또는 엑셀 파일만 업로드할 수 있어요."
	msgNoFile         = "파일을 선택해 주세요."
	msgUploadRejected = "메뉴 등록에 실패했어요."
	msgUploadFailed   = "파일 업로드 중 오류가 발생했어요. 잠시 후 다시 시도해 주세요."
	snapshotKey       = "menu:items"
)

// Options tune the menu tab. Zero values fall back to the loader defaults.
type Options struct {
	RefreshInterval time.Duration
}

type Row struct {
	models.MenuItem
	Status      models.StockStatus `json:"status"`
	StatusLabel string             `json:"status_label"`
}

type View struct {
	Search     string                     `json:"search"`
	Category   string                     `json:"category"`
	Categories []view.Option              `json:"categories"`
	Items      []Row                      `json:"items"`
	Total      int                        `json:"total"`
	Loading    bool                       `json:"loading"`
	Error      string                     `json:"error,omitempty"`
	Stale      bool                       `json:"stale"`
	UpdatedAt  *time.Time                 `json:"updated_at,omitempty"`
	Uploading  bool                       `json:"uploading"`
	LastUpload *models.MenuUploadResponse `json:"last_upload,omitempty"`
}

// Tab is one mounted instance of the menu tab. The full list is fetched
// and refreshed on an interval; search and category filter it locally so
// the category options always cover every menu.
type Tab struct {
	api  *API
	deps dashboard.Deps
	log  *logger.Logger

	menus *loader.Loader[[]models.MenuItem]

	mu         sync.Mutex
	search     string
	category   string
	uploading  bool
	lastUpload *models.MenuUploadResponse
}

var _ dashboard.Tab = (*Tab)(nil)

func New(api *API, deps dashboard.Deps, opts Options) *Tab {
	deps = deps.Normalize()
	t := &Tab{
		api:  api,
		deps: deps,
		log:  deps.Logger.WithComponent("menu_tab"),
	}
	t.menus = loader.New(func(ctx context.Context) ([]models.MenuItem, error) {
		return api.List(ctx, "", "")
	}, loader.Options{
		AutoRefresh:     true,
		RefreshInterval: opts.RefreshInterval,
		Snapshots:       deps.Snapshots,
		SnapshotKey:     snapshotKey,
		Logger:          deps.Logger,
	})
	return t
}

func (t *Tab) Open(ctx context.Context) error {
	return t.menus.Start(ctx)
}

func (t *Tab) Close() {
	t.menus.Close()
}

func (t *Tab) View() View {
	t.mu.Lock()
	v := View{
		Search:     t.search,
		Category:   t.category,
		Uploading:  t.uploading,
		LastUpload: t.lastUpload,
	}
	t.mu.Unlock()

	st := t.menus.State()
	v.Loading = st.Loading
	v.Stale = st.Stale
	if st.Err != nil {
		v.Error = st.Err.Error()
	}
	if !st.UpdatedAt.IsZero() {
		updated := st.UpdatedAt
		v.UpdatedAt = &updated
	}

	v.Categories = view.CategoryOptions(view.Categories(st.Data, categoryOf))
	filtered := filter(v.Search, v.Category).Apply(st.Data)
	v.Items = make([]Row, 0, len(filtered))
	for _, m := range filtered {
		status := m.StockStatus()
		v.Items = append(v.Items, Row{MenuItem: m, Status: status, StatusLabel: menuStatusLabel(status)})
	}
	v.Total = len(st.Data)
	return v
}

func categoryOf(m models.MenuItem) string { return m.Category }

func filter(search, category string) view.Filter[models.MenuItem] {
	return view.Filter[models.MenuItem]{
		Query:      search,
		Category:   category,
		Fields:     func(m models.MenuItem) []string { return []string{m.Name, m.Category} },
		CategoryOf: categoryOf,
	}
}

// menuStatusLabel uses the menu wording, where a healthy item reads 충분.
func menuStatusLabel(s models.StockStatus) string {
	if s == models.StockNormal {
		return models.StockSufficient.Label()
	}
	return s.Label()
}

// SetFilters only changes the derived view; no request is made.
func (t *Tab) SetFilters(search, category string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.search = search
	t.category = category
}

func (t *Tab) Refresh(ctx context.Context) error {
	err := t.menus.Load(ctx)
	if errors.Is(err, loader.ErrSuperseded) {
		return nil
	}
	return err
}

// Preview checks the extension and reports what the file contains without
// sending it.
func (t *Tab) Preview(filename string, r io.Reader) (*spreadsheet.Preview, error) {
	if err := t.checkFile(filename, r); err != nil {
		return nil, err
	}
	p, err := spreadsheet.Inspect(filename, r)
	if err != nil {
		return nil, validation.New(fmt.Sprintf("파일을 읽을 수 없어요: %v", err))
	}
	return p, nil
}

func (t *Tab) checkFile(filename string, r io.Reader) error {
	if filename == "" || r == nil {
		t.deps.Toasts.Error(msgNoFile)
		return validation.New(msgNoFile)
	}
	if _, err := spreadsheet.Format(filename); err != nil {
		t.deps.Toasts.Error(msgBadExtension)
		return validation.New(msgBadExtension)
	}
	return nil
}

// Upload sends the file. A transport or HTTP failure returns an error. A
// response with success=false is returned as a result, with its message
// shown as an error toast.
func (t *Tab) Upload(ctx context.Context, filename string, r io.Reader) (*models.MenuUploadResponse, error) {
	if err := t.checkFile(filename, r); err != nil {
		return nil, err
	}

	t.setUploading(true)
	defer t.setUploading(false)

	result, err := t.api.Upload(ctx, filename, r)
	if err != nil {
		t.deps.Toasts.Error(msgUploadFailed)
		return nil, err
	}

	t.mu.Lock()
	t.lastUpload = result
	t.mu.Unlock()

	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = msgUploadRejected
		}
		t.deps.Toasts.Error(msg)
		if len(result.Errors) > 0 {
			t.log.WithRequestID(ctx).Warn("menu upload rejected", "file", filename, "errors", result.Errors)
		}
		return result, nil
	}

	t.deps.Toasts.Success(fmt.Sprintf("메뉴 등록 완료! 생성: %d개, 업데이트: %d개", result.ItemsCreated, result.ItemsUpdated))
	t.deps.Audit.Record(ctx, audit.Entry{
		EntityType:  "menu",
		Action:      models.ActivityUpload,
		Description: fmt.Sprintf("메뉴 업로드: %s", filename),
		After:       result,
	})
	if err := t.Refresh(ctx); err != nil {
		t.log.WithRequestID(ctx).Warn("reload after upload failed", "error", err)
	}
	return result, nil
}

func (t *Tab) setUploading(v bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.uploading = v
}
