package settings

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
	msgLoadFailed        = "직원 목록 로딩 오류가 발생했습니다."
	msgMissing           = "모든 항목을 입력해주세요."
	msgAddSuccess        = "직원이 추가되었습니다."
	msgAddFailed         = "직원 추가 중 오류가 발생했습니다."
	msgEditSuccess       = "직원 정보가 수정되었습니다."
	msgEditFailed        = "직원 수정 중 오류가 발생했습니다."
	msgDeleteSuccess     = "직원이 삭제되었습니다."
	msgDeleteFailed      = "직원 삭제 중 오류가 발생했습니다."
	msgStoreSaved        = "가게 정보가 저장되었습니다."
	msgStoreFailed       = "가게 정보 저장 중 오류가 발생했습니다."
	msgNotifyFailed      = "알림 설정 저장 중 오류가 발생했습니다."
	msgNotifyNotLoaded   = "알림 설정을 아직 불러오지 못했어요."
	employeeEntity       = "employee"
	employeesSnapshotKey = "settings:employees"
	dateLayout           = "2006-01-02"
)

var timeNow = time.Now

type Form = models.EmployeeForm

type EmployeeRow struct {
	models.Employee
	StatusLabel string `json:"status_label"`
}

type View struct {
	Employees     []EmployeeRow                `json:"employees"`
	Store         *models.Store                `json:"store,omitempty"`
	StoreForm     models.StoreForm             `json:"store_form"`
	SavingStore   bool                         `json:"saving_store"`
	Notifications *models.NotificationSettings `json:"notifications,omitempty"`
	AddDialog     view.Dialog[Form]            `json:"add_dialog"`
	EditDialog    view.Dialog[Form]            `json:"edit_dialog"`
	EditingID     int64                        `json:"editing_id,omitempty"`
	Loading       bool                         `json:"loading"`
	Error         string                       `json:"error,omitempty"`
	Stale         bool                         `json:"stale"`
	UpdatedAt     *time.Time                   `json:"updated_at,omitempty"`
}

// Tab is one mounted instance of the settings tab: employees, the store
// card and the notification toggles.
type Tab struct {
	employeesAPI *EmployeeAPI
	storeAPI     *StoreAPI
	deps         dashboard.Deps
	log          *logger.Logger

	employees     *loader.Loader[[]models.Employee]
	store         *loader.Loader[models.Store]
	notifications *loader.Loader[models.NotificationSettings]

	toggles view.Optimistic[models.NotificationSettings]

	mu            sync.Mutex
	add           view.Dialog[Form]
	edit          view.Dialog[Form]
	editingID     int64
	storeForm     models.StoreForm
	savingStore   bool
	togglesLoaded bool
}

var _ dashboard.Tab = (*Tab)(nil)

func New(employees *EmployeeAPI, store *StoreAPI, deps dashboard.Deps) *Tab {
	deps = deps.Normalize()
	t := &Tab{
		employeesAPI: employees,
		storeAPI:     store,
		deps:         deps,
		log:          deps.Logger.WithComponent("settings_tab"),
	}
	t.employees = loader.New(employees.List, loader.Options{
		OnError:     func(error) { deps.Toasts.Error(msgLoadFailed) },
		Snapshots:   deps.Snapshots,
		SnapshotKey: employeesSnapshotKey,
		Logger:      deps.Logger,
	})
	t.store = loader.New(store.Get, loader.Options{Logger: deps.Logger})
	t.notifications = loader.New(store.Notifications, loader.Options{Logger: deps.Logger})
	return t
}

// Open loads employees, the store and the notification settings in
// parallel. Only the employee list reports failures to the user.
func (t *Tab) Open(ctx context.Context) error {
	var g errgroup.Group
	var employeesErr error
	g.Go(func() error {
		employeesErr = t.employees.Start(ctx)
		return nil
	})
	g.Go(func() error {
		if err := t.store.Start(ctx); err != nil {
			t.log.WithRequestID(ctx).Warn("store unavailable", "error", err)
			return nil
		}
		t.resetStoreForm()
		return nil
	})
	g.Go(func() error {
		if err := t.notifications.Start(ctx); err != nil {
			t.log.WithRequestID(ctx).Warn("notification settings unavailable", "error", err)
			return nil
		}
		t.resetToggles()
		return nil
	})
	g.Wait()
	return employeesErr
}

func (t *Tab) Close() {
	t.employees.Close()
	t.store.Close()
	t.notifications.Close()
}

func (t *Tab) View() View {
	es := t.employees.State()
	ss := t.store.State()
	ns := t.notifications.State()

	v := View{
		Loading: es.Loading || ss.Loading || ns.Loading,
		Stale:   es.Stale,
	}
	if es.Err != nil {
		v.Error = es.Err.Error()
	}
	if !es.UpdatedAt.IsZero() {
		updated := es.UpdatedAt
		v.UpdatedAt = &updated
	}
	v.Employees = make([]EmployeeRow, 0, len(es.Data))
	for _, e := range es.Data {
		v.Employees = append(v.Employees, EmployeeRow{Employee: e, StatusLabel: e.Status.Label()})
	}
	if ss.HasData {
		store := ss.Data
		v.Store = &store
	}

	t.mu.Lock()
	v.StoreForm = t.storeForm
	v.SavingStore = t.savingStore
	v.AddDialog = t.add
	v.EditDialog = t.edit
	v.EditingID = t.editingID
	loaded := t.togglesLoaded
	t.mu.Unlock()

	if loaded {
		n := t.toggles.Value()
		v.Notifications = &n
	}
	return v
}

// Refresh reloads all three sources.
func (t *Tab) Refresh(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return ignoreSuperseded(t.employees.Load(ctx)) })
	g.Go(func() error {
		t.reloadStore(ctx)
		return nil
	})
	g.Go(func() error {
		if err := ignoreSuperseded(t.notifications.Load(ctx)); err != nil {
			t.log.WithRequestID(ctx).Warn("notification settings unavailable", "error", err)
			return nil
		}
		t.resetToggles()
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

// AddEmployee creates an employee who joins today. The dialog keeps the
// submitted values on failure.
func (t *Tab) AddEmployee(ctx context.Context, form Form) error {
	form = normalize(form)

	t.mu.Lock()
	t.add.Open = true
	t.add.Form = form
	t.mu.Unlock()

	if err := validation.Struct(form, msgMissing); err != nil {
		t.deps.Toasts.Error(msgMissing)
		return err
	}

	t.setAddSubmitting(true)
	e, err := t.employeesAPI.Create(ctx, models.EmployeeCreate{
		Name:     form.Name,
		Role:     form.Role,
		Phone:    form.Phone,
		JoinDate: timeNow().Format(dateLayout),
	})
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
		EntityType:  employeeEntity,
		EntityID:    e.ID,
		Action:      models.ActivityCreate,
		Description: fmt.Sprintf("직원 추가: %s", e.Name),
		After:       e,
	})
	t.reloadEmployees(ctx)
	return nil
}

func (t *Tab) setAddSubmitting(v bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.add.Submitting = v
}

func (t *Tab) OpenEdit(ctx context.Context, id int64) error {
	e, ok := t.findEmployee(id)
	if !ok {
		fetched, err := t.employeesAPI.Get(ctx, id)
		if err != nil {
			t.deps.Toasts.Error(msgEditFailed)
			return err
		}
		e = *fetched
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.editingID = id
	t.edit.Show(e.Form())
	return nil
}

func (t *Tab) CloseEdit() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.editingID = 0
	t.edit.Hide()
}

// EditEmployee sends name, role and phone. The dialog keeps the submitted
// values on failure.
func (t *Tab) EditEmployee(ctx context.Context, id int64, form Form) error {
	form = normalize(form)
	before, _ := t.findEmployee(id)

	t.mu.Lock()
	t.editingID = id
	t.edit.Open = true
	t.edit.Form = form
	t.mu.Unlock()

	if err := validation.Struct(form, msgMissing); err != nil {
		t.deps.Toasts.Error(msgMissing)
		return err
	}

	t.setEditSubmitting(true)
	e, err := t.employeesAPI.Update(ctx, id, models.EmployeeUpdate{
		Name:  &form.Name,
		Role:  &form.Role,
		Phone: &form.Phone,
	})
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
		EntityType:  employeeEntity,
		EntityID:    id,
		Action:      models.ActivityUpdate,
		Description: fmt.Sprintf("직원 수정: %s", e.Name),
		Before:      before,
		After:       e,
	})
	t.reloadEmployees(ctx)
	return nil
}

func (t *Tab) setEditSubmitting(v bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.edit.Submitting = v
}

func (t *Tab) DeleteEmployee(ctx context.Context, id int64) error {
	before, _ := t.findEmployee(id)
	if err := t.employeesAPI.Delete(ctx, id); err != nil {
		t.deps.Toasts.Error(msgDeleteFailed)
		return err
	}

	t.deps.Toasts.Success(msgDeleteSuccess)
	t.deps.Audit.Record(ctx, audit.Entry{
		EntityType:  employeeEntity,
		EntityID:    id,
		Action:      models.ActivityDelete,
		Description: fmt.Sprintf("직원 삭제: %s", before.Name),
		Before:      before,
	})
	t.reloadEmployees(ctx)
	return nil
}

// SaveStore sends the whole store card and reloads it on success. The
// submitted values stay in the form on failure.
func (t *Tab) SaveStore(ctx context.Context, form models.StoreForm) error {
	form.Name = strings.TrimSpace(form.Name)
	form.Address = strings.TrimSpace(form.Address)
	form.Phone = strings.TrimSpace(form.Phone)

	t.mu.Lock()
	if t.savingStore {
		t.mu.Unlock()
		return validation.New("store save already in progress")
	}
	before := t.storeForm
	t.storeForm = form
	t.savingStore = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.savingStore = false
		t.mu.Unlock()
	}()

	store, err := t.storeAPI.Update(ctx, form.Update())
	if err != nil {
		t.deps.Toasts.Error(msgStoreFailed)
		return err
	}

	t.deps.Toasts.Success(msgStoreSaved)
	t.deps.Audit.Record(ctx, audit.Entry{
		EntityType:  "store",
		EntityID:    store.ID,
		Action:      models.ActivityUpdate,
		Description: fmt.Sprintf("가게 정보 수정: %s", store.Name),
		Before:      before,
		After:       store,
	})
	t.reloadStore(ctx)
	return nil
}

// ToggleNotification shows the change immediately and sends all four
// toggles. A failed write puts the previous value back.
func (t *Tab) ToggleNotification(ctx context.Context, key string, enabled bool) error {
	k, ok := models.ParseNotificationKey(key)
	if !ok {
		return validation.New(fmt.Sprintf("unknown notification setting %q", key))
	}

	t.mu.Lock()
	loaded := t.togglesLoaded
	t.mu.Unlock()
	if !loaded {
		t.deps.Toasts.Error(msgNotifyNotLoaded)
		return validation.New(msgNotifyNotLoaded)
	}

	var saved *models.NotificationSettings
	err := t.toggles.Update(ctx,
		func(n models.NotificationSettings) models.NotificationSettings { return n.With(k, enabled) },
		func(ctx context.Context, n models.NotificationSettings) error {
			var err error
			saved, err = t.storeAPI.UpdateNotifications(ctx, n.Update())
			return err
		},
	)
	if err != nil {
		t.deps.Toasts.Error(msgNotifyFailed)
		return err
	}

	t.deps.Audit.Record(ctx, audit.Entry{
		EntityType:  "notification_settings",
		EntityID:    saved.ID,
		Action:      models.ActivityUpdate,
		Description: fmt.Sprintf("알림 설정 변경: %s=%t", k, enabled),
		After:       saved,
	})
	return nil
}

func (t *Tab) findEmployee(id int64) (models.Employee, bool) {
	for _, e := range t.employees.State().Data {
		if e.ID == id {
			return e, true
		}
	}
	return models.Employee{}, false
}

func (t *Tab) reloadEmployees(ctx context.Context) {
	if err := ignoreSuperseded(t.employees.Load(ctx)); err != nil {
		t.log.WithRequestID(ctx).Warn("reload employees failed", "error", err)
	}
}

func (t *Tab) reloadStore(ctx context.Context) {
	if err := ignoreSuperseded(t.store.Load(ctx)); err != nil {
		t.log.WithRequestID(ctx).Warn("store unavailable", "error", err)
		return
	}
	t.resetStoreForm()
}

func (t *Tab) resetStoreForm() {
	st := t.store.State()
	if !st.HasData {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.storeForm = st.Data.Form()
}

func (t *Tab) resetToggles() {
	st := t.notifications.State()
	if !st.HasData {
		return
	}
	t.toggles.Reset(st.Data)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.togglesLoaded = true
}

func normalize(f Form) Form {
	f.Name = strings.TrimSpace(f.Name)
	f.Role = strings.TrimSpace(f.Role)
	f.Phone = strings.TrimSpace(f.Phone)
	return f
}

func ignoreSuperseded(err error) error {
	if errors.Is(err, loader.ErrSuperseded) {
		return nil
	}
	return err
}
