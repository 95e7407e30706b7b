package settings

import (
	"context"
	"fmt"

	"bizup-dashboard/internal/apiclient"
	"bizup-dashboard/internal/models"
)

type EmployeeAPI struct {
	c apiclient.Requester
}

func NewEmployeeAPI(c apiclient.Requester) *EmployeeAPI {
	return &EmployeeAPI{c: c}
}

func (a *EmployeeAPI) List(ctx context.Context) ([]models.Employee, error) {
	var employees []models.Employee
	if err := a.c.Get(ctx, "/employees", nil, &employees); err != nil {
		return nil, err
	}
	return employees, nil
}

func (a *EmployeeAPI) Get(ctx context.Context, id int64) (*models.Employee, error) {
	var e models.Employee
	if err := a.c.Get(ctx, fmt.Sprintf("/employees/%d", id), nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (a *EmployeeAPI) Create(ctx context.Context, in models.EmployeeCreate) (*models.Employee, error) {
	var e models.Employee
	if err := a.c.Post(ctx, "/employees", in, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (a *EmployeeAPI) Update(ctx context.Context, id int64, in models.EmployeeUpdate) (*models.Employee, error) {
	var e models.Employee
	if err := a.c.Put(ctx, fmt.Sprintf("/employees/%d", id), in, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (a *EmployeeAPI) Delete(ctx context.Context, id int64) error {
	return a.c.Delete(ctx, fmt.Sprintf("/employees/%d", id), nil)
}

// StoreAPI covers the singleton store and its notification settings.
type StoreAPI struct {
	c apiclient.Requester
}

func NewStoreAPI(c apiclient.Requester) *StoreAPI {
	return &StoreAPI{c: c}
}

func (a *StoreAPI) Get(ctx context.Context) (models.Store, error) {
	var s models.Store
	err := a.c.Get(ctx, "/store", nil, &s)
	return s, err
}

func (a *StoreAPI) Update(ctx context.Context, in models.StoreUpdate) (*models.Store, error) {
	var s models.Store
	if err := a.c.Put(ctx, "/store", in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (a *StoreAPI) Notifications(ctx context.Context) (models.NotificationSettings, error) {
	var n models.NotificationSettings
	err := a.c.Get(ctx, "/store/notifications", nil, &n)
	return n, err
}

func (a *StoreAPI) UpdateNotifications(ctx context.Context, in models.NotificationSettingsUpdate) (*models.NotificationSettings, error) {
	var n models.NotificationSettings
	if err := a.c.Put(ctx, "/store/notifications", in, &n); err != nil {
		return nil, err
	}
	return &n, nil
}
