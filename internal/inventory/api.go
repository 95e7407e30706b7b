package inventory

import (
	"context"
	"fmt"

	"bizup-dashboard/internal/apiclient"
	"bizup-dashboard/internal/models"
)

// API is the inventory resource of the external REST API.
type API struct {
	c apiclient.Requester
}

func NewAPI(c apiclient.Requester) *API {
	return &API{c: c}
}

// List always sends search, empty when there is no query.
func (a *API) List(ctx context.Context, search string) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := a.c.Get(ctx, "/inventory", apiclient.Params{"search": search}, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (a *API) Stats(ctx context.Context) (models.InventoryStats, error) {
	var stats models.InventoryStats
	err := a.c.Get(ctx, "/inventory/stats", nil, &stats)
	return stats, err
}

func (a *API) Get(ctx context.Context, id int64) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := a.c.Get(ctx, fmt.Sprintf("/inventory/%d", id), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (a *API) Create(ctx context.Context, in models.InventoryItemCreate) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := a.c.Post(ctx, "/inventory", in, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (a *API) Update(ctx context.Context, id int64, in models.InventoryItemUpdate) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := a.c.Put(ctx, fmt.Sprintf("/inventory/%d", id), in, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (a *API) Delete(ctx context.Context, id int64) error {
	return a.c.Delete(ctx, fmt.Sprintf("/inventory/%d", id), nil)
}
