package outofstock

import (
	"context"
	"fmt"
	"strconv"

	"bizup-dashboard/internal/apiclient"
	"bizup-dashboard/internal/models"
)

type API struct {
	c apiclient.Requester
}

func NewAPI(c apiclient.Requester) *API {
	return &API{c: c}
}

func (a *API) List(ctx context.Context) ([]models.OutOfStockItem, error) {
	var items []models.OutOfStockItem
	if err := a.c.Get(ctx, "/out-of-stock", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Restock adds quantity back onto the item. The quantity travels as a
// query parameter, not a body.
func (a *API) Restock(ctx context.Context, id int64, quantity int) (*models.RestockResponse, error) {
	endpoint := fmt.Sprintf("/out-of-stock/%d/restock?quantity=%s", id, strconv.Itoa(quantity))
	var resp models.RestockResponse
	if err := a.c.Post(ctx, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
