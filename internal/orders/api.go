package orders

import (
	"context"

	"bizup-dashboard/internal/apiclient"
	"bizup-dashboard/internal/models"
)

type API struct {
	c apiclient.Requester
}

func NewAPI(c apiclient.Requester) *API {
	return &API{c: c}
}

func (a *API) Recommendations(ctx context.Context) ([]models.OrderRecommendation, error) {
	var recs []models.OrderRecommendation
	if err := a.c.Get(ctx, "/orders/recommendations", nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (a *API) Create(ctx context.Context, order models.OrderCreate) (*models.OrderResponse, error) {
	var resp models.OrderResponse
	if err := a.c.Post(ctx, "/orders", order, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
