package menu

import (
	"context"
	"io"

	"bizup-dashboard/internal/apiclient"
	"bizup-dashboard/internal/models"
)

type API struct {
	c apiclient.Requester
}

func NewAPI(c apiclient.Requester) *API {
	return &API{c: c}
}

// List sends only the filters that are set.
func (a *API) List(ctx context.Context, search, category string) ([]models.MenuItem, error) {
	params := apiclient.Params{}
	if search != "" {
		params["search"] = search
	}
	if category != "" {
		params["category"] = category
	}
	var items []models.MenuItem
	if err := a.c.Get(ctx, "/menus", params, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (a *API) Upload(ctx context.Context, filename string, r io.Reader) (*models.MenuUploadResponse, error) {
	var resp models.MenuUploadResponse
	if err := a.c.PostFile(ctx, "/menus/upload", filename, r, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
