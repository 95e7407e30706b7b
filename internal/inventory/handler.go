package inventory

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"bizup-dashboard/internal/dashboard"
	"bizup-dashboard/internal/spreadsheet"
)

type searchRequest struct {
	Query string `json:"query"`
}

func RegisterRoutes(r fiber.Router, shell *dashboard.Shell) {
	g := r.Group("/inventory")
	g.Get("/", ViewHandler(shell))
	g.Put("/search", SearchHandler(shell))
	g.Post("/refresh", RefreshHandler(shell))
	g.Post("/add/open", OpenAddHandler(shell))
	g.Post("/add/close", CloseAddHandler(shell))
	g.Post("/items", CreateItemHandler(shell))
	g.Post("/items/:id/edit", OpenEditHandler(shell))
	g.Post("/edit/close", CloseEditHandler(shell))
	g.Put("/items/:id", UpdateItemHandler(shell))
	g.Delete("/items/:id", DeleteItemHandler(shell))
	g.Get("/export.xlsx", ExportHandler(shell))
}

// GET /api/inventory
func ViewHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabInventory, func(c *fiber.Ctx, t *Tab) error {
		return c.JSON(t.View())
	})
}

// PUT /api/inventory/search {"query": "우유"}
func SearchHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabInventory, func(c *fiber.Ctx, t *Tab) error {
		var req searchRequest
		if err := dashboard.ParseBody(c, &req); err != nil {
			return dashboard.Fail(c, err, t.View())
		}
		return respond(c, t, t.SetSearch(c.UserContext(), req.Query))
	})
}

// POST /api/inventory/refresh
func RefreshHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabInventory, func(c *fiber.Ctx, t *Tab) error {
		return respond(c, t, t.Refresh(c.UserContext()))
	})
}

// POST /api/inventory/add/open
func OpenAddHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabInventory, func(c *fiber.Ctx, t *Tab) error {
		t.OpenAdd()
		return c.JSON(t.View())
	})
}

// POST /api/inventory/add/close
func CloseAddHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabInventory, func(c *fiber.Ctx, t *Tab) error {
		t.CloseAdd()
		return c.JSON(t.View())
	})
}

// POST /api/inventory/items
func CreateItemHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabInventory, func(c *fiber.Ctx, t *Tab) error {
		var form Form
		if err := dashboard.ParseBody(c, &form); err != nil {
			return dashboard.Fail(c, err, t.View())
		}
		return respond(c, t, t.Add(c.UserContext(), form))
	})
}

// POST /api/inventory/items/:id/edit
func OpenEditHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabInventory, func(c *fiber.Ctx, t *Tab) error {
		id, err := dashboard.ParamID(c, "id")
		if err != nil {
			return dashboard.Fail(c, err, t.View())
		}
		return respond(c, t, t.OpenEdit(c.UserContext(), id))
	})
}

// POST /api/inventory/edit/close
func CloseEditHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabInventory, func(c *fiber.Ctx, t *Tab) error {
		t.CloseEdit()
		return c.JSON(t.View())
	})
}

// PUT /api/inventory/items/:id
func UpdateItemHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabInventory, func(c *fiber.Ctx, t *Tab) error {
		id, err := dashboard.ParamID(c, "id")
		if err != nil {
			return dashboard.Fail(c, err, t.View())
		}
		var form Form
		if err := dashboard.ParseBody(c, &form); err != nil {
			return dashboard.Fail(c, err, t.View())
		}
		return respond(c, t, t.Edit(c.UserContext(), id, form))
	})
}

// DELETE /api/inventory/items/:id
func DeleteItemHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabInventory, func(c *fiber.Ctx, t *Tab) error {
		id, err := dashboard.ParamID(c, "id")
		if err != nil {
			return dashboard.Fail(c, err, t.View())
		}
		return respond(c, t, t.Delete(c.UserContext(), id))
	})
}

// GET /api/inventory/export.xlsx
func ExportHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabInventory, func(c *fiber.Ctx, t *Tab) error {
		var buf bytes.Buffer
		if err := t.Export(&buf); err != nil {
			return dashboard.Fail(c, err, nil)
		}
		c.Attachment("inventory.xlsx")
		c.Set(fiber.HeaderContentType, spreadsheet.ContentType)
		return c.Send(buf.Bytes())
	})
}

func respond(c *fiber.Ctx, t *Tab, err error) error {
	if err != nil {
		return dashboard.Fail(c, err, t.View())
	}
	return c.JSON(t.View())
}
