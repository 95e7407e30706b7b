package settings

import (
	"github.com/gofiber/fiber/v2"

	"bizup-dashboard/internal/dashboard"
	"bizup-dashboard/internal/models"
)

type toggleRequest struct {
	Enabled bool `json:"enabled"`
}

func RegisterRoutes(r fiber.Router, shell *dashboard.Shell) {
	g := r.Group("/settings")
	g.Get("/", ViewHandler(shell))
	g.Post("/refresh", RefreshHandler(shell))
	g.Post("/employees/add/open", OpenAddHandler(shell))
	g.Post("/employees/add/close", CloseAddHandler(shell))
	g.Post("/employees", CreateEmployeeHandler(shell))
	g.Post("/employees/edit/close", CloseEditHandler(shell))
	g.Post("/employees/:id/edit", OpenEditHandler(shell))
	g.Put("/employees/:id", UpdateEmployeeHandler(shell))
	g.Delete("/employees/:id", DeleteEmployeeHandler(shell))
	g.Put("/store", SaveStoreHandler(shell))
	g.Put("/notifications/:key", NotificationHandler(shell))
}

// GET /api/settings
func ViewHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabSettings, func(c *fiber.Ctx, t *Tab) error {
		return c.JSON(t.View())
	})
}

// POST /api/settings/refresh
func RefreshHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabSettings, func(c *fiber.Ctx, t *Tab) error {
		return respond(c, t, t.Refresh(c.UserContext()))
	})
}

// POST /api/settings/employees/add/open
func OpenAddHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabSettings, func(c *fiber.Ctx, t *Tab) error {
		t.OpenAdd()
		return c.JSON(t.View())
	})
}

// POST /api/settings/employees/add/close
func CloseAddHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabSettings, func(c *fiber.Ctx, t *Tab) error {
		t.CloseAdd()
		return c.JSON(t.View())
	})
}

// POST /api/settings/employees {"name": "김민수", "role": "매니저", "phone": "010-1234-5678"}
func CreateEmployeeHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabSettings, func(c *fiber.Ctx, t *Tab) error {
		var form Form
		if err := dashboard.ParseBody(c, &form); err != nil {
			return dashboard.Fail(c, err, t.View())
		}
		return respond(c, t, t.AddEmployee(c.UserContext(), form))
	})
}

// POST /api/settings/employees/edit/close
func CloseEditHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabSettings, func(c *fiber.Ctx, t *Tab) error {
		t.CloseEdit()
		return c.JSON(t.View())
	})
}

// POST /api/settings/employees/:id/edit
func OpenEditHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabSettings, func(c *fiber.Ctx, t *Tab) error {
		id, err := dashboard.ParamID(c, "id")
		if err != nil {
			return dashboard.Fail(c, err, t.View())
		}
		return respond(c, t, t.OpenEdit(c.UserContext(), id))
	})
}

// PUT /api/settings/employees/:id
func UpdateEmployeeHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabSettings, func(c *fiber.Ctx, t *Tab) error {
		id, err := dashboard.ParamID(c, "id")
		if err != nil {
			return dashboard.Fail(c, err, t.View())
		}
		var form Form
		if err := dashboard.ParseBody(c, &form); err != nil {
			return dashboard.Fail(c, err, t.View())
		}
		return respond(c, t, t.EditEmployee(c.UserContext(), id, form))
	})
}

// DELETE /api/settings/employees/:id
func DeleteEmployeeHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabSettings, func(c *fiber.Ctx, t *Tab) error {
		id, err := dashboard.ParamID(c, "id")
		if err != nil {
			return dashboard.Fail(c, err, t.View())
		}
		return respond(c, t, t.DeleteEmployee(c.UserContext(), id))
	})
}

// PUT /api/settings/store
func SaveStoreHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabSettings, func(c *fiber.Ctx, t *Tab) error {
		var form models.StoreForm
		if err := dashboard.ParseBody(c, &form); err != nil {
			return dashboard.Fail(c, err, t.View())
		}
		return respond(c, t, t.SaveStore(c.UserContext(), form))
	})
}

// PUT /api/settings/notifications/daily_report {"enabled": true}
func NotificationHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabSettings, func(c *fiber.Ctx, t *Tab) error {
		var req toggleRequest
		if err := dashboard.ParseBody(c, &req); err != nil {
			return dashboard.Fail(c, err, t.View())
		}
		return respond(c, t, t.ToggleNotification(c.UserContext(), c.Params("key"), req.Enabled))
	})
}

func respond(c *fiber.Ctx, t *Tab, err error) error {
	if err != nil {
		return dashboard.Fail(c, err, t.View())
	}
	return c.JSON(t.View())
}
