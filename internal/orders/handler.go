package orders

import (
	"github.com/gofiber/fiber/v2"

	"bizup-dashboard/internal/dashboard"
)

func RegisterRoutes(r fiber.Router, shell *dashboard.Shell) {
	g := r.Group("/orders")
	g.Get("/", ViewHandler(shell))
	g.Post("/refresh", RefreshHandler(shell))
	g.Post("/selection/:id", ToggleHandler(shell))
	g.Delete("/selection", ClearSelectionHandler(shell))
	g.Post("/", SubmitHandler(shell))
}

// GET /api/orders
func ViewHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabOrder, func(c *fiber.Ctx, t *Tab) error {
		return c.JSON(t.View())
	})
}

// POST /api/orders/refresh
func RefreshHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabOrder, func(c *fiber.Ctx, t *Tab) error {
		if err := t.Refresh(c.UserContext()); err != nil {
			return dashboard.Fail(c, err, t.View())
		}
		return c.JSON(t.View())
	})
}

// POST /api/orders/selection/:id toggles one recommendation
func ToggleHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabOrder, func(c *fiber.Ctx, t *Tab) error {
		id, err := dashboard.ParamID(c, "id")
		if err != nil {
			return dashboard.Fail(c, err, t.View())
		}
		if _, err := t.Toggle(id); err != nil {
			return dashboard.Fail(c, err, t.View())
		}
		return c.JSON(t.View())
	})
}

// DELETE /api/orders/selection
func ClearSelectionHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabOrder, func(c *fiber.Ctx, t *Tab) error {
		t.ClearSelection()
		return c.JSON(t.View())
	})
}

// POST /api/orders
func SubmitHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabOrder, func(c *fiber.Ctx, t *Tab) error {
		order, err := t.Submit(c.UserContext())
		if err != nil {
			return dashboard.Fail(c, err, t.View())
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"order": order, "view": t.View()})
	})
}
