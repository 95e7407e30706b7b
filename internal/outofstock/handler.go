package outofstock

import (
	"github.com/gofiber/fiber/v2"

	"bizup-dashboard/internal/dashboard"
)

func RegisterRoutes(r fiber.Router, shell *dashboard.Shell) {
	g := r.Group("/out-of-stock")
	g.Get("/", ViewHandler(shell))
	g.Post("/refresh", RefreshHandler(shell))
	g.Post("/:id/restock", RestockHandler(shell))
}

// GET /api/out-of-stock
func ViewHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabOutOfStock, func(c *fiber.Ctx, t *Tab) error {
		return c.JSON(t.View())
	})
}

// POST /api/out-of-stock/refresh
func RefreshHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabOutOfStock, func(c *fiber.Ctx, t *Tab) error {
		if err := t.Refresh(c.UserContext()); err != nil {
			return dashboard.Fail(c, err, t.View())
		}
		return c.JSON(t.View())
	})
}

// POST /api/out-of-stock/:id/restock
func RestockHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabOutOfStock, func(c *fiber.Ctx, t *Tab) error {
		id, err := dashboard.ParamID(c, "id")
		if err != nil {
			return dashboard.Fail(c, err, t.View())
		}
		resp, err := t.Restock(c.UserContext(), id)
		if err != nil {
			return dashboard.Fail(c, err, t.View())
		}
		return c.JSON(fiber.Map{"restock": resp, "view": t.View()})
	})
}
