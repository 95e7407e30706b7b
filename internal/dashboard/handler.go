package dashboard

import (
	"github.com/gofiber/fiber/v2"
)

type tabEntry struct {
	ID     TabID  `json:"id"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

type shellResponse struct {
	Active TabID      `json:"active"`
	Tabs   []tabEntry `json:"tabs"`
}

func (s *Shell) describe() shellResponse {
	active := s.Active()
	resp := shellResponse{Active: active, Tabs: make([]tabEntry, 0, len(Tabs))}
	for _, id := range Tabs {
		resp.Tabs = append(resp.Tabs, tabEntry{ID: id, Label: id.Label(), Active: id == active})
	}
	return resp
}

type activateRequest struct {
	Tab TabID `json:"tab"`
}

func RegisterRoutes(r fiber.Router, s *Shell) {
	r.Get("/shell", ShellHandler(s))
	r.Put("/shell/active", ActivateHandler(s))
	r.Get("/toasts", ToastsHandler(s))
}

// GET /api/shell
func ShellHandler(s *Shell) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(s.describe())
	}
}

// PUT /api/shell/active {"tab": "menu"}
func ActivateHandler(s *Shell) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req activateRequest
		if err := ParseBody(c, &req); err != nil {
			return Fail(c, err, nil)
		}
		if err := s.Activate(c.UserContext(), req.Tab); err != nil {
			return Fail(c, err, nil)
		}
		return c.JSON(s.describe())
	}
}

// GET /api/toasts
func ToastsHandler(s *Shell) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(s.feed.Drain())
	}
}
