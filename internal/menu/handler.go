package menu

import (
	"bytes"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"bizup-dashboard/internal/dashboard"
	"bizup-dashboard/internal/spreadsheet"
	"bizup-dashboard/internal/validation"
)

type filtersRequest struct {
	Search   string `json:"search"`
	Category string `json:"category"`
}

func RegisterRoutes(r fiber.Router, shell *dashboard.Shell) {
	g := r.Group("/menu")
	g.Get("/", ViewHandler(shell))
	g.Put("/filters", FiltersHandler(shell))
	g.Post("/refresh", RefreshHandler(shell))
	g.Post("/upload", UploadHandler(shell))
	g.Post("/upload/preview", PreviewHandler(shell))
	g.Get("/export.xlsx", ExportHandler(shell))
}

// GET /api/menu
func ViewHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabMenu, func(c *fiber.Ctx, t *Tab) error {
		return c.JSON(t.View())
	})
}

// PUT /api/menu/filters {"search": "라떼", "category": "커피"}
func FiltersHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabMenu, func(c *fiber.Ctx, t *Tab) error {
		var req filtersRequest
		if err := dashboard.ParseBody(c, &req); err != nil {
			return dashboard.Fail(c, err, t.View())
		}
		t.SetFilters(req.Search, req.Category)
		return c.JSON(t.View())
	})
}

// POST /api/menu/refresh
func RefreshHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabMenu, func(c *fiber.Ctx, t *Tab) error {
		if err := t.Refresh(c.UserContext()); err != nil {
			return dashboard.Fail(c, err, t.View())
		}
		return c.JSON(t.View())
	})
}

// POST /api/menu/upload (multipart, field "file")
func UploadHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabMenu, func(c *fiber.Ctx, t *Tab) error {
		name, file, err := formFile(c)
		if err != nil {
			// Let the tab report the missing file.
			_, err = t.Upload(c.UserContext(), "", nil)
			return dashboard.Fail(c, err, t.View())
		}
		defer file.Close()

		result, err := t.Upload(c.UserContext(), name, file)
		if err != nil {
			return dashboard.Fail(c, err, t.View())
		}
		return c.JSON(fiber.Map{"result": result, "view": t.View()})
	})
}

// POST /api/menu/upload/preview (multipart, field "file")
func PreviewHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabMenu, func(c *fiber.Ctx, t *Tab) error {
		name, file, err := formFile(c)
		if err != nil {
			_, err = t.Preview("", nil)
			return dashboard.Fail(c, err, nil)
		}
		defer file.Close()

		p, err := t.Preview(name, file)
		if err != nil {
			return dashboard.Fail(c, err, nil)
		}
		return c.JSON(p)
	})
}

// GET /api/menu/export.xlsx
func ExportHandler(shell *dashboard.Shell) fiber.Handler {
	return dashboard.Handle(shell, dashboard.TabMenu, func(c *fiber.Ctx, t *Tab) error {
		var buf bytes.Buffer
		if err := t.Export(&buf); err != nil {
			return dashboard.Fail(c, err, nil)
		}
		c.Attachment("menu.xlsx")
		c.Set(fiber.HeaderContentType, spreadsheet.ContentType)
		return c.Send(buf.Bytes())
	})
}

func formFile(c *fiber.Ctx) (string, multipart.File, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, validation.New("파일을 열 수 없어요.")
	}
	return fh.Filename, f, nil
}
