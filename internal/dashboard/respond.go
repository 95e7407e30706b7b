package dashboard

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"bizup-dashboard/internal/apiclient"
	"bizup-dashboard/internal/validation"
)

// StatusFor maps a tab action error to the HTTP status returned to the
// frontend.
func StatusFor(err error) int {
	if validation.IsValidation(err) {
		return fiber.StatusBadRequest
	}
	if apiErr, ok := apiclient.AsAPIError(err); ok {
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return apiErr.StatusCode
		}
		return fiber.StatusBadGateway
	}
	if apiclient.IsTransport(err) {
		return fiber.StatusBadGateway
	}
	if errors.Is(err, ErrNotActive) {
		return fiber.StatusConflict
	}
	if errors.Is(err, ErrUnknownTab) {
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

// Fail writes {"error": ..., "view": ...}. view may be nil.
func Fail(c *fiber.Ctx, err error, view any) error {
	body := fiber.Map{"error": err.Error()}
	if view != nil {
		body["view"] = view
	}
	return c.Status(StatusFor(err)).JSON(body)
}

// Handle resolves the mounted tab before calling fn.
func Handle[T Tab](s *Shell, id TabID, fn func(c *fiber.Ctx, tab T) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tab, err := Lookup[T](s, id)
		if err != nil {
			return Fail(c, err, nil)
		}
		return fn(c, tab)
	}
}

// ParamID parses a positive integer route parameter.
func ParamID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, validation.New("invalid " + name)
	}
	return id, nil
}

// ParseBody decodes the request body, reporting failures as validation
// errors.
func ParseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return validation.New("invalid request body")
	}
	return nil
}
