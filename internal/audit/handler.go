package audit

import (
	"github.com/gofiber/fiber/v2"

	"bizup-dashboard/internal/models"
)

type activityResponse struct {
	ID          uint                  `json:"id"`
	CreatedAt   string                `json:"created_at"`
	RequestID   string                `json:"request_id,omitempty"`
	EntityType  string                `json:"entity_type"`
	EntityID    int64                 `json:"entity_id"`
	Action      models.ActivityAction `json:"action"`
	Description string                `json:"description"`
}

// GET /api/activity?entity_type=employee
func ListHandler(store Lister) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logs, err := store.List(c.UserContext(), c.Query("entity_type"), DefaultListLimit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "activity log could not be listed")
		}

		resp := make([]activityResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, activityResponse{
				ID:          l.ID,
				CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
				RequestID:   l.RequestID,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      l.Action,
				Description: l.Description,
			})
		}
		return c.JSON(resp)
	}
}
