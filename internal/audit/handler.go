package audit

import (
	"encoding/json"
	"strings"

	"circulyte-backend/internal/models"
	"circulyte-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

type AuditLogResponse struct {
	ID          string             `json:"id"`
	CreatedAt   string             `json:"created_at"`
	UserID      string             `json:"user_id"`
	UserEmail   string             `json:"user_email"`
	EntityType  string             `json:"entity_type"`
	EntityID    string             `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	Before      json.RawMessage    `json:"before"`
	After       json.RawMessage    `json:"after"`
}

func rawOrNull(s string) json.RawMessage {
	if strings.TrimSpace(s) == "" || !json.Valid([]byte(s)) {
		return json.RawMessage("null")
	}
	return json.RawMessage(s)
}

// GET /api/audit-logs?entity_type=source&entity_id=...
func ListAuditLogsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logs, err := svc.List(c.UserContext(), store.AuditQuery{
			EntityType: strings.TrimSpace(c.Query("entity_type")),
			EntityID:   strings.TrimSpace(c.Query("entity_id")),
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load audit logs")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, AuditLogResponse{
				ID:          l.ID,
				CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
				UserID:      l.UserID,
				UserEmail:   l.UserEmail,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      l.Action,
				Description: l.Description,
				Before:      rawOrNull(l.BeforeData),
				After:       rawOrNull(l.AfterData),
			})
		}

		return c.JSON(resp)
	}
}
