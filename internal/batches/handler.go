package batches

import (
	"errors"
	"strings"
	"time"

	"circulyte-backend/internal/store"
	"circulyte-backend/internal/trace"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type PageResponse struct {
	Batches    []trace.BatchResponse `json:"batches"`
	NextCursor string                `json:"nextCursor,omitempty"`
	HasMore    bool                  `json:"hasMore"`
}

func toPageResponse(p *Page) PageResponse {
	resp := PageResponse{
		Batches: make([]trace.BatchResponse, 0, len(p.Batches)),
		HasMore: p.HasMore,
	}
	if p.HasMore {
		resp.NextCursor = p.Cursor
	}
	for _, b := range p.Batches {
		resp.Batches = append(resp.Batches, trace.ToBatchResponse(b))
	}
	return resp
}

// GET /api/batches?cursor=...        paged, newest first
// GET /api/batches?date=2024-05-10   one calendar day, cursor ignored
func ListBatchesHandler(p Pager, loc *time.Location, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if date := strings.TrimSpace(c.Query("date")); date != "" {
			day, err := time.ParseInLocation("2006-01-02", date, loc)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date must be in YYYY-MM-DD format")
			}
			page, err := FetchDay(c.UserContext(), p, day)
			if err != nil {
				logger.Error("batch day query failed", zap.String("date", date), zap.Error(err))
				return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch batches.")
			}
			return c.JSON(toPageResponse(page))
		}

		page, err := FetchPage(c.UserContext(), p, strings.TrimSpace(c.Query("cursor")))
		if err != nil {
			if errors.Is(err, store.ErrInvalidCursor) {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid cursor")
			}
			logger.Error("batch page query failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch batches.")
		}
		return c.JSON(toPageResponse(page))
	}
}
