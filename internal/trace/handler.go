package trace

import (
	"errors"
	"strconv"
	"time"

	"circulyte-backend/internal/auth"
	"circulyte-backend/internal/models"
	"circulyte-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const maxFiberPackList = 100

type FiberPackResponse struct {
	ID              string   `json:"id"`
	Weight          float64  `json:"weight"`
	RecycledAt      string   `json:"recycledAt"`
	Materials       []string `json:"materials"`
	Colors          []string `json:"colors"`
	FromSortedPacks []string `json:"fromSortedPacks"`
}

type SortedPackResponse struct {
	ID              string  `json:"id"`
	Material        string  `json:"material"`
	Brand           string  `json:"brand"`
	Weight          float64 `json:"weight"`
	SortedAt        *string `json:"sortedAt"`
	OriginalBatchID string  `json:"originalBatchId"`
}

type BatchResponse struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	BoxCount     int    `json:"boxCount"`
	DateReceived string `json:"dateReceived"`
	CreatedBy    string `json:"createdBy"`
}

type TraceResponse struct {
	FiberPack   FiberPackResponse    `json:"fiberPack"`
	SortedPacks []SortedPackResponse `json:"sortedPacks"`
	Batches     []BatchResponse      `json:"batches"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func ToFiberPackResponse(p models.FiberPack) FiberPackResponse {
	return FiberPackResponse{
		ID:              p.ID,
		Weight:          p.Weight,
		RecycledAt:      p.RecycledAt.Format(time.RFC3339),
		Materials:       nonNil(p.Materials),
		Colors:          nonNil(p.Colors),
		FromSortedPacks: nonNil(p.FromSortedPacks),
	}
}

func ToBatchResponse(b models.Batch) BatchResponse {
	return BatchResponse{
		ID:           b.ID,
		Source:       b.Source,
		BoxCount:     b.BoxCount,
		DateReceived: b.DateReceived.Format(time.RFC3339),
		CreatedBy:    b.CreatedBy,
	}
}

func toTraceResponse(t *Trace) TraceResponse {
	resp := TraceResponse{
		FiberPack:   ToFiberPackResponse(t.FiberPack),
		SortedPacks: make([]SortedPackResponse, 0, len(t.SortedPacks)),
		Batches:     make([]BatchResponse, 0, len(t.Batches)),
	}
	for _, p := range t.SortedPacks {
		sp := SortedPackResponse{
			ID:              p.ID,
			Material:        p.Material,
			Brand:           p.Brand,
			Weight:          p.Weight,
			OriginalBatchID: p.OriginalBatchID,
		}
		if p.SortedAt != nil {
			s := p.SortedAt.Format(time.RFC3339)
			sp.SortedAt = &s
		}
		resp.SortedPacks = append(resp.SortedPacks, sp)
	}
	for _, b := range t.Batches {
		resp.Batches = append(resp.Batches, ToBatchResponse(b))
	}
	return resp
}

// GET /api/fiber-packs?limit=100
func ListFiberPacksHandler(packs store.FiberPackStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := maxFiberPackList
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return fiber.NewError(fiber.StatusBadRequest, "limit must be a positive number")
			}
			if n < limit {
				limit = n
			}
		}

		list, err := packs.ListRecentFiberPacks(c.UserContext(), limit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch fiber packs.")
		}

		resp := make([]FiberPackResponse, 0, len(list))
		for _, p := range list {
			resp = append(resp, ToFiberPackResponse(p))
		}
		return c.JSON(resp)
	}
}

// GET /api/trace/fiber-packs/:id
func TraceFiberPackHandler(packs store.FiberPackStore, trackers *Registry, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := auth.Actor(c)
		tracker := trackers.For(userID)
		if id, held := tracker.Selected(); held != nil && id == c.Params("id") {
			return c.JSON(toTraceResponse(held))
		}

		fp, err := packs.GetFiberPack(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Fiber pack not found.")
			}
			logger.Error("load fiber pack failed", zap.String("id", c.Params("id")), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch traceability data.")
		}

		t, err := tracker.Select(c.UserContext(), *fp)
		if err != nil {
			if errors.Is(err, ErrNoLinkedSortedPacks) {
				return fiber.NewError(fiber.StatusUnprocessableEntity, "This fiber pack has no linked sorted packs.")
			}
			logger.Error("trace resolution failed", zap.String("fiber_pack", fp.ID), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch traceability data.")
		}

		return c.JSON(toTraceResponse(t))
	}
}
