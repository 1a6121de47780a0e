package admin

import (
	"errors"
	"fmt"
	"strings"

	"circulyte-backend/internal/audit"
	"circulyte-backend/internal/auth"
	"circulyte-backend/internal/events"
	"circulyte-backend/internal/models"
	"circulyte-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

type SourceResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Contact   string `json:"contact"`
	City      string `json:"city"`
	Country   string `json:"country"`
	CreatedAt string `json:"createdAt"`
}

type CreateSourceRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	City    string `json:"city"`
	Country string `json:"country"`
}

func toSourceResponse(s models.Source) SourceResponse {
	return SourceResponse{
		ID:        s.ID,
		Name:      s.Name,
		Contact:   s.Contact,
		City:      s.City,
		Country:   s.Country,
		CreatedAt: s.CreatedAt.Format(timeLayout),
	}
}

func (r *CreateSourceRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Contact = strings.TrimSpace(r.Contact)
	r.City = strings.TrimSpace(r.City)
	r.Country = strings.TrimSpace(r.Country)
}

// POST /api/sources
func CreateSourceHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSourceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.normalize()
		if body.Name == "" || body.Contact == "" || body.City == "" || body.Country == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Please fill in all fields.")
		}

		src := models.Source{
			Name:    body.Name,
			Contact: body.Contact,
			City:    body.City,
			Country: body.Country,
		}
		if err := d.Sources.CreateSource(c.UserContext(), &src); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to add source. Please try again.")
		}

		userID, email := auth.Actor(c)
		d.Audit.Record(c.UserContext(), audit.LogOptions{
			UserID:      userID,
			UserEmail:   email,
			EntityType:  "source",
			EntityID:    src.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Added source %s", src.Name),
			After:       src,
		})
		d.publish(c.UserContext(), events.TopicSourcesChanged, "create", src.ID)

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": fmt.Sprintf("Successfully added source: %s", src.Name),
			"source":  toSourceResponse(src),
		})
	}
}

// GET /api/sources
func ListSourcesHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sources, err := d.Sources.ListSources(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load sources")
		}

		res := make([]SourceResponse, 0, len(sources))
		for _, s := range sources {
			res = append(res, toSourceResponse(s))
		}
		return c.JSON(res)
	}
}

// DELETE /api/sources/:id
func DeleteSourceHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		src, err := d.Sources.GetSource(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Source not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load source")
		}

		if err := d.Sources.DeleteSource(c.UserContext(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Source not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to remove source. Please try again.")
		}

		userID, email := auth.Actor(c)
		d.Audit.Record(c.UserContext(), audit.LogOptions{
			UserID:      userID,
			UserEmail:   email,
			EntityType:  "source",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Removed source %s", src.Name),
			Before:      src,
		})
		d.publish(c.UserContext(), events.TopicSourcesChanged, "delete", id)

		return c.JSON(fiber.Map{
			"message": fmt.Sprintf("Successfully removed source: %s", src.Name),
		})
	}
}
