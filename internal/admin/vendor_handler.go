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

type VendorResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Country     string `json:"country"`
	State       string `json:"state"`
	ContactInfo string `json:"contactInfo"`
	CreatedAt   string `json:"createdAt"`
}

type CreateVendorRequest struct {
	Name        string `json:"name"`
	Country     string `json:"country"` // optional
	State       string `json:"state"`   // optional
	ContactInfo string `json:"contactInfo"`
}

func toVendorResponse(v models.Vendor) VendorResponse {
	return VendorResponse{
		ID:          v.ID,
		Name:        v.Name,
		Country:     v.Country,
		State:       v.State,
		ContactInfo: v.ContactInfo,
		CreatedAt:   v.CreatedAt.Format(timeLayout),
	}
}

// POST /api/vendors
func CreateVendorHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateVendorRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Vendor name cannot be empty.")
		}

		v := models.Vendor{
			Name:        body.Name,
			Country:     strings.TrimSpace(body.Country),
			State:       strings.TrimSpace(body.State),
			ContactInfo: strings.TrimSpace(body.ContactInfo),
		}
		if err := d.Vendors.CreateVendor(c.UserContext(), &v); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to add vendor. Please try again.")
		}

		userID, email := auth.Actor(c)
		d.Audit.Record(c.UserContext(), audit.LogOptions{
			UserID:      userID,
			UserEmail:   email,
			EntityType:  "vendor",
			EntityID:    v.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Added vendor %s", v.Name),
			After:       v,
		})
		d.publish(c.UserContext(), events.TopicVendorsChanged, "create", v.ID)

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": fmt.Sprintf("Successfully added vendor: %s", v.Name),
			"vendor":  toVendorResponse(v),
		})
	}
}

// GET /api/vendors
func ListVendorsHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		vendors, err := d.Vendors.ListVendors(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load vendors")
		}

		res := make([]VendorResponse, 0, len(vendors))
		for _, v := range vendors {
			res = append(res, toVendorResponse(v))
		}
		return c.JSON(res)
	}
}

// DELETE /api/vendors/:id
func DeleteVendorHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		v, err := d.Vendors.GetVendor(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Vendor not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load vendor")
		}

		if err := d.Vendors.DeleteVendor(c.UserContext(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Vendor not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to remove vendor. Please try again.")
		}

		userID, email := auth.Actor(c)
		d.Audit.Record(c.UserContext(), audit.LogOptions{
			UserID:      userID,
			UserEmail:   email,
			EntityType:  "vendor",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Removed vendor %s", v.Name),
			Before:      v,
		})
		d.publish(c.UserContext(), events.TopicVendorsChanged, "delete", id)

		return c.JSON(fiber.Map{
			"message": fmt.Sprintf("Successfully removed vendor: %s", v.Name),
		})
	}
}
