package shipments

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"circulyte-backend/internal/models"
	"circulyte-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type PackDetailResponse struct {
	PackID   string  `json:"packId"`
	Weight   float64 `json:"weight"`
	Material string  `json:"material"`
	Source   string  `json:"source"`
	Status   string  `json:"status"`
}

type ShipmentResponse struct {
	ID                string               `json:"id"`
	VendorName        string               `json:"vendorName"`
	VehicleNumber     string               `json:"vehicleNumber"`
	DriverName        string               `json:"driverName"`
	DriverContact     string               `json:"driverContact"`
	CreatedAt         string               `json:"createdAt"`
	FiberPacksDetails []PackDetailResponse `json:"fiberPacksDetails"`
	Totals            Totals               `json:"totals"`
}

func toShipmentResponse(s models.VendorShipment) ShipmentResponse {
	resp := ShipmentResponse{
		ID:                s.ID,
		VendorName:        s.VendorName,
		VehicleNumber:     s.VehicleNumber,
		DriverName:        s.DriverName,
		DriverContact:     s.DriverContact,
		CreatedAt:         s.CreatedAt.Format(time.RFC3339),
		FiberPacksDetails: make([]PackDetailResponse, 0, len(s.FiberPacksDetails)),
		Totals:            TotalsOf(s),
	}
	for _, p := range s.FiberPacksDetails {
		resp.FiberPacksDetails = append(resp.FiberPacksDetails, PackDetailResponse(p))
	}
	return resp
}

// GET /api/vendor-shipments?search=&vendor=
func ListShipmentsHandler(s store.ShipmentStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := s.ListVendorShipments(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load shipments.")
		}

		filtered := Filter(list, c.Query("search"), c.Query("vendor", allVendors))
		resp := make([]ShipmentResponse, 0, len(filtered))
		for _, sh := range filtered {
			resp = append(resp, toShipmentResponse(sh))
		}
		return c.JSON(resp)
	}
}

// GET /api/vendor-shipments/vendors
func ListShipmentVendorsHandler(s store.ShipmentStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := s.ListVendorShipments(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load shipments.")
		}
		return c.JSON(VendorNames(list))
	}
}

// GET /api/vendor-shipments/:id/export
func ExportShipmentHandler(s store.ShipmentStore, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sh, err := s.GetVendorShipment(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Shipment not found.")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load shipment.")
		}

		var buf bytes.Buffer
		if err := WriteExport(&buf, *sh); err != nil {
			logger.Error("shipment export failed", zap.String("shipment", sh.ID), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Error exporting to Excel.")
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, ExportFilename(*sh, time.Now())))
		return c.Send(buf.Bytes())
	}
}
