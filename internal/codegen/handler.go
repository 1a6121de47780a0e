package codegen

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type GenerateRequest struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
}

// POST /api/codes/generate
// Responds with the xlsx file as an attachment.
func GenerateHandler(g *Generator, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body GenerateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		t, err := ParseType(body.Type)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Please select a QR type (BOX, FIBER or PACK).")
		}
		if body.Quantity < 1 || body.Quantity > MaxQuantity {
			return fiber.NewError(fiber.StatusBadRequest, "Quantity must be between 1 and 1,000,000.")
		}

		data, filename, err := g.Export(t, body.Quantity, func(done, total int) {
			logger.Debug("code generation progress", zap.Int("done", done), zap.Int("total", total))
		})
		if err != nil {
			if errors.Is(err, ErrInvalidQuantity) || errors.Is(err, ErrUnknownType) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			logger.Error("code generation failed", zap.String("type", string(t)), zap.Int("quantity", body.Quantity), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Error generating QR codes. Please try again with a smaller quantity.")
		}

		logger.Info("generated codes", zap.String("type", string(t)), zap.Int("quantity", body.Quantity))

		c.Set(fiber.HeaderContentType, xlsxContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
		c.Set("X-Codes-Generated", fmt.Sprint(body.Quantity))
		return c.Send(data)
	}
}
