package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler renders *Error as {"code", "error"} and *fiber.Error as
// {"error"}. Anything else is logged and answered with a generic 500.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *Error
		if errors.As(err, &appErr) {
			if appErr.Code == Internal {
				logger.Error("internal error", zap.String("path", c.Path()), zap.Error(err))
			}
			return c.Status(appErr.Status()).JSON(fiber.Map{
				"code":  appErr.Code,
				"error": appErr.Message,
			})
		}

		code := fiber.StatusInternalServerError
		msg := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
		} else {
			logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		}

		return c.Status(code).JSON(fiber.Map{
			"error": msg,
		})
	}
}
