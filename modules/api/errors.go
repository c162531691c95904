package api

import (
	"errors"

	"github.com/example/inventory-service/modules/inventory"
	"github.com/example/inventory-service/schema"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// Public error messages.
const (
	msgValidationFailed = "Validation failed"
	msgConflict         = "Article already exists"
	msgNotFound         = "Product not found"
	msgDatabase         = "Database error"
	msgInternal         = "Internal server error"
)

// writeError maps service errors to HTTP responses. Storage and unexpected
// errors are logged and answered without detail.
func writeError(c *fiber.Ctx, logger types.Logger, err error) error {
	var verr *schema.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(ValidationErrorResponse{
			Message: msgValidationFailed,
			Errors:  verr.Fields,
		})
	case errors.Is(err, inventory.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(ValidationErrorResponse{
			Message: msgValidationFailed,
			Errors:  map[string][]string{schema.BodyField: {err.Error()}},
		})
	case errors.Is(err, inventory.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(MessageResponse{Message: msgConflict})
	case errors.Is(err, inventory.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(MessageResponse{Message: msgNotFound})
	case errors.Is(err, inventory.ErrStorage):
		logger.Error("Storage error", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(MessageResponse{Message: msgDatabase})
	default:
		logger.Error("Unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(MessageResponse{Message: msgInternal})
	}
}

// errorHandler answers errors that escape the handlers, such as unknown
// routes, disallowed methods and recovered panics.
func errorHandler(logger types.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(MessageResponse{Message: fe.Message})
		}
		return writeError(c, logger, err)
	}
}
