package handlers

import (
	"errors"

	"pluginmarket/internal/services"

	"github.com/gofiber/fiber/v2"
)

// respondError maps the service error taxonomy to HTTP statuses.
func respondError(c *fiber.Ctx, err error, message string) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrBadSignature):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrPaymentGateway):
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
