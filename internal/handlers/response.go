package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/cargolink/internal/services"
)

// renderError maps a domain error to its HTTP status; anything else bubbles
// up to the fiber error handler as an internal failure.
func renderError(err error) error {
	de, ok := services.AsDomainError(err)
	if !ok {
		return err
	}

	status := fiber.StatusInternalServerError
	switch de.Kind {
	case services.ErrKindValidation:
		status = fiber.StatusBadRequest
	case services.ErrKindStateConflict:
		status = fiber.StatusConflict
	case services.ErrKindPermission:
		status = fiber.StatusForbidden
	case services.ErrKindNotFound:
		status = fiber.StatusNotFound
	}
	return fiber.NewError(status, de.Message)
}
