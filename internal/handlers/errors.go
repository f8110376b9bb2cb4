package handlers

import (
	"errors"
	"fmt"
	"log"

	"healthtracker/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// respondError maps a service error to its HTTP status. Unclassified errors
// are logged and reported as a generic 500.
func respondError(c *fiber.Ctx, op string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrUserExists):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrTokenMissing):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrTokenInvalid):
		status = fiber.StatusForbidden
	}

	if status == fiber.StatusInternalServerError {
		log.Printf("Error %s: %v", op, err)
		return c.Status(status).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// respondValidation reports struct validation failures with one message per field.
func respondValidation(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	errorMessages := make(map[string]string, len(validationErrors))
	summary := ""
	for _, e := range validationErrors {
		msg := fieldMessage(e)
		errorMessages[e.Field()] = msg
		if summary == "" {
			summary = msg
		}
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  summary,
		"errors": errorMessages,
	})
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", e.Field())
	case "gte":
		return fmt.Sprintf("%s must not be negative", e.Field())
	default:
		return fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
}
