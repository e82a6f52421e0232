package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the JSON shape for every error surfaced by a route.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorHandler renders errors that escape a handler. fiber.Error codes and
// messages pass through; anything else becomes an opaque 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{Error: message})
}
