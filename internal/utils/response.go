package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// MutationResponse sends the standard mutation envelope: ok, errors
// (null on success) and the resulting record.
func MutationResponse(c *fiber.Ctx, status int, result interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"ok":        true,
		"errors":    nil,
		"result":    result,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// MutationErrorResponse sends a failed mutation envelope with a structured
// errors payload (field errors for validation, a message otherwise).
func MutationErrorResponse(c *fiber.Ctx, status int, errs interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"ok":        false,
		"errors":    errs,
		"result":    nil,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ErrorResponse sends a standard request-level error response
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":    fiber.StatusNotFound,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
	})
}

// MutationResponseStruct defines the schema for mutation responses
type MutationResponseStruct struct {
	Ok        bool        `json:"ok"`
	Errors    interface{} `json:"errors"`
	Result    interface{} `json:"result"`
	Timestamp string      `json:"timestamp"`
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
	Type      string `json:"type,omitempty"`
}
