package handler

import (
	"github.com/gofiber/fiber/v2"

	"fileshare/internal/http/middleware"
	"fileshare/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	Errors    map[string][]string `json:"errors,omitempty"`
	RequestID string              `json:"request_id"`
	Error     errorEnvelope       `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "NOT_FOUND", "FORBIDDEN", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeErrorFields(c, status, code, message, nil)
}

func writeErrorFields(c *fiber.Ctx, status int, code, message string, fields map[string][]string) error {
	res := errorPayload{
		Success:   false,
		Message:   message,
		Errors:    fields,
		RequestID: middleware.GetRequestID(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError maps a service error to its HTTP status. Validation
// failures use validationStatus since routes differ between 400 and 422.
// Anything unclassified is reported as a bare 500.
func writeServiceError(c *fiber.Ctx, err error, validationStatus int) error {
	e, ok := service.AsError(err)
	if !ok {
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
	switch e.Kind {
	case service.KindValidation:
		return writeErrorFields(c, validationStatus, "VALIDATION_ERROR", e.Message, e.Fields)
	case service.KindUnauthenticated:
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", e.Message)
	case service.KindAuthenticationFailed:
		return writeError(c, fiber.StatusUnauthorized, "AUTHENTICATION_FAILED", e.Message)
	case service.KindForbidden:
		return writeError(c, fiber.StatusForbidden, "FORBIDDEN", e.Message)
	case service.KindNotFound:
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", e.Message)
	case service.KindDuplicateEmail:
		return writeError(c, fiber.StatusBadRequest, "DUPLICATE_EMAIL", e.Message)
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
// Service errors returned by middleware (e.g. RequireAuth) are mapped like handler errors.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if _, ok := service.AsError(err); ok {
			return writeServiceError(c, err, fiber.StatusUnprocessableEntity)
		}

		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHENTICATED", "authentication required")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}

// parseBody decodes JSON, urlencoded or multipart bodies. An empty body leaves
// out zeroed so the service reports missing fields in its own order.
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(out)
}
