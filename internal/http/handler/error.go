package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"catalogapi/internal/apperror"
	"catalogapi/internal/http/middleware"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// writeError writes a standardized JSON error response. message must be
// safe for clients.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeErrorFields(c, status, code, message, nil)
}

func writeErrorFields(c *fiber.Ctx, status int, code, message string, fields map[string]string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: middleware.GetRequestID(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
			Fields:  fields,
		},
	})
}

// respondError maps a service error onto its status and code. Unknown errors
// become 500 without exposing their text.
func respondError(c *fiber.Ctx, err error) error {
	var verr *apperror.ValidationError
	switch {
	case errors.As(err, &verr):
		return writeErrorFields(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "validation failed", verr.Fields)
	case errors.Is(err, apperror.ErrInvalidCredentials):
		return writeError(c, fiber.StatusBadRequest, "INVALID_CREDENTIALS", "invalid username or password")
	case errors.Is(err, apperror.ErrDuplicateAccount):
		return writeError(c, fiber.StatusBadRequest, "DUPLICATE_ACCOUNT", "an account with this username already exists")
	case errors.Is(err, apperror.ErrUnauthenticated):
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "authentication credentials were not provided or are invalid")
	case errors.Is(err, apperror.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, apperror.ErrStoreUnavailable):
		return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if !errors.As(err, &fe) {
			return respondError(c, err)
		}

		switch fe.Code {
		case fiber.StatusBadRequest:
			return writeError(c, fe.Code, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, fe.Code, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, fe.Code, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, fe.Code, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
	}
}
