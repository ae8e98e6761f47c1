package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"docinspect/internal/http/middleware"
	"docinspect/internal/service"
)

// errorPayload is the body of every non-2xx response.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiError struct {
	code    string
	message string
}

var statusErrors = map[int]apiError{
	fiber.StatusBadRequest:          {"BAD_REQUEST", "bad request"},
	fiber.StatusNotFound:            {"NOT_FOUND", "resource not found"},
	fiber.StatusMethodNotAllowed:    {"METHOD_NOT_ALLOWED", "method not allowed"},
	fiber.StatusRequestTimeout:      {"TIMEOUT", "request timed out"},
	fiber.StatusServiceUnavailable:  {"SERVICE_UNAVAILABLE", "dependency unavailable"},
	fiber.StatusGatewayTimeout:      {"TIMEOUT", "request timed out"},
	fiber.StatusInternalServerError: {"INTERNAL_ERROR", "internal server error"},
}

// statusOf maps errors escaping a handler to an HTTP status.
func statusOf(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrIDRequired):
		return fiber.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

func requestIDFromCtx(c *fiber.Ctx) string {
	id, _ := c.Locals(middleware.RequestIDLocalKey).(string)
	return id
}

// writeError writes the error body. code is machine-readable (e.g. "INVALID_ID");
// message must not carry internal details.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

// ErrorHandler renders errors that reach Fiber as errorPayload. Unknown statuses
// are reported with the generic internal error code.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := statusOf(err)
		e, ok := statusErrors[status]
		if !ok {
			e = statusErrors[fiber.StatusInternalServerError]
		}
		return writeError(c, status, e.code, e.message)
	}
}
