package api

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"rag/types"
)

// ErrorHandler turns core error kinds into status codes. Operator-fixable
// problems (bad input, missing key, absent capability) map to 400, absent
// documents to 404, unreachable upstreams to 502, the rest to 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var apiErr Error
	if errors.As(err, &apiErr) {
		return c.Status(apiErr.Code).JSON(apiErr)
	}

	var valErr ValidationError
	if errors.As(err, &valErr) {
		return c.Status(valErr.Status).JSON(valErr)
	}

	code := statusFor(err)
	if code >= fiber.StatusInternalServerError {
		slog.Default().Error("request failed", "code", code, "error", err.Error())
	}
	return c.Status(code).JSON(NewError(code, err.Error()))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, types.ErrInvalidProvider),
		errors.Is(err, types.ErrCapabilityMissing),
		errors.Is(err, types.ErrAuthenticationMissing),
		errors.Is(err, types.ErrEmptyDocument),
		errors.Is(err, types.ErrInvalidChunking),
		errors.Is(err, types.ErrUnsupportedFormat),
		errors.Is(err, types.ErrExtractionFailed):
		return fiber.StatusBadRequest
	case errors.Is(err, types.ErrProviderUnavailable),
		errors.Is(err, types.ErrStorageUnavailable):
		return fiber.StatusBadGateway
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return fiber.StatusInternalServerError
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

// Error implements the error interface.
func (e Error) Error() string {
	return e.Message
}

func NewError(code int, err string) Error {
	return Error{
		Code:    code,
		Message: err,
	}
}

func ErrBadRequest() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid JSON request",
	}
}

func ErrNotFound[T any](arg T, resource string) Error {
	return Error{
		Code:    fiber.StatusNotFound,
		Message: fmt.Sprintf("%s with %v not found", resource, arg),
	}
}

type ValidationError struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	return "validation failed"
}

func NewValidationError(errors map[string]string) ValidationError {
	return ValidationError{
		Status: fiber.StatusUnprocessableEntity,
		Errors: errors,
	}
}
