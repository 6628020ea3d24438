package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"futurisys/attrition-api/internal/records"
	"futurisys/attrition-api/internal/repositories"
	"futurisys/attrition-api/internal/services"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Detail string              `json:"detail"`
	Code   int                 `json:"code"`
	Errors []records.Violation `json:"errors,omitempty"`
}

// errorResponse maps err to a status and a body that never carries internal
// error text for server-side failures.
func errorResponse(err error) ErrorResponse {
	var (
		verr     *records.ValidationError
		conflict *services.ConflictError
		fe       *fiber.Error
	)

	switch {
	case errors.As(err, &verr):
		return ErrorResponse{Detail: "validation failed", Code: fiber.StatusUnprocessableEntity, Errors: verr.Violations}
	case errors.As(err, &conflict):
		return ErrorResponse{Detail: conflict.Error(), Code: fiber.StatusConflict}
	case errors.Is(err, repositories.ErrConflict):
		return ErrorResponse{Detail: "record already exists", Code: fiber.StatusConflict}
	case errors.Is(err, repositories.ErrNotFound):
		return ErrorResponse{Detail: "prediction not found", Code: fiber.StatusNotFound}
	case errors.As(err, &fe):
		return ErrorResponse{Detail: fe.Message, Code: fe.Code}
	case errors.Is(err, services.ErrModel):
		return ErrorResponse{Detail: "the model could not score this record", Code: fiber.StatusInternalServerError}
	case errors.Is(err, services.ErrStorage):
		return ErrorResponse{Detail: "storage is unavailable", Code: fiber.StatusInternalServerError}
	}
	return ErrorResponse{Detail: "internal server error", Code: fiber.StatusInternalServerError}
}

// ErrorHandler renders errors returned by handlers and middleware.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		resp := errorResponse(err)
		if resp.Code >= fiber.StatusInternalServerError {
			logger.Error("Request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Any("request_id", c.Locals("requestid")),
				zap.Error(err))
		}
		return c.Status(resp.Code).JSON(resp)
	}
}

func invalidParam(field string, kind records.ViolationKind, message string) error {
	return &records.ValidationError{Violations: []records.Violation{
		{Field: field, Kind: kind, Message: message},
	}}
}
