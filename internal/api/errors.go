package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/advisory_service/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorResponse единый формат ошибки API
type ErrorResponse struct {
	Status    int       `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// statusFor сопоставляет ошибку с HTTP-кодом и текстом для клиента.
// Ошибки хранилища наружу не раскрываются.
func statusFor(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return fiber.StatusBadRequest, validationMessage(ve)
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrConflict):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, service.ErrInvalidArgument):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrForbidden):
		return fiber.StatusForbidden, err.Error()
	default:
		return fiber.StatusInternalServerError, "Internal server error"
	}
}

// validationMessage описывает нарушения в терминах JSON-полей запроса
func validationMessage(ve validator.ValidationErrors) string {
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "gt":
			parts = append(parts, fmt.Sprintf("%s must be greater than %s", field, fe.Param()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "datetime":
			parts = append(parts, fmt.Sprintf("%s must match format %s", field, fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// ErrorHandler пишет ErrorResponse для любой ошибки обработчика
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, message := statusFor(err)
		if status >= fiber.StatusInternalServerError {
			logger.Error("Request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
		}

		return c.Status(status).JSON(ErrorResponse{
			Status:    status,
			Message:   message,
			Timestamp: time.Now().UTC(),
		})
	}
}
