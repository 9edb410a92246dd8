package serverutils

import (
	"github.com/gofiber/fiber/v2"

	"rag-chat-be/internal/apperror"
)

type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(message string, data interface{}) Envelope {
	return Envelope{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// ErrorHandlerMiddleware maps the structural error taxonomy onto HTTP codes.
// Anything unclassified becomes a 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := fiber.StatusInternalServerError
		switch {
		case apperror.IsNotFound(err):
			status = fiber.StatusNotFound
		case apperror.IsConflict(err):
			status = fiber.StatusConflict
		case apperror.IsExtractionFailure(err):
			status = fiber.StatusUnprocessableEntity
		default:
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		return ctx.Status(status).JSON(Envelope{
			Success: false,
			Message: err.Error(),
		})
	}
}
