package serverutils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userIdHeader = "X-User-ID"

// RequireUserId reads the caller identity header for owner-scoped routes.
func RequireUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw := ctx.Get(userIdHeader)
	if raw == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "missing "+userIdHeader+" header")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+userIdHeader+" header")
	}
	return id, nil
}

// OptionalUserId returns nil when the identity header is absent.
func OptionalUserId(ctx *fiber.Ctx) (*uuid.UUID, error) {
	raw := ctx.Get(userIdHeader)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+userIdHeader+" header")
	}
	return &id, nil
}
