package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, err := handler.authenticateRequest(c)
	switch {
	case errors.Is(err, errMissingBearerToken):
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	case errors.Is(err, errInvalidToken):
		return handler.apiError(c, fiber.StatusUnauthorized, "error.token_invalid")
	case err != nil:
		slog.ErrorContext(c.UserContext(), "authenticate request", "error", err)
		return handler.apiError(c, fiber.StatusInternalServerError, "error.internal")
	}

	c.Locals(contextUserKey, user)
	return c.Next()
}

// OptionalAuth attaches the user when a valid token is present and never rejects.
func (handler *Handler) OptionalAuth(c *fiber.Ctx) error {
	if user, err := handler.authenticateRequest(c); err == nil {
		c.Locals(contextUserKey, user)
	}
	return c.Next()
}
