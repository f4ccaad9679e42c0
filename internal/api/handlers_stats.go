package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/medlembra/medlembra/internal/services"
)

func (handler *Handler) GetStats(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}
	days, err := services.ParseWindowDays(c.Query("days"))
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	handler.ensureDependencies()
	summary, err := handler.statsService.Summary(c.UserContext(), user.ID, days)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(summary)
}
