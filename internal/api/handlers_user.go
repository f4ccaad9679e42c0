package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/medlembra/medlembra/internal/services"
)

func (handler *Handler) GetMe(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}

	handler.ensureDependencies()
	profile, err := handler.userService.Profile(c.UserContext(), user.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": profile})
}

func (handler *Handler) UpdateMe(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}
	input := profileInput{}
	if err := handler.parseBody(c, &input); err != nil {
		return err
	}

	handler.ensureDependencies()
	profile, err := handler.userService.UpdateProfile(c.UserContext(), user.ID, services.ProfileUpdate{
		Name:    input.Name,
		Age:     input.Age,
		Picture: input.Picture,
	})
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": profile})
}
