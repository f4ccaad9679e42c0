package api

import (
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) translate(c *fiber.Ctx, key string) string {
	return handler.i18n.Translate(handler.currentLanguage(c), key)
}

func (handler *Handler) ListMedications(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}

	handler.ensureDependencies()
	medications, err := handler.medicationService.List(c.UserContext(), user.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "medications": medications})
}

func (handler *Handler) CreateMedication(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}
	input := medicationInput{}
	if err := handler.parseBody(c, &input); err != nil {
		return err
	}

	handler.ensureDependencies()
	medication, err := handler.medicationService.Create(c.UserContext(), user.ID, input.toService())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"message":    handler.translate(c, "medication.created"),
		"medication": medication,
	})
}

func (handler *Handler) GetMedication(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}

	handler.ensureDependencies()
	medication, err := handler.medicationService.Get(c.UserContext(), user.ID, c.Params("id"))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "medication": medication})
}

func (handler *Handler) UpdateMedication(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}
	input := medicationUpdateInput{}
	if err := handler.parseBody(c, &input); err != nil {
		return err
	}
	update, err := input.toService(handler.location)
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	handler.ensureDependencies()
	medication, err := handler.medicationService.Update(c.UserContext(), user.ID, c.Params("id"), update)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"message":    handler.translate(c, "medication.updated"),
		"medication": medication,
	})
}

func (handler *Handler) DeactivateMedication(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}

	handler.ensureDependencies()
	if err := handler.medicationService.Deactivate(c.UserContext(), user.ID, c.Params("id")); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": handler.translate(c, "medication.deactivated"),
	})
}
