package api

import (
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) TodayDoses(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}

	handler.ensureDependencies()
	doses, err := handler.doseService.Today(c.UserContext(), user.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "medicines": doses})
}

func (handler *Handler) TakeDose(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}
	input := takeDoseInput{}
	if err := handler.parseBody(c, &input); err != nil {
		return err
	}

	handler.ensureDependencies()
	confirmation, err := handler.doseService.Take(c.UserContext(), user.ID, input.MedicationID, input.ScheduledTime, input.Status)
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	messageKey := "dose.recorded"
	if confirmation.AlreadyRecorded {
		messageKey = "dose.already_recorded"
	}
	response := fiber.Map{
		"success":         true,
		"message":         handler.translate(c, messageKey),
		"log":             confirmation.Log,
		"alreadyRecorded": confirmation.AlreadyRecorded,
	}
	if confirmation.Streak != nil {
		response["streak"] = confirmation.Streak.Streak
	}
	return c.JSON(response)
}
