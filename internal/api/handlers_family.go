package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/medlembra/medlembra/internal/services"
)

func (handler *Handler) ListFamily(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}

	handler.ensureDependencies()
	members, err := handler.familyService.ListConnected(c.UserContext(), user.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(members)
}

func (handler *Handler) InviteFamilyMember(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}
	input := inviteInput{}
	if err := handler.parseBody(c, &input); err != nil {
		return err
	}

	handler.ensureDependencies()
	member, err := handler.familyService.Invite(c.UserContext(), *user, services.InviteInput{
		Email:        input.Email,
		Relationship: input.Relationship,
		Permissions:  input.Permissions,
	})
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(member)
}

func (handler *Handler) UpdateFamilyConnection(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}
	input := connectionUpdateInput{}
	if err := handler.parseBody(c, &input); err != nil {
		return err
	}

	handler.ensureDependencies()
	connection, err := handler.familyService.UpdateConnection(c.UserContext(), user.ID, c.Params("id"), services.ConnectionUpdate{
		Relationship: input.Relationship,
		Permissions:  input.Permissions,
	})
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(connection)
}

func (handler *Handler) RemoveFamilyMember(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}

	handler.ensureDependencies()
	if err := handler.familyService.RemoveConnection(c.UserContext(), user.ID, c.Params("id")); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (handler *Handler) ListInvites(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}

	handler.ensureDependencies()
	invites, err := handler.familyService.ListPendingInvites(c.UserContext(), user.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(invites)
}

func (handler *Handler) AcceptInvite(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}

	handler.ensureDependencies()
	member, err := handler.familyService.AcceptInvite(c.UserContext(), user.ID, c.Params("id"))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(member)
}

func (handler *Handler) RejectInvite(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}

	handler.ensureDependencies()
	if err := handler.familyService.RejectInvite(c.UserContext(), user.ID, c.Params("id")); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (handler *Handler) FamilyMedications(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}

	handler.ensureDependencies()
	medications, err := handler.familyService.MedicationsOf(c.UserContext(), user.ID, c.Params("familyId"))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(medications)
}

func (handler *Handler) FamilyLogs(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}
	days, err := services.ParseWindowDays(c.Query("days"))
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	handler.ensureDependencies()
	logs, err := handler.familyService.LogsOf(c.UserContext(), user.ID, c.Params("familyId"), days, c.Query("status"))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(logs)
}

func (handler *Handler) FamilyStats(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "error.unauthorized")
	}
	days, err := services.ParseWindowDays(c.Query("days"))
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	handler.ensureDependencies()
	summary, err := handler.familyService.StatsOf(c.UserContext(), user.ID, c.Params("familyId"), days)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(summary)
}
