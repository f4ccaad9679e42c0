package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	registerAPIRoutes(app, handler)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/google", handler.GoogleLogin)
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.OptionalAuth, handler.Logout)

	user := api.Group("/user", handler.AuthRequired)
	user.Get("/me", handler.GetMe)
	user.Put("/me", handler.UpdateMe)

	medications := api.Group("/medications", handler.AuthRequired)
	medications.Get("", handler.ListMedications)
	medications.Post("", handler.CreateMedication)

	// Static segments are registered before /:id.
	medicines := api.Group("/medicines", handler.AuthRequired)
	medicines.Get("/today", handler.TodayDoses)
	medicines.Post("/take", handler.TakeDose)
	medicines.Get("/:id", handler.GetMedication)
	medicines.Put("/:id", handler.UpdateMedication)
	medicines.Delete("/:id", handler.DeactivateMedication)

	api.Get("/stats", handler.AuthRequired, handler.GetStats)

	family := api.Group("/family", handler.AuthRequired)
	family.Get("", handler.ListFamily)
	family.Post("", handler.InviteFamilyMember)
	family.Get("/invites", handler.ListInvites)
	family.Post("/invites/:id/accept", handler.AcceptInvite)
	family.Post("/invites/:id/reject", handler.RejectInvite)
	family.Delete("/member/:id", handler.RemoveFamilyMember)
	family.Get("/:familyId/medications", handler.FamilyMedications)
	family.Get("/:familyId/logs", handler.FamilyLogs)
	family.Get("/:familyId/stats", handler.FamilyStats)
	family.Patch("/:id", handler.UpdateFamilyConnection)
}
