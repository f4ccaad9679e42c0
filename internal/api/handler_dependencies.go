package api

import (
	"github.com/medlembra/medlembra/internal/db"
	"github.com/medlembra/medlembra/internal/services"
	"gorm.io/gorm"
)

func (handler *Handler) withDependencies(database *gorm.DB) *Handler {
	handler.repositories = db.NewRepositories(database)
	handler.ensureDependencies()
	return handler
}

func (handler *Handler) ensureDependencies() {
	if handler.repositories == nil {
		if handler.db == nil {
			return
		}
		handler.repositories = db.NewRepositories(handler.db)
	}
	repositories := handler.repositories

	if handler.streakService == nil {
		handler.streakService = services.NewStreakService(repositories.Users, handler.streakPolicy, handler.location, handler.now)
	}
	if handler.authService == nil {
		handler.authService = services.NewAuthService(repositories.Users, handler.google, handler.streakService)
	}
	if handler.userService == nil {
		handler.userService = services.NewUserService(repositories.Users, handler.streakService)
	}
	if handler.medicationService == nil {
		handler.medicationService = services.NewMedicationService(repositories.Medications, handler.now)
	}
	if handler.doseService == nil {
		handler.doseService = services.NewDoseService(repositories.Logs, repositories.Medications, handler.streakService, handler.location, handler.now)
	}
	if handler.statsService == nil {
		handler.statsService = services.NewStatsService(repositories.Logs, repositories.Medications, handler.now)
	}
	if handler.familyService == nil {
		handler.familyService = services.NewFamilyService(repositories.Family, repositories.Users, repositories.Medications, handler.statsService)
	}
}
