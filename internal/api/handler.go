package api

import (
	"errors"
	"time"

	"github.com/medlembra/medlembra/internal/db"
	"github.com/medlembra/medlembra/internal/i18n"
	"github.com/medlembra/medlembra/internal/services"
	"gorm.io/gorm"
)

const authTokenTTL = 30 * 24 * time.Hour

type Handler struct {
	db           *gorm.DB
	secretKey    []byte
	location     *time.Location
	i18n         *i18n.Manager
	google       services.GoogleTokenVerifier
	streakPolicy services.StreakPolicy
	now          func() time.Time
	loginLimiter *attemptLimiter

	repositories      *db.Repositories
	streakService     *services.StreakService
	authService       *services.AuthService
	userService       *services.UserService
	medicationService *services.MedicationService
	doseService       *services.DoseService
	statsService      *services.StatsService
	familyService     *services.FamilyService
}

// Options carries the optional collaborators of a Handler. A nil
// GoogleVerifier disables POST /api/auth/google.
type Options struct {
	GoogleVerifier services.GoogleTokenVerifier
	StreakPolicy   services.StreakPolicy
	Now            func() time.Time
}

func NewHandler(database *gorm.DB, secret string, location *time.Location, i18nManager *i18n.Manager, options Options) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if i18nManager == nil {
		return nil, errors.New("i18n manager is required")
	}
	if location == nil {
		location = time.Local
	}
	now := options.Now
	if now == nil {
		now = time.Now
	}

	handler := &Handler{
		db:           database,
		secretKey:    []byte(secret),
		location:     location,
		i18n:         i18nManager,
		google:       options.GoogleVerifier,
		streakPolicy: options.StreakPolicy,
		now:          now,
		loginLimiter: newAttemptLimiter(loginAttemptLimit, loginAttemptWindow),
	}
	return handler.withDependencies(database), nil
}
