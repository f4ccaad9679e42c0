package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/medlembra/medlembra/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrGoogleTokenInvalid  = errors.New("google id token invalid")
	ErrGoogleLoginDisabled = errors.New("google login disabled")
)

// GoogleIdentity is the subset of verified ID token claims the app uses.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

type GoogleTokenVerifier interface {
	Verify(ctx context.Context, idToken string) (GoogleIdentity, error)
}

type AuthUserRepository interface {
	FindByID(ctx context.Context, userID string) (models.User, bool, error)
	FindByNormalizedEmail(ctx context.Context, email string) (models.User, bool, error)
	FindByGoogleID(ctx context.Context, googleID string) (models.User, bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdateByID(ctx context.Context, userID string, updates map[string]any) error
}

type StreakRecorder interface {
	Record(ctx context.Context, userID string, event StreakEvent) (StreakResult, error)
}

type AuthService struct {
	users   AuthUserRepository
	google  GoogleTokenVerifier
	streaks StreakRecorder
}

func NewAuthService(users AuthUserRepository, google GoogleTokenVerifier, streaks StreakRecorder) *AuthService {
	return &AuthService{users: users, google: google, streaks: streaks}
}

func (service *AuthService) FindByID(ctx context.Context, userID string) (models.User, error) {
	user, found, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if !found {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

// LoginWithGoogle finds the account by Google subject, links an existing
// account by email, or creates one, then records a login streak event.
func (service *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (models.User, error) {
	if service.google == nil {
		return models.User{}, ErrGoogleLoginDisabled
	}
	if strings.TrimSpace(idToken) == "" {
		return models.User{}, fmt.Errorf("%w: idToken is required", ErrInvalidInput)
	}

	identity, err := service.google.Verify(ctx, idToken)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrGoogleTokenInvalid, err)
	}
	email := NormalizeAuthEmail(identity.Email)
	if identity.Subject == "" || email == "" {
		return models.User{}, ErrGoogleTokenInvalid
	}

	user, err := service.findOrCreateGoogleUser(ctx, identity, email)
	if err != nil {
		return models.User{}, err
	}
	return service.completeLogin(ctx, user.ID)
}

func (service *AuthService) findOrCreateGoogleUser(ctx context.Context, identity GoogleIdentity, email string) (models.User, error) {
	user, found, err := service.users.FindByGoogleID(ctx, identity.Subject)
	if err != nil {
		return models.User{}, fmt.Errorf("load google user: %w", err)
	}
	if !found {
		user, found, err = service.users.FindByNormalizedEmail(ctx, email)
		if err != nil {
			return models.User{}, fmt.Errorf("load user by email: %w", err)
		}
	}

	if !found {
		user = models.User{
			Email:    email,
			Name:     strings.TrimSpace(identity.Name),
			GoogleID: &identity.Subject,
		}
		if user.Name == "" {
			user.Name = DisplayNameFromEmail(email)
		}
		if identity.Picture != "" {
			user.Picture = &identity.Picture
		}
		if err := service.users.Create(ctx, &user); err != nil {
			return models.User{}, fmt.Errorf("create google user: %w", err)
		}
		return user, nil
	}

	updates := map[string]any{"google_id": identity.Subject}
	if name := strings.TrimSpace(identity.Name); name != "" {
		updates["name"] = name
	}
	if identity.Picture != "" {
		updates["picture"] = identity.Picture
	}
	if err := service.users.UpdateByID(ctx, user.ID, updates); err != nil {
		return models.User{}, fmt.Errorf("refresh google user: %w", err)
	}
	return user, nil
}

func (service *AuthService) Register(ctx context.Context, emailRaw string, password string, name string) (models.User, error) {
	email, password, err := NormalizeCredentialsInput(emailRaw, password)
	if err != nil {
		return models.User{}, err
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return models.User{}, err
	}

	if _, exists, err := service.users.FindByNormalizedEmail(ctx, email); err != nil {
		return models.User{}, fmt.Errorf("check email: %w", err)
	} else if exists {
		return models.User{}, ErrEmailTaken
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(passwordHash),
	}
	if user.Name == "" {
		user.Name = DisplayNameFromEmail(email)
	}
	if err := service.users.Create(ctx, &user); err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return service.completeLogin(ctx, user.ID)
}

func (service *AuthService) Login(ctx context.Context, emailRaw string, password string) (models.User, error) {
	email, password, err := NormalizeCredentialsInput(emailRaw, password)
	if err != nil {
		return models.User{}, err
	}

	user, found, err := service.users.FindByNormalizedEmail(ctx, email)
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if !found || !user.HasPassword() {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	return service.completeLogin(ctx, user.ID)
}

func (service *AuthService) completeLogin(ctx context.Context, userID string) (models.User, error) {
	if _, err := service.streaks.Record(ctx, userID, StreakEventLogin); err != nil {
		return models.User{}, err
	}
	return service.FindByID(ctx, userID)
}
