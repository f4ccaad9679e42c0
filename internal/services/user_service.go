package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/medlembra/medlembra/internal/models"
)

const (
	maxDisplayNameLength = 64
	maxUserAge           = 130
)

var avatarEmojis = []string{"👨", "👩", "🧑", "👴", "👵", "👨‍⚕️", "👩‍⚕️", "🧓"}

type UserProfile struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	Picture        *string    `json:"picture"`
	Age            *int       `json:"age"`
	Streak         int        `json:"streak"`
	LastActiveDate *time.Time `json:"lastActiveDate"`
	Avatar         *string    `json:"avatar"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type ProfileUpdate struct {
	Name    *string
	Age     *int
	Picture *string
}

type ProfileUserRepository interface {
	FindByID(ctx context.Context, userID string) (models.User, bool, error)
	UpdateByID(ctx context.Context, userID string, updates map[string]any) error
}

type UserService struct {
	users   ProfileUserRepository
	streaks StreakRecorder
}

func NewUserService(users ProfileUserRepository, streaks StreakRecorder) *UserService {
	return &UserService{users: users, streaks: streaks}
}

// AvatarFor picks a stable emoji from the name when the user has no picture.
func AvatarFor(user models.User) *string {
	if user.Picture != nil && *user.Picture != "" {
		return nil
	}
	avatar := avatarEmojis[utf8.RuneCountInString(user.Name)%len(avatarEmojis)]
	return &avatar
}

func BuildUserProfile(user models.User) UserProfile {
	return UserProfile{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		Picture:        user.Picture,
		Age:            user.Age,
		Streak:         user.Streak,
		LastActiveDate: user.LastActiveDate,
		Avatar:         AvatarFor(user),
		CreatedAt:      user.CreatedAt,
	}
}

func (service *UserService) load(ctx context.Context, userID string) (models.User, error) {
	user, found, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if !found {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

// Profile counts as daily activity before the profile is read back.
func (service *UserService) Profile(ctx context.Context, userID string) (UserProfile, error) {
	if _, err := service.streaks.Record(ctx, userID, StreakEventProfileRead); err != nil {
		return UserProfile{}, err
	}
	user, err := service.load(ctx, userID)
	if err != nil {
		return UserProfile{}, err
	}
	return BuildUserProfile(user), nil
}

func (service *UserService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (UserProfile, error) {
	updates := make(map[string]any)
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" || utf8.RuneCountInString(name) > maxDisplayNameLength {
			return UserProfile{}, fmt.Errorf("%w: name must be 1 to %d characters", ErrInvalidInput, maxDisplayNameLength)
		}
		updates["name"] = name
	}
	if update.Age != nil {
		if *update.Age < 0 || *update.Age > maxUserAge {
			return UserProfile{}, fmt.Errorf("%w: age out of range", ErrInvalidInput)
		}
		updates["age"] = *update.Age
	}
	if update.Picture != nil {
		picture := strings.TrimSpace(*update.Picture)
		if picture == "" {
			updates["picture"] = nil
		} else {
			updates["picture"] = picture
		}
	}

	if len(updates) > 0 {
		if err := service.users.UpdateByID(ctx, userID, updates); err != nil {
			return UserProfile{}, fmt.Errorf("update profile: %w", err)
		}
	}
	user, err := service.load(ctx, userID)
	if err != nil {
		return UserProfile{}, err
	}
	return BuildUserProfile(user), nil
}
