package db

import (
	"context"
	"errors"

	"github.com/medlembra/medlembra/internal/models"
	"gorm.io/gorm"
)

var errStaleStreakVersion = errors.New("stale streak version")

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) FindByID(ctx context.Context, userID string) (models.User, bool, error) {
	return findUser(repo.database.WithContext(ctx).Where("id = ?", userID))
}

func (repo *UserRepository) FindByNormalizedEmail(ctx context.Context, email string) (models.User, bool, error) {
	return findUser(repo.database.WithContext(ctx).Where("lower(trim(email)) = ?", email))
}

func (repo *UserRepository) FindByGoogleID(ctx context.Context, googleID string) (models.User, bool, error) {
	return findUser(repo.database.WithContext(ctx).Where("google_id = ?", googleID))
}

func findUser(query *gorm.DB) (models.User, bool, error) {
	var user models.User
	result := query.Limit(1).Find(&user)
	if result.Error != nil {
		return models.User{}, false, result.Error
	}
	return user, result.RowsAffected > 0, nil
}

func (repo *UserRepository) Create(ctx context.Context, user *models.User) error {
	return repo.database.WithContext(ctx).Create(user).Error
}

func (repo *UserRepository) UpdateByID(ctx context.Context, userID string, updates map[string]any) error {
	return repo.database.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
}

func (repo *UserRepository) UpdatePasswordHash(ctx context.Context, userID string, passwordHash string) error {
	return repo.UpdateByID(ctx, userID, map[string]any{"password_hash": passwordHash})
}

// CompareAndSwapStreak reports false when another writer bumped the version first.
func (repo *UserRepository) CompareAndSwapStreak(ctx context.Context, update models.StreakUpdate) (bool, error) {
	err := compareAndSwapStreak(repo.database.WithContext(ctx), update)
	if errors.Is(err, errStaleStreakVersion) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func compareAndSwapStreak(tx *gorm.DB, update models.StreakUpdate) error {
	result := tx.Model(&models.User{}).
		Where("id = ? AND streak_version = ?", update.UserID, update.ExpectedVersion).
		Updates(map[string]any{
			"streak":           update.Streak,
			"last_active_date": update.LastActiveDate,
			"streak_version":   update.ExpectedVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errStaleStreakVersion
	}
	return nil
}
