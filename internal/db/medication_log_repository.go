package db

import (
	"context"
	"errors"
	"time"

	"github.com/medlembra/medlembra/internal/models"
	"gorm.io/gorm"
)

type MedicationLogRepository struct {
	database *gorm.DB
}

func NewMedicationLogRepository(database *gorm.DB) *MedicationLogRepository {
	return &MedicationLogRepository{database: database}
}

// ListByUserSince returns newest first; an empty status means any.
func (repo *MedicationLogRepository) ListByUserSince(ctx context.Context, userID string, since time.Time, status string) ([]models.MedicationLog, error) {
	query := repo.database.WithContext(ctx).
		Preload("Medication").
		Where("user_id = ? AND taken_at >= ?", userID, since.UTC())
	if status != "" {
		query = query.Where("status = ?", status)
	}

	logs := make([]models.MedicationLog, 0)
	if err := query.Order("taken_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (repo *MedicationLogRepository) ListByUserAndLogDate(ctx context.Context, userID string, logDate string) ([]models.MedicationLog, error) {
	logs := make([]models.MedicationLog, 0)
	err := repo.database.WithContext(ctx).
		Where("user_id = ? AND log_date = ?", userID, logDate).
		Order("taken_at ASC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (repo *MedicationLogRepository) FindForDose(ctx context.Context, userID string, medicationID string, scheduledTime string, logDate string) (models.MedicationLog, bool, error) {
	var entry models.MedicationLog
	result := repo.database.WithContext(ctx).
		Where("user_id = ? AND medication_id = ? AND scheduled_time = ? AND log_date = ?", userID, medicationID, scheduledTime, logDate).
		Limit(1).
		Find(&entry)
	if result.Error != nil {
		return models.MedicationLog{}, false, result.Error
	}
	return entry, result.RowsAffected > 0, nil
}

func (repo *MedicationLogRepository) Create(ctx context.Context, entry *models.MedicationLog) error {
	entry.TakenAt = entry.TakenAt.UTC()
	return repo.database.WithContext(ctx).Create(entry).Error
}

// CreateWithStreak inserts entry and swaps the streak in one transaction.
// It reports false, and writes nothing, when the streak version is stale.
func (repo *MedicationLogRepository) CreateWithStreak(ctx context.Context, entry *models.MedicationLog, update models.StreakUpdate) (bool, error) {
	entry.TakenAt = entry.TakenAt.UTC()
	err := repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return compareAndSwapStreak(tx, update)
	})
	if errors.Is(err, errStaleStreakVersion) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
