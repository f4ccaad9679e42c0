package db

import (
	"context"

	"github.com/medlembra/medlembra/internal/models"
	"gorm.io/gorm"
)

type MedicationRepository struct {
	database *gorm.DB
}

func NewMedicationRepository(database *gorm.DB) *MedicationRepository {
	return &MedicationRepository{database: database}
}

func orderedReminders(tx *gorm.DB) *gorm.DB {
	return tx.Order("time ASC")
}

// ListByUser includes inactive medications.
func (repo *MedicationRepository) ListByUser(ctx context.Context, userID string) ([]models.Medication, error) {
	medications := make([]models.Medication, 0)
	err := repo.database.WithContext(ctx).
		Preload("Reminders", orderedReminders).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&medications).Error
	if err != nil {
		return nil, err
	}
	return medications, nil
}

func (repo *MedicationRepository) ListActiveByUser(ctx context.Context, userID string) ([]models.Medication, error) {
	medications := make([]models.Medication, 0)
	err := repo.database.WithContext(ctx).
		Preload("Reminders", orderedReminders).
		Where("user_id = ? AND active = ?", userID, true).
		Order("created_at DESC").
		Find(&medications).Error
	if err != nil {
		return nil, err
	}
	return medications, nil
}

func (repo *MedicationRepository) FindByUserAndID(ctx context.Context, userID string, medicationID string) (models.Medication, bool, error) {
	var medication models.Medication
	result := repo.database.WithContext(ctx).
		Preload("Reminders", orderedReminders).
		Where("id = ? AND user_id = ?", medicationID, userID).
		Limit(1).
		Find(&medication)
	if result.Error != nil {
		return models.Medication{}, false, result.Error
	}
	return medication, result.RowsAffected > 0, nil
}

func (repo *MedicationRepository) CreateWithReminders(ctx context.Context, medication *models.Medication) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reminders := medication.Reminders
		medication.Reminders = nil
		if err := tx.Create(medication).Error; err != nil {
			return err
		}
		for index := range reminders {
			reminders[index].MedicationID = medication.ID
			reminders[index].UserID = medication.UserID
		}
		if len(reminders) > 0 {
			if err := tx.Create(&reminders).Error; err != nil {
				return err
			}
		}
		medication.Reminders = reminders
		return nil
	})
}

// Update applies updates and, when reminders is non-nil, replaces the reminder set.
func (repo *MedicationRepository) Update(ctx context.Context, medication models.Medication, updates map[string]any, reminders []models.Reminder) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Medication{}).
				Where("id = ? AND user_id = ?", medication.ID, medication.UserID).
				Updates(updates).Error; err != nil {
				return err
			}
		}
		if reminders == nil {
			return nil
		}
		if err := tx.Where("medication_id = ?", medication.ID).Delete(&models.Reminder{}).Error; err != nil {
			return err
		}
		if len(reminders) == 0 {
			return nil
		}
		for index := range reminders {
			reminders[index].MedicationID = medication.ID
			reminders[index].UserID = medication.UserID
		}
		return tx.Create(&reminders).Error
	})
}

func (repo *MedicationRepository) Deactivate(ctx context.Context, userID string, medicationID string) (bool, error) {
	result := repo.database.WithContext(ctx).
		Model(&models.Medication{}).
		Where("id = ? AND user_id = ?", medicationID, userID).
		Update("active", false)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
