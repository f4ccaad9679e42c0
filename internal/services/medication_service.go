package services

import (
	"context"
	"fmt"
	"time"

	"github.com/medlembra/medlembra/internal/models"
)

type MedicationRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Medication, error)
	ListActiveByUser(ctx context.Context, userID string) ([]models.Medication, error)
	FindByUserAndID(ctx context.Context, userID string, medicationID string) (models.Medication, bool, error)
	CreateWithReminders(ctx context.Context, medication *models.Medication) error
	Update(ctx context.Context, medication models.Medication, updates map[string]any, reminders []models.Reminder) error
	Deactivate(ctx context.Context, userID string, medicationID string) (bool, error)
}

type MedicationService struct {
	medications MedicationRepository
	now         func() time.Time
}

func NewMedicationService(medications MedicationRepository, now func() time.Time) *MedicationService {
	if now == nil {
		now = time.Now
	}
	return &MedicationService{medications: medications, now: now}
}

func (service *MedicationService) List(ctx context.Context, userID string) ([]models.Medication, error) {
	return service.medications.ListByUser(ctx, userID)
}

func (service *MedicationService) Create(ctx context.Context, userID string, input MedicationInput) (models.Medication, error) {
	medication, err := BuildMedication(userID, input, service.now())
	if err != nil {
		return models.Medication{}, err
	}
	if err := service.medications.CreateWithReminders(ctx, &medication); err != nil {
		return models.Medication{}, fmt.Errorf("create medication: %w", err)
	}
	return medication, nil
}

func (service *MedicationService) Get(ctx context.Context, userID string, medicationID string) (models.Medication, error) {
	medication, found, err := service.medications.FindByUserAndID(ctx, userID, medicationID)
	if err != nil {
		return models.Medication{}, fmt.Errorf("load medication: %w", err)
	}
	if !found {
		return models.Medication{}, ErrMedicationNotFound
	}
	return medication, nil
}

func (service *MedicationService) Update(ctx context.Context, userID string, medicationID string, update MedicationUpdate) (models.Medication, error) {
	medication, err := service.Get(ctx, userID, medicationID)
	if err != nil {
		return models.Medication{}, err
	}

	if update.EndDate != nil && update.StartDate == nil && update.EndDate.Before(medication.StartDate) {
		return models.Medication{}, fmt.Errorf("%w: end date before start date", ErrInvalidInput)
	}

	updates, reminders, err := BuildMedicationUpdate(userID, update)
	if err != nil {
		return models.Medication{}, err
	}
	if err := service.medications.Update(ctx, medication, updates, reminders); err != nil {
		return models.Medication{}, fmt.Errorf("update medication: %w", err)
	}
	return service.Get(ctx, userID, medicationID)
}

// Deactivate is a soft delete; logs keep pointing at the medication.
func (service *MedicationService) Deactivate(ctx context.Context, userID string, medicationID string) error {
	deactivated, err := service.medications.Deactivate(ctx, userID, medicationID)
	if err != nil {
		return fmt.Errorf("deactivate medication: %w", err)
	}
	if !deactivated {
		return ErrMedicationNotFound
	}
	return nil
}
