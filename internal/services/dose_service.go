package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/medlembra/medlembra/internal/models"
)

type DoseLogRepository interface {
	ListByUserAndLogDate(ctx context.Context, userID string, logDate string) ([]models.MedicationLog, error)
	FindForDose(ctx context.Context, userID string, medicationID string, scheduledTime string, logDate string) (models.MedicationLog, bool, error)
	Create(ctx context.Context, entry *models.MedicationLog) error
	CreateWithStreak(ctx context.Context, entry *models.MedicationLog, update models.StreakUpdate) (bool, error)
}

type DoseMedicationReader interface {
	ListActiveByUser(ctx context.Context, userID string) ([]models.Medication, error)
	FindByUserAndID(ctx context.Context, userID string, medicationID string) (models.Medication, bool, error)
}

type DoseStreakRecorder interface {
	Apply(ctx context.Context, userID string, event StreakEvent, write StreakWriter) (StreakResult, error)
}

type DoseConfirmation struct {
	Log             models.MedicationLog
	AlreadyRecorded bool
	// Streak is nil when the confirmation was not a streak event.
	Streak *StreakResult
}

type DoseService struct {
	logs        DoseLogRepository
	medications DoseMedicationReader
	streaks     DoseStreakRecorder
	location    *time.Location
	now         func() time.Time
}

func NewDoseService(logs DoseLogRepository, medications DoseMedicationReader, streaks DoseStreakRecorder, location *time.Location, now func() time.Time) *DoseService {
	if location == nil {
		location = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &DoseService{
		logs:        logs,
		medications: medications,
		streaks:     streaks,
		location:    location,
		now:         now,
	}
}

func (service *DoseService) Today(ctx context.Context, userID string) ([]TodayDose, error) {
	now := service.now()
	medications, err := service.medications.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load medications: %w", err)
	}
	logs, err := service.logs.ListByUserAndLogDate(ctx, userID, LogDate(now, service.location))
	if err != nil {
		return nil, fmt.Errorf("load today logs: %w", err)
	}
	return BuildTodaySchedule(medications, logs, now, service.location), nil
}

// Take records one dose per medication, time and day. Repeating it returns
// the stored log instead of writing a second one.
func (service *DoseService) Take(ctx context.Context, userID string, medicationID string, scheduledTime string, rawStatus string) (DoseConfirmation, error) {
	medicationID = strings.TrimSpace(medicationID)
	scheduledTime = strings.TrimSpace(scheduledTime)
	if medicationID == "" {
		return DoseConfirmation{}, fmt.Errorf("%w: medicationId is required", ErrInvalidInput)
	}
	if _, _, err := ParseScheduleTime(scheduledTime); err != nil {
		return DoseConfirmation{}, err
	}

	status := DoseTaken
	if trimmed := strings.TrimSpace(rawStatus); trimmed != "" {
		parsed, ok := ParseDoseStatus(trimmed)
		if !ok {
			return DoseConfirmation{}, fmt.Errorf("%w: unknown dose status %q", ErrInvalidInput, rawStatus)
		}
		status = parsed
	}

	if _, found, err := service.medications.FindByUserAndID(ctx, userID, medicationID); err != nil {
		return DoseConfirmation{}, fmt.Errorf("load medication: %w", err)
	} else if !found {
		return DoseConfirmation{}, ErrMedicationNotFound
	}

	now := service.now()
	logDate := LogDate(now, service.location)
	if existing, found, err := service.logs.FindForDose(ctx, userID, medicationID, scheduledTime, logDate); err != nil {
		return DoseConfirmation{}, fmt.Errorf("load dose log: %w", err)
	} else if found {
		return DoseConfirmation{Log: existing, AlreadyRecorded: true}, nil
	}

	entry := models.MedicationLog{
		UserID:        userID,
		MedicationID:  medicationID,
		ScheduledTime: scheduledTime,
		TakenAt:       now,
		LogDate:       logDate,
		Status:        string(status),
	}

	if !status.CountsTowardStreak() {
		if err := service.logs.Create(ctx, &entry); err != nil {
			return service.resolveDuplicate(ctx, entry, err)
		}
		return DoseConfirmation{Log: entry}, nil
	}

	var created models.MedicationLog
	result, err := service.streaks.Apply(ctx, userID, StreakEventDoseConfirmed, func(ctx context.Context, update models.StreakUpdate) (bool, error) {
		attempt := entry
		applied, err := service.logs.CreateWithStreak(ctx, &attempt, update)
		if applied {
			created = attempt
		}
		return applied, err
	})
	if err != nil {
		if confirmation, dupErr := service.resolveDuplicate(ctx, entry, err); dupErr == nil {
			return confirmation, nil
		}
		return DoseConfirmation{}, err
	}
	return DoseConfirmation{Log: created, Streak: &result}, nil
}

// resolveDuplicate turns a lost insert race into the winner's log.
func (service *DoseService) resolveDuplicate(ctx context.Context, entry models.MedicationLog, cause error) (DoseConfirmation, error) {
	existing, found, err := service.logs.FindForDose(ctx, entry.UserID, entry.MedicationID, entry.ScheduledTime, entry.LogDate)
	if err != nil || !found {
		return DoseConfirmation{}, fmt.Errorf("record dose: %w", cause)
	}
	return DoseConfirmation{Log: existing, AlreadyRecorded: true}, nil
}
