package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/medlembra/medlembra/internal/models"
)

const (
	DefaultStatsWindowDays = 7
	maxStatsWindowDays     = 365
)

type StatsLogReader interface {
	ListByUserSince(ctx context.Context, userID string, since time.Time, status string) ([]models.MedicationLog, error)
}

type StatsMedicationReader interface {
	ListByUser(ctx context.Context, userID string) ([]models.Medication, error)
}

type StatsService struct {
	logs        StatsLogReader
	medications StatsMedicationReader
	now         func() time.Time
}

func NewStatsService(logs StatsLogReader, medications StatsMedicationReader, now func() time.Time) *StatsService {
	if now == nil {
		now = time.Now
	}
	return &StatsService{logs: logs, medications: medications, now: now}
}

// ParseWindowDays reads a ?days= value, defaulting to a week.
func ParseWindowDays(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DefaultStatsWindowDays, nil
	}
	days, err := strconv.Atoi(trimmed)
	if err != nil || days < 1 || days > maxStatsWindowDays {
		return 0, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidInput, maxStatsWindowDays)
	}
	return days, nil
}

func (service *StatsService) WindowStart(days int) time.Time {
	return service.now().AddDate(0, 0, -days)
}

func (service *StatsService) Logs(ctx context.Context, userID string, days int, status string) ([]models.MedicationLog, error) {
	if status != "" {
		if _, ok := ParseDoseStatus(status); !ok {
			return nil, fmt.Errorf("%w: unknown dose status %q", ErrInvalidInput, status)
		}
	}
	logs, err := service.logs.ListByUserSince(ctx, userID, service.WindowStart(days), status)
	if err != nil {
		return nil, fmt.Errorf("load logs: %w", err)
	}
	return logs, nil
}

// Summary aggregates the user's logs from the last days days.
func (service *StatsService) Summary(ctx context.Context, userID string, days int) (AdherenceSummary, error) {
	logs, err := service.Logs(ctx, userID, days, "")
	if err != nil {
		return AdherenceSummary{}, err
	}
	medications, err := service.medications.ListByUser(ctx, userID)
	if err != nil {
		return AdherenceSummary{}, fmt.Errorf("load medications: %w", err)
	}

	records := make([]LogRecord, 0, len(logs))
	for _, entry := range logs {
		records = append(records, LogRecordFromModel(entry))
	}
	catalog := make(map[string]MedicationInfo, len(medications))
	for _, medication := range medications {
		catalog[medication.ID] = MedicationInfo{ID: medication.ID, Name: medication.Name, Dosage: medication.Dosage}
	}
	return Aggregate(records, catalog)
}
