package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/medlembra/medlembra/internal/models"
)

type statsLogReaderStub struct {
	logs      []models.MedicationLog
	lastSince time.Time
	err       error
}

func (stub *statsLogReaderStub) ListByUserSince(_ context.Context, _ string, since time.Time, status string) ([]models.MedicationLog, error) {
	stub.lastSince = since
	if stub.err != nil {
		return nil, stub.err
	}
	result := make([]models.MedicationLog, 0)
	for _, entry := range stub.logs {
		if status == "" || entry.Status == status {
			result = append(result, entry)
		}
	}
	return result, nil
}

type statsMedicationReaderStub struct {
	medications []models.Medication
}

func (stub *statsMedicationReaderStub) ListByUser(context.Context, string) ([]models.Medication, error) {
	return stub.medications, nil
}

func TestStatsServiceSummary(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	logs := &statsLogReaderStub{logs: []models.MedicationLog{
		{MedicationID: "m1", ScheduledTime: "08:00", Status: models.DoseStatusTaken},
		{MedicationID: "m1", ScheduledTime: "20:00", Status: models.DoseStatusSkipped},
		{MedicationID: "m2", ScheduledTime: "08:30", Status: models.DoseStatusTaken},
	}}
	medications := &statsMedicationReaderStub{medications: []models.Medication{
		{ID: "m1", Name: "Losartana", Dosage: "50mg"},
		{ID: "m2", Name: "Metformina", Dosage: "850mg", Active: false},
	}}
	service := NewStatsService(logs, medications, fixedClock(now))

	summary, err := service.Summary(context.Background(), "u1", 7)
	if err != nil {
		t.Fatalf("Summary() unexpected error: %v", err)
	}
	if !logs.lastSince.Equal(now.AddDate(0, 0, -7)) {
		t.Fatalf("expected 7 day window, got since %s", logs.lastSince)
	}
	if summary.TotalDoses != 3 || summary.AdherenceRate != 67 {
		t.Fatalf("unexpected summary %#v", summary)
	}
	if len(summary.TopMedications) != 2 || summary.TopMedications[1].Name != "Metformina" {
		t.Fatalf("expected inactive medication metadata to be joined, got %#v", summary.TopMedications)
	}
}

func TestStatsServiceSurfacesErrors(t *testing.T) {
	storeErr := errors.New("connection refused")
	service := NewStatsService(&statsLogReaderStub{err: storeErr}, &statsMedicationReaderStub{}, nil)
	if _, err := service.Summary(context.Background(), "u1", 7); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}

	service = NewStatsService(&statsLogReaderStub{logs: []models.MedicationLog{{MedicationID: "m1", ScheduledTime: "25:00", Status: "taken"}}}, &statsMedicationReaderStub{}, nil)
	var malformed *MalformedScheduleError
	if _, err := service.Summary(context.Background(), "u1", 7); !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedScheduleError, got %v", err)
	}

	if _, err := service.Logs(context.Background(), "u1", 7, "forgotten"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for status filter, got %v", err)
	}
}

func TestParseWindowDays(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "", want: DefaultStatsWindowDays},
		{raw: "30", want: 30},
		{raw: "0", wantErr: true},
		{raw: "366", wantErr: true},
		{raw: "week", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseWindowDays(tt.raw)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("ParseWindowDays(%q) expected ErrInvalidInput, got %v", tt.raw, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("ParseWindowDays(%q) = %d, %v; want %d", tt.raw, got, err, tt.want)
		}
	}
}
