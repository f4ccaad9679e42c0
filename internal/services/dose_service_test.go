package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/medlembra/medlembra/internal/models"
)

type doseLogRepositoryStub struct {
	users     *streakUserRepositoryStub
	logs      []models.MedicationLog
	createErr error
	// raceWinner is inserted just before the next create fails with createErr.
	raceWinner *models.MedicationLog
}

func (stub *doseLogRepositoryStub) ListByUserAndLogDate(_ context.Context, userID string, logDate string) ([]models.MedicationLog, error) {
	result := make([]models.MedicationLog, 0)
	for _, entry := range stub.logs {
		if entry.UserID == userID && entry.LogDate == logDate {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (stub *doseLogRepositoryStub) FindForDose(_ context.Context, userID string, medicationID string, scheduledTime string, logDate string) (models.MedicationLog, bool, error) {
	for _, entry := range stub.logs {
		if entry.UserID == userID && entry.MedicationID == medicationID && entry.ScheduledTime == scheduledTime && entry.LogDate == logDate {
			return entry, true, nil
		}
	}
	return models.MedicationLog{}, false, nil
}

func (stub *doseLogRepositoryStub) insert(entry *models.MedicationLog) error {
	if stub.createErr != nil {
		if stub.raceWinner != nil {
			stub.logs = append(stub.logs, *stub.raceWinner)
			stub.raceWinner = nil
		}
		return stub.createErr
	}
	entry.ID = "log-" + entry.ScheduledTime
	stub.logs = append(stub.logs, *entry)
	return nil
}

func (stub *doseLogRepositoryStub) Create(_ context.Context, entry *models.MedicationLog) error {
	return stub.insert(entry)
}

func (stub *doseLogRepositoryStub) CreateWithStreak(ctx context.Context, entry *models.MedicationLog, update models.StreakUpdate) (bool, error) {
	applied, err := stub.users.CompareAndSwapStreak(ctx, update)
	if err != nil || !applied {
		return applied, err
	}
	return true, stub.insert(entry)
}

type doseMedicationReaderStub struct {
	medications []models.Medication
}

func (stub *doseMedicationReaderStub) ListActiveByUser(_ context.Context, userID string) ([]models.Medication, error) {
	result := make([]models.Medication, 0)
	for _, medication := range stub.medications {
		if medication.UserID == userID && medication.Active {
			result = append(result, medication)
		}
	}
	return result, nil
}

func (stub *doseMedicationReaderStub) FindByUserAndID(_ context.Context, userID string, medicationID string) (models.Medication, bool, error) {
	for _, medication := range stub.medications {
		if medication.UserID == userID && medication.ID == medicationID {
			return medication, true, nil
		}
	}
	return models.Medication{}, false, nil
}

type doseFixture struct {
	service *DoseService
	users   *streakUserRepositoryStub
	logs    *doseLogRepositoryStub
}

func newDoseFixture(now time.Time, policy StreakPolicy, user models.User) doseFixture {
	users := newStreakUserRepositoryStub(user)
	logs := &doseLogRepositoryStub{users: users}
	medications := &doseMedicationReaderStub{medications: []models.Medication{
		{ID: "m1", UserID: user.ID, Name: "Losartana", Active: true, StartDate: now.AddDate(0, 0, -3),
			Reminders: []models.Reminder{{ID: "r1", Time: "08:00", Days: []string{"monday"}, Enabled: true}}},
		{ID: "m-other", UserID: "someone-else", Name: "Outro", Active: true},
	}}
	streaks := NewStreakService(users, policy, time.UTC, fixedClock(now))
	return doseFixture{
		service: NewDoseService(logs, medications, streaks, time.UTC, fixedClock(now)),
		users:   users,
		logs:    logs,
	}
}

func TestDoseServiceTakeRecordsLogAndStreak(t *testing.T) {
	now := time.Date(2026, time.March, 2, 8, 10, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	fixture := newDoseFixture(now, StreakResetToOne, models.User{ID: "u1", Streak: 4, LastActiveDate: &yesterday})

	confirmation, err := fixture.service.Take(context.Background(), "u1", "m1", "08:00", "")
	if err != nil {
		t.Fatalf("Take() unexpected error: %v", err)
	}
	if confirmation.AlreadyRecorded {
		t.Fatal("expected first confirmation to create a log")
	}
	if confirmation.Log.Status != models.DoseStatusTaken || confirmation.Log.LogDate != "2026-03-02" {
		t.Fatalf("unexpected log %#v", confirmation.Log)
	}
	if confirmation.Streak == nil || confirmation.Streak.Streak != 5 {
		t.Fatalf("expected streak 5, got %#v", confirmation.Streak)
	}
	if fixture.users.users["u1"].Streak != 5 {
		t.Fatalf("expected persisted streak 5, got %d", fixture.users.users["u1"].Streak)
	}
}

func TestDoseServiceTakeIsIdempotentPerDay(t *testing.T) {
	now := time.Date(2026, time.March, 2, 8, 10, 0, 0, time.UTC)
	fixture := newDoseFixture(now, StreakResetToOne, models.User{ID: "u1"})

	first, err := fixture.service.Take(context.Background(), "u1", "m1", "08:00", "")
	if err != nil {
		t.Fatalf("first Take() unexpected error: %v", err)
	}
	second, err := fixture.service.Take(context.Background(), "u1", "m1", "08:00", models.DoseStatusLate)
	if err != nil {
		t.Fatalf("second Take() unexpected error: %v", err)
	}
	if !second.AlreadyRecorded || second.Log.ID != first.Log.ID {
		t.Fatalf("expected the stored log back, got %#v", second)
	}
	if len(fixture.logs.logs) != 1 {
		t.Fatalf("expected a single stored log, got %d", len(fixture.logs.logs))
	}
	if fixture.users.users["u1"].StreakVersion != 1 {
		t.Fatalf("expected one streak write, got version %d", fixture.users.users["u1"].StreakVersion)
	}
}

func TestDoseServiceSkippedDoesNotTouchStreak(t *testing.T) {
	now := time.Date(2026, time.March, 2, 8, 10, 0, 0, time.UTC)
	fixture := newDoseFixture(now, StreakResetToOne, models.User{ID: "u1", Streak: 2})

	confirmation, err := fixture.service.Take(context.Background(), "u1", "m1", "08:00", models.DoseStatusSkipped)
	if err != nil {
		t.Fatalf("Take() unexpected error: %v", err)
	}
	if confirmation.Streak != nil {
		t.Fatalf("expected no streak result for skipped dose, got %#v", confirmation.Streak)
	}
	if user := fixture.users.users["u1"]; user.Streak != 2 || user.StreakVersion != 0 {
		t.Fatalf("expected untouched streak, got %#v", user)
	}
}

func TestDoseServiceTakeValidation(t *testing.T) {
	now := time.Date(2026, time.March, 2, 8, 10, 0, 0, time.UTC)
	fixture := newDoseFixture(now, StreakResetToOne, models.User{ID: "u1"})
	ctx := context.Background()

	var malformed *MalformedScheduleError
	if _, err := fixture.service.Take(ctx, "u1", "m1", "8:00", ""); !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedScheduleError, got %v", err)
	}
	if _, err := fixture.service.Take(ctx, "u1", "", "08:00", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing medication, got %v", err)
	}
	if _, err := fixture.service.Take(ctx, "u1", "m1", "08:00", "forgot"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}
	if _, err := fixture.service.Take(ctx, "u1", "m-other", "08:00", ""); !errors.Is(err, ErrMedicationNotFound) {
		t.Fatalf("expected ErrMedicationNotFound for foreign medication, got %v", err)
	}
}

func TestDoseServiceTakeResolvesInsertRace(t *testing.T) {
	now := time.Date(2026, time.March, 2, 8, 10, 0, 0, time.UTC)
	fixture := newDoseFixture(now, StreakResetToOne, models.User{ID: "u1"})
	fixture.logs.createErr = errors.New("UNIQUE constraint failed")
	fixture.logs.raceWinner = &models.MedicationLog{
		ID: "winner", UserID: "u1", MedicationID: "m1", ScheduledTime: "08:00", LogDate: "2026-03-02", Status: models.DoseStatusTaken,
	}

	confirmation, err := fixture.service.Take(context.Background(), "u1", "m1", "08:00", "")
	if err != nil {
		t.Fatalf("Take() unexpected error: %v", err)
	}
	if !confirmation.AlreadyRecorded || confirmation.Log.ID != "winner" {
		t.Fatalf("expected race winner log, got %#v", confirmation)
	}
}

func TestDoseServiceTakeSurfacesStoreErrors(t *testing.T) {
	now := time.Date(2026, time.March, 2, 8, 10, 0, 0, time.UTC)
	fixture := newDoseFixture(now, StreakResetToOne, models.User{ID: "u1"})
	storeErr := errors.New("disk I/O error")
	fixture.logs.createErr = storeErr

	if _, err := fixture.service.Take(context.Background(), "u1", "m1", "08:00", ""); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestDoseServiceToday(t *testing.T) {
	now := time.Date(2026, time.March, 2, 8, 10, 0, 0, time.UTC)
	fixture := newDoseFixture(now, StreakResetToOne, models.User{ID: "u1"})

	if _, err := fixture.service.Take(context.Background(), "u1", "m1", "08:00", ""); err != nil {
		t.Fatalf("Take() unexpected error: %v", err)
	}
	doses, err := fixture.service.Today(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Today() unexpected error: %v", err)
	}
	if len(doses) != 1 || doses[0].Status != models.DoseStatusTaken {
		t.Fatalf("expected one taken dose, got %#v", doses)
	}
}
