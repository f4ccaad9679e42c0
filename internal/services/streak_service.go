package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/medlembra/medlembra/internal/models"
)

type StreakEvent string

const (
	StreakEventLogin         StreakEvent = "login"
	StreakEventDoseConfirmed StreakEvent = "dose_confirmed"
	StreakEventProfileRead   StreakEvent = "profile_read"
)

// streakAttempts bounds the read-compute-swap cycle: the first try plus one retry.
const streakAttempts = 2

type StreakUserRepository interface {
	FindByID(ctx context.Context, userID string) (models.User, bool, error)
	CompareAndSwapStreak(ctx context.Context, update models.StreakUpdate) (bool, error)
}

// StreakWriter persists update and reports false when the version was stale.
type StreakWriter func(ctx context.Context, update models.StreakUpdate) (bool, error)

type StreakService struct {
	users    StreakUserRepository
	policy   StreakPolicy
	location *time.Location
	now      func() time.Time
	locks    sync.Map
}

func NewStreakService(users StreakUserRepository, policy StreakPolicy, location *time.Location, now func() time.Time) *StreakService {
	if location == nil {
		location = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &StreakService{
		users:    users,
		policy:   policy,
		location: location,
		now:      now,
	}
}

// Record is the single entry point for streak updates triggered by an event.
func (service *StreakService) Record(ctx context.Context, userID string, event StreakEvent) (StreakResult, error) {
	return service.Apply(ctx, userID, event, service.users.CompareAndSwapStreak)
}

// Apply runs the compare-and-swap cycle with a caller supplied writer, so the
// streak can share a transaction with other writes.
func (service *StreakService) Apply(ctx context.Context, userID string, event StreakEvent, write StreakWriter) (StreakResult, error) {
	unlock := service.lockUser(userID)
	defer unlock()

	for attempt := 1; attempt <= streakAttempts; attempt++ {
		user, found, err := service.users.FindByID(ctx, userID)
		if err != nil {
			return StreakResult{}, fmt.Errorf("load user for streak: %w", err)
		}
		if !found {
			return StreakResult{}, ErrUserNotFound
		}

		result := ComputeStreak(user.Streak, user.LastActiveDate, service.now(), service.policy, service.location)
		applied, err := write(ctx, models.StreakUpdate{
			UserID:          user.ID,
			Streak:          result.Streak,
			LastActiveDate:  result.LastActiveDate,
			ExpectedVersion: user.StreakVersion,
		})
		if err != nil {
			return StreakResult{}, err
		}
		if applied {
			slog.DebugContext(ctx, "streak recorded",
				slog.String("user_id", userID),
				slog.String("event", string(event)),
				slog.Int("streak", result.Streak),
			)
			return result, nil
		}

		slog.WarnContext(ctx, "streak version conflict",
			slog.String("user_id", userID),
			slog.String("event", string(event)),
			slog.Int("attempt", attempt),
		)
	}
	return StreakResult{}, ErrStreakConflict
}

func (service *StreakService) lockUser(userID string) func() {
	value, _ := service.locks.LoadOrStore(userID, &sync.Mutex{})
	mutex := value.(*sync.Mutex)
	mutex.Lock()
	return mutex.Unlock
}
