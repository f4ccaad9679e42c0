package services

import (
	"fmt"
	"strings"
	"time"
)

// StreakPolicy decides what a broken streak, or a first activity, resets to.
type StreakPolicy int

const (
	StreakResetToOne StreakPolicy = iota
	StreakResetToZero
)

func ParseStreakPolicy(raw string) (StreakPolicy, error) {
	switch strings.TrimSpace(raw) {
	case "", "1":
		return StreakResetToOne, nil
	case "0":
		return StreakResetToZero, nil
	default:
		return StreakResetToOne, fmt.Errorf("%w: streak gap reset must be 0 or 1, got %q", ErrInvalidInput, raw)
	}
}

func (policy StreakPolicy) ResetValue() int {
	if policy == StreakResetToZero {
		return 0
	}
	return 1
}

type StreakResult struct {
	Streak         int       `json:"streak"`
	LastActiveDate time.Time `json:"lastActiveDate"`
}

// ComputeStreak applies the daily rule: same day keeps, next day increments,
// anything older resets. A future last-active date counts as the same day.
func ComputeStreak(previous int, lastActive *time.Time, now time.Time, policy StreakPolicy, location *time.Location) StreakResult {
	if previous < 0 {
		previous = 0
	}
	result := StreakResult{LastActiveDate: now}

	if lastActive == nil {
		result.Streak = policy.ResetValue()
		return result
	}

	switch daysDiff := CalendarDaysBetween(*lastActive, now, location); {
	case daysDiff <= 0:
		result.Streak = previous
	case daysDiff == 1:
		result.Streak = previous + 1
	default:
		result.Streak = policy.ResetValue()
	}
	return result
}
