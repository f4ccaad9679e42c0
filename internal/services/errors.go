package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUserNotFound       = errors.New("user not found")
	ErrMedicationNotFound = errors.New("medication not found")
	ErrInviteNotFound     = errors.New("invite not found")
	ErrConnectionNotFound = errors.New("connection not found")
	ErrNoConnection       = errors.New("no accepted family connection")
	ErrConnectionExists   = errors.New("family connection already exists")
	ErrSelfConnection     = errors.New("cannot connect to yourself")
	ErrStreakConflict     = errors.New("streak updated concurrently")
)

// MalformedScheduleError reports a dose time that is not a 24h HH:MM value.
type MalformedScheduleError struct {
	Value string
}

func (err *MalformedScheduleError) Error() string {
	return fmt.Sprintf("malformed scheduled time %q", err.Value)
}

func (err *MalformedScheduleError) Is(target error) bool {
	return target == ErrInvalidInput
}
