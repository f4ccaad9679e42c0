package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	FrequencyHours        = "hours"
	FrequencyTimesPerDay  = "times_day"
	FrequencySpecificDays = "specific_days"
)

type Medication struct {
	ID           string     `gorm:"primaryKey;type:text" json:"id"`
	UserID       string     `gorm:"not null;index" json:"userId"`
	Name         string     `gorm:"not null" json:"name"`
	Dosage       string     `gorm:"not null" json:"dosage"`
	Frequency    string     `gorm:"not null" json:"frequency"`
	StartDate    time.Time  `gorm:"not null" json:"startDate"`
	EndDate      *time.Time `json:"endDate"`
	Instructions *string    `json:"instructions"`
	Color        string     `gorm:"not null" json:"color"`
	Active       bool       `gorm:"not null" json:"active"`
	Reminders    []Reminder `gorm:"foreignKey:MedicationID" json:"reminders"`
	CreatedAt    time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updatedAt"`
}

func (medication *Medication) BeforeCreate(*gorm.DB) error {
	if medication.ID == "" {
		medication.ID = uuid.NewString()
	}
	return nil
}

// Days holds lowercase English weekday names.
type Reminder struct {
	ID           string                      `gorm:"primaryKey;type:text" json:"id"`
	UserID       string                      `gorm:"not null;index" json:"userId"`
	MedicationID string                      `gorm:"not null;index" json:"medicationId"`
	Time         string                      `gorm:"not null" json:"time"`
	Days         datatypes.JSONSlice[string] `gorm:"type:text;not null" json:"days"`
	Enabled      bool                        `gorm:"not null" json:"enabled"`
	CreatedAt    time.Time                   `gorm:"not null" json:"createdAt"`
}

func (reminder *Reminder) BeforeCreate(*gorm.DB) error {
	if reminder.ID == "" {
		reminder.ID = uuid.NewString()
	}
	return nil
}

func (reminder Reminder) ActiveOn(weekday string) bool {
	if !reminder.Enabled {
		return false
	}
	for _, day := range reminder.Days {
		if day == weekday {
			return true
		}
	}
	return false
}
