package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DoseStatusTaken   = "taken"
	DoseStatusLate    = "late"
	DoseStatusSkipped = "skipped"
)

// LogDate is the YYYY-MM-DD calendar day of TakenAt in the server location.
type MedicationLog struct {
	ID            string      `gorm:"primaryKey;type:text" json:"id"`
	UserID        string      `gorm:"not null;index" json:"userId"`
	MedicationID  string      `gorm:"not null;index" json:"medicationId"`
	ScheduledTime string      `gorm:"not null" json:"scheduledTime"`
	TakenAt       time.Time   `gorm:"not null" json:"takenAt"`
	LogDate       string      `gorm:"not null" json:"logDate"`
	Status        string      `gorm:"not null" json:"status"`
	Medication    *Medication `gorm:"foreignKey:MedicationID" json:"medication,omitempty"`
}

func (entry *MedicationLog) BeforeCreate(*gorm.DB) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	return nil
}
