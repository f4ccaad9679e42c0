package services

import (
	"math"
	"sort"
	"time"

	"github.com/medlembra/medlembra/internal/models"
)

const (
	TodayStatusPending = "pending"
	TodayStatusTaken   = "taken"
	TodayStatusOverdue = "overdue"

	overdueAfterMinutes = 30
	defaultDoseNotes    = "Tomar conforme prescrito"
)

type TodayDose struct {
	ID           string `json:"id"`
	MedicationID string `json:"medicationId"`
	ReminderID   string `json:"reminderId"`
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Time         string `json:"time"`
	NextIn       int    `json:"nextIn"`
	Notes        string `json:"notes"`
	Status       string `json:"status"`
	LogStatus    string `json:"logStatus,omitempty"`
	Color        string `json:"color"`
}

// BuildTodaySchedule expands today's reminders into doses. Status is one of
// pending, taken or overdue: any log for the slot counts as taken, and the
// stored log status is carried in LogStatus. Without a log a dose stays
// pending until 30 minutes past due.
func BuildTodaySchedule(medications []models.Medication, todayLogs []models.MedicationLog, now time.Time, location *time.Location) []TodayDose {
	dayStart := DateAtLocation(now, location)
	weekday := WeekdayName(now, location)
	localNow := now.In(dayStart.Location())

	logged := make(map[string]string, len(todayLogs))
	for _, entry := range todayLogs {
		logged[entry.MedicationID+"-"+entry.ScheduledTime] = entry.Status
	}

	doses := make([]TodayDose, 0)
	for _, medication := range medications {
		if !medication.Active || medication.StartDate.After(now) {
			continue
		}
		if medication.EndDate != nil && medication.EndDate.Before(dayStart) {
			continue
		}

		for _, reminder := range medication.Reminders {
			if !reminder.ActiveOn(weekday) {
				continue
			}
			hour, minute, err := ParseScheduleTime(reminder.Time)
			if err != nil {
				continue
			}

			due := time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day(), hour, minute, 0, 0, dayStart.Location())
			minutesUntil := int(math.Floor(due.Sub(localNow).Minutes()))

			key := medication.ID + "-" + reminder.Time
			status := TodayStatusPending
			loggedStatus, hasLog := logged[key]
			if hasLog {
				status = TodayStatusTaken
			} else if minutesUntil < -overdueAfterMinutes {
				status = TodayStatusOverdue
			}

			notes := defaultDoseNotes
			if medication.Instructions != nil && *medication.Instructions != "" {
				notes = *medication.Instructions
			}

			doses = append(doses, TodayDose{
				ID:           key,
				MedicationID: medication.ID,
				ReminderID:   reminder.ID,
				Name:         medication.Name,
				Dosage:       medication.Dosage,
				Time:         reminder.Time,
				NextIn:       minutesUntil,
				Notes:        notes,
				Status:       status,
				LogStatus:    loggedStatus,
				Color:        medication.Color,
			})
		}
	}

	sort.SliceStable(doses, func(i, j int) bool {
		return doses[i].Time < doses[j].Time
	})
	return doses
}
