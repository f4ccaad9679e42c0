package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/medlembra/medlembra/internal/services"
)

type credentialsInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type googleLoginInput struct {
	IDToken string `json:"idToken"`
}

type profileInput struct {
	Name    *string `json:"name"`
	Age     *int    `json:"age"`
	Picture *string `json:"picture"`
}

type medicationInput struct {
	Name           string   `json:"name"`
	Dosage         string   `json:"dosage"`
	Frequency      string   `json:"frequency"`
	FrequencyValue int      `json:"frequencyValue"`
	Times          []string `json:"times"`
	Days           []string `json:"days"`
	Duration       string   `json:"duration"`
	DurationDays   int      `json:"durationDays"`
	Notes          string   `json:"notes"`
}

type reminderInput struct {
	Time    string   `json:"time"`
	Days    []string `json:"days"`
	Enabled *bool    `json:"enabled"`
}

// medicationUpdateInput is a partial update: absent fields keep their value,
// an explicit "endDate": null clears the end date.
type medicationUpdateInput struct {
	Name         *string          `json:"name"`
	Dosage       *string          `json:"dosage"`
	Frequency    *string          `json:"frequency"`
	StartDate    *string          `json:"startDate"`
	EndDate      json.RawMessage  `json:"endDate"`
	Instructions *string          `json:"instructions"`
	Color        *string          `json:"color"`
	Active       *bool            `json:"active"`
	Reminders    *[]reminderInput `json:"reminders"`
}

type takeDoseInput struct {
	MedicationID  string `json:"medicationId"`
	ScheduledTime string `json:"scheduledTime"`
	Status        string `json:"status"`
}

type inviteInput struct {
	Email        string `json:"email"`
	Relationship string `json:"relationship"`
	Permissions  string `json:"permissions"`
}

type connectionUpdateInput struct {
	Relationship *string `json:"relationship"`
	Permissions  *string `json:"permissions"`
}

func (input medicationInput) toService() services.MedicationInput {
	return services.MedicationInput{
		Name:           input.Name,
		Dosage:         input.Dosage,
		Frequency:      input.Frequency,
		FrequencyValue: input.FrequencyValue,
		Times:          input.Times,
		Days:           input.Days,
		Duration:       input.Duration,
		DurationDays:   input.DurationDays,
		Notes:          input.Notes,
	}
}

func (input medicationUpdateInput) toService(location *time.Location) (services.MedicationUpdate, error) {
	update := services.MedicationUpdate{
		Name:         input.Name,
		Dosage:       input.Dosage,
		Frequency:    input.Frequency,
		Instructions: input.Instructions,
		Color:        input.Color,
		Active:       input.Active,
	}

	if input.StartDate != nil {
		startDate, err := parseInputDate(*input.StartDate, location)
		if err != nil {
			return services.MedicationUpdate{}, err
		}
		update.StartDate = &startDate
	}

	if raw := strings.TrimSpace(string(input.EndDate)); raw != "" {
		if raw == "null" {
			update.ClearEndDate = true
		} else {
			var value string
			if err := json.Unmarshal(input.EndDate, &value); err != nil {
				return services.MedicationUpdate{}, fmt.Errorf("%w: endDate must be a date string", services.ErrInvalidInput)
			}
			endDate, err := parseInputDate(value, location)
			if err != nil {
				return services.MedicationUpdate{}, err
			}
			update.EndDate = &endDate
		}
	}

	if input.Reminders != nil {
		update.SetReminders = true
		update.Reminders = make([]services.ReminderInput, 0, len(*input.Reminders))
		for _, reminder := range *input.Reminders {
			update.Reminders = append(update.Reminders, services.ReminderInput{
				Time:    reminder.Time,
				Days:    reminder.Days,
				Enabled: reminder.Enabled,
			})
		}
	}
	return update, nil
}

// parseInputDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates,
// the latter at midnight in location.
func parseInputDate(raw string, location *time.Location) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	if parsed, err := time.ParseInLocation("2006-01-02", value, location); err == nil {
		return parsed, nil
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q", services.ErrInvalidInput, raw)
}
