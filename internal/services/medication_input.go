package services

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/medlembra/medlembra/internal/models"
)

const (
	maxMedicationNameLength = 120
	maxHoursInterval        = 24
	DurationContinuous      = "continuous"
	DurationDays            = "days"
)

var medicationPalette = []string{
	"#6366F1", "#8B5CF6", "#EC4899", "#10B981",
	"#F59E0B", "#EF4444", "#3B82F6", "#14B8A6",
}

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

var weekdayAliases = map[string]string{
	"dom": "sunday",
	"seg": "monday",
	"ter": "tuesday",
	"qua": "wednesday",
	"qui": "thursday",
	"sex": "friday",
	"sab": "saturday",
	"sáb": "saturday",
}

type MedicationInput struct {
	Name           string
	Dosage         string
	Frequency      string
	FrequencyValue int
	Times          []string
	Days           []string
	Duration       string
	DurationDays   int
	Notes          string
}

type ReminderInput struct {
	Time    string
	Days    []string
	Enabled *bool
}

// MedicationUpdate carries only the fields the client sent.
type MedicationUpdate struct {
	Name         *string
	Dosage       *string
	Frequency    *string
	StartDate    *time.Time
	EndDate      *time.Time
	ClearEndDate bool
	Instructions *string
	Color        *string
	Active       *bool
	Reminders    []ReminderInput
	SetReminders bool
}

func randomMedicationColor() string {
	return medicationPalette[rand.IntN(len(medicationPalette))]
}

// NormalizeWeekday accepts Portuguese abbreviations or English weekday names.
func NormalizeWeekday(raw string) (string, bool) {
	day := strings.ToLower(strings.TrimSpace(raw))
	if mapped, ok := weekdayAliases[day]; ok {
		return mapped, true
	}
	for _, name := range weekdayNames {
		if day == name {
			return name, true
		}
	}
	return "", false
}

func normalizeWeekdays(rawDays []string) ([]string, error) {
	seen := make(map[string]struct{}, len(rawDays))
	days := make([]string, 0, len(rawDays))
	for _, raw := range rawDays {
		day, ok := NormalizeWeekday(raw)
		if !ok {
			return nil, fmt.Errorf("%w: unknown weekday %q", ErrInvalidInput, raw)
		}
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	return days, nil
}

func allWeekdays() []string {
	days := make([]string, len(weekdayNames))
	copy(days, weekdayNames[:])
	return days
}

func normalizeScheduleTimes(rawTimes []string) ([]string, error) {
	if len(rawTimes) == 0 {
		return nil, fmt.Errorf("%w: at least one time is required", ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(rawTimes))
	times := make([]string, 0, len(rawTimes))
	for _, raw := range rawTimes {
		value := strings.TrimSpace(raw)
		if _, _, err := ParseScheduleTime(value); err != nil {
			return nil, err
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		times = append(times, value)
	}
	sort.Strings(times)
	return times, nil
}

func normalizeRequiredText(field string, raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	if utf8.RuneCountInString(value) > maxMedicationNameLength {
		return "", fmt.Errorf("%w: %s is too long", ErrInvalidInput, field)
	}
	return value, nil
}

// FrequencyDescriptor renders the label shown to the user, e.g. "8h" or "3x ao dia".
func FrequencyDescriptor(frequency string, frequencyValue int, timesCount int) string {
	switch frequency {
	case models.FrequencyHours:
		return fmt.Sprintf("%dh", frequencyValue)
	case models.FrequencyTimesPerDay:
		return fmt.Sprintf("%dx ao dia", timesCount)
	case models.FrequencySpecificDays:
		return "Dias específicos"
	default:
		return ""
	}
}

// BuildMedication validates input and returns an unsaved medication with its reminders.
func BuildMedication(userID string, input MedicationInput, now time.Time) (models.Medication, error) {
	name, err := normalizeRequiredText("name", input.Name)
	if err != nil {
		return models.Medication{}, err
	}
	dosage, err := normalizeRequiredText("dosage", input.Dosage)
	if err != nil {
		return models.Medication{}, err
	}

	frequency := strings.TrimSpace(input.Frequency)
	switch frequency {
	case models.FrequencyHours:
		if input.FrequencyValue < 1 || input.FrequencyValue > maxHoursInterval {
			return models.Medication{}, fmt.Errorf("%w: hours interval must be between 1 and %d", ErrInvalidInput, maxHoursInterval)
		}
	case models.FrequencyTimesPerDay, models.FrequencySpecificDays:
	default:
		return models.Medication{}, fmt.Errorf("%w: unknown frequency %q", ErrInvalidInput, input.Frequency)
	}

	times, err := normalizeScheduleTimes(input.Times)
	if err != nil {
		return models.Medication{}, err
	}

	days := allWeekdays()
	if frequency == models.FrequencySpecificDays && len(input.Days) > 0 {
		days, err = normalizeWeekdays(input.Days)
		if err != nil {
			return models.Medication{}, err
		}
	}

	medication := models.Medication{
		UserID:    userID,
		Name:      name,
		Dosage:    dosage,
		Frequency: FrequencyDescriptor(frequency, input.FrequencyValue, len(times)),
		StartDate: now,
		Color:     randomMedicationColor(),
		Active:    true,
		Reminders: make([]models.Reminder, 0, len(times)),
	}

	switch strings.TrimSpace(input.Duration) {
	case "", DurationContinuous:
	case DurationDays:
		if input.DurationDays > 0 {
			endDate := now.AddDate(0, 0, input.DurationDays)
			medication.EndDate = &endDate
		}
	default:
		return models.Medication{}, fmt.Errorf("%w: unknown duration %q", ErrInvalidInput, input.Duration)
	}

	if notes := strings.TrimSpace(input.Notes); notes != "" {
		medication.Instructions = &notes
	}

	for _, value := range times {
		medication.Reminders = append(medication.Reminders, models.Reminder{
			UserID:  userID,
			Time:    value,
			Days:    append([]string(nil), days...),
			Enabled: true,
		})
	}
	return medication, nil
}

// BuildMedicationUpdate turns a partial update into column updates and, when
// requested, a replacement reminder set.
func BuildMedicationUpdate(userID string, update MedicationUpdate) (map[string]any, []models.Reminder, error) {
	updates := make(map[string]any)

	if update.Name != nil {
		name, err := normalizeRequiredText("name", *update.Name)
		if err != nil {
			return nil, nil, err
		}
		updates["name"] = name
	}
	if update.Dosage != nil {
		dosage, err := normalizeRequiredText("dosage", *update.Dosage)
		if err != nil {
			return nil, nil, err
		}
		updates["dosage"] = dosage
	}
	if update.Frequency != nil {
		frequency, err := normalizeRequiredText("frequency", *update.Frequency)
		if err != nil {
			return nil, nil, err
		}
		updates["frequency"] = frequency
	}
	if update.StartDate != nil {
		updates["start_date"] = *update.StartDate
	}
	if update.ClearEndDate {
		updates["end_date"] = nil
	} else if update.EndDate != nil {
		if update.StartDate != nil && update.EndDate.Before(*update.StartDate) {
			return nil, nil, fmt.Errorf("%w: end date before start date", ErrInvalidInput)
		}
		updates["end_date"] = *update.EndDate
	}
	if update.Instructions != nil {
		instructions := strings.TrimSpace(*update.Instructions)
		if instructions == "" {
			updates["instructions"] = nil
		} else {
			updates["instructions"] = instructions
		}
	}
	if update.Color != nil {
		if !hexColorPattern.MatchString(*update.Color) {
			return nil, nil, fmt.Errorf("%w: color must be #RRGGBB", ErrInvalidInput)
		}
		updates["color"] = strings.ToUpper(*update.Color)
	}
	if update.Active != nil {
		updates["active"] = *update.Active
	}

	if !update.SetReminders {
		return updates, nil, nil
	}

	reminders := make([]models.Reminder, 0, len(update.Reminders))
	for _, input := range update.Reminders {
		value := strings.TrimSpace(input.Time)
		if _, _, err := ParseScheduleTime(value); err != nil {
			return nil, nil, err
		}
		days, err := normalizeWeekdays(input.Days)
		if err != nil {
			return nil, nil, err
		}
		enabled := true
		if input.Enabled != nil {
			enabled = *input.Enabled
		}
		reminders = append(reminders, models.Reminder{
			UserID:  userID,
			Time:    value,
			Days:    days,
			Enabled: enabled,
		})
	}
	return updates, reminders, nil
}
