package services

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/medlembra/medlembra/internal/models"
)

const topMedicationsLimit = 5

var scheduleTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

type DoseStatus string

const (
	DoseTaken   DoseStatus = models.DoseStatusTaken
	DoseLate    DoseStatus = models.DoseStatusLate
	DoseSkipped DoseStatus = models.DoseStatusSkipped
)

func ParseDoseStatus(raw string) (DoseStatus, bool) {
	switch status := DoseStatus(raw); status {
	case DoseTaken, DoseLate, DoseSkipped:
		return status, true
	default:
		return "", false
	}
}

// CountsTowardStreak reports whether confirming a dose with this status is
// a qualifying streak event.
func (status DoseStatus) CountsTowardStreak() bool {
	switch status {
	case DoseTaken, DoseLate:
		return true
	default:
		return false
	}
}

// ParseScheduleTime validates a 24h HH:MM value.
func ParseScheduleTime(raw string) (int, int, error) {
	matches := scheduleTimePattern.FindStringSubmatch(raw)
	if matches == nil {
		return 0, 0, &MalformedScheduleError{Value: raw}
	}
	hour, _ := strconv.Atoi(matches[1])
	minute, _ := strconv.Atoi(matches[2])
	return hour, minute, nil
}

type LogRecord struct {
	MedicationID  string
	ScheduledTime string
	Status        DoseStatus
	TakenAt       time.Time
}

type MedicationInfo struct {
	ID     string
	Name   string
	Dosage string
}

type MedicationUsage struct {
	ID     string `json:"id"`
	Name   string `json:"nome"`
	Doses  int    `json:"doses"`
	Dosage string `json:"tipo"`
}

type TimeSlotAdherence struct {
	Slot      string `json:"horario"`
	Adherence int    `json:"adesao"`
	Doses     int    `json:"doses"`
}

type AdherenceSummary struct {
	TotalDoses          int                 `json:"totalDoses"`
	Taken               int                 `json:"dosesTomadas"`
	Late                int                 `json:"dosesAtrasadas"`
	Skipped             int                 `json:"dosesPuladas"`
	AdherenceRate       int                 `json:"taxaAdesao"`
	TopMedications      []MedicationUsage   `json:"medicamentosMaisUsados"`
	AdherenceByTimeSlot []TimeSlotAdherence `json:"horariosCriticos"`
}

func LogRecordFromModel(entry models.MedicationLog) LogRecord {
	return LogRecord{
		MedicationID:  entry.MedicationID,
		ScheduledTime: entry.ScheduledTime,
		Status:        DoseStatus(entry.Status),
		TakenAt:       entry.TakenAt,
	}
}

// Aggregate reduces logs into counts, rates, top medications and hourly slots.
// Statuses outside the closed set only count toward the total.
func Aggregate(logs []LogRecord, medications map[string]MedicationInfo) (AdherenceSummary, error) {
	summary := AdherenceSummary{
		TotalDoses:          len(logs),
		TopMedications:      make([]MedicationUsage, 0),
		AdherenceByTimeSlot: make([]TimeSlotAdherence, 0),
	}

	type slotCounter struct {
		total int
		taken int
	}
	type medicationCounter struct {
		id    string
		count int
	}

	slots := make(map[string]*slotCounter)
	medicationIndex := make(map[string]int)
	medicationCounts := make([]medicationCounter, 0)

	for _, record := range logs {
		hour, _, err := ParseScheduleTime(record.ScheduledTime)
		if err != nil {
			return AdherenceSummary{}, err
		}

		switch record.Status {
		case DoseTaken:
			summary.Taken++
		case DoseLate:
			summary.Late++
		case DoseSkipped:
			summary.Skipped++
		}

		if position, seen := medicationIndex[record.MedicationID]; seen {
			medicationCounts[position].count++
		} else {
			medicationIndex[record.MedicationID] = len(medicationCounts)
			medicationCounts = append(medicationCounts, medicationCounter{id: record.MedicationID, count: 1})
		}

		label := fmt.Sprintf("%02d:00", hour)
		slot, ok := slots[label]
		if !ok {
			slot = &slotCounter{}
			slots[label] = slot
		}
		slot.total++
		if record.Status == DoseTaken {
			slot.taken++
		}
	}

	summary.AdherenceRate = roundedPercent(summary.Taken, summary.TotalDoses)

	sort.SliceStable(medicationCounts, func(i, j int) bool {
		return medicationCounts[i].count > medicationCounts[j].count
	})
	for _, counter := range medicationCounts {
		if len(summary.TopMedications) == topMedicationsLimit {
			break
		}
		info, ok := medications[counter.id]
		if !ok {
			continue
		}
		summary.TopMedications = append(summary.TopMedications, MedicationUsage{
			ID:     counter.id,
			Name:   info.Name,
			Doses:  counter.count,
			Dosage: info.Dosage,
		})
	}

	labels := make([]string, 0, len(slots))
	for label := range slots {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		slot := slots[label]
		summary.AdherenceByTimeSlot = append(summary.AdherenceByTimeSlot, TimeSlotAdherence{
			Slot:      label,
			Adherence: roundedPercent(slot.taken, slot.total),
			Doses:     slot.total,
		})
	}

	return summary, nil
}

// roundedPercent is part/total*100 rounded half up, in integer arithmetic.
func roundedPercent(part int, total int) int {
	if total <= 0 {
		return 0
	}
	return (part*200 + total) / (2 * total)
}
