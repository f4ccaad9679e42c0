package services

import (
	"testing"
	"time"
)

func TestDateAtLocationNormalizesToLocalMidnight(t *testing.T) {
	location, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	raw := time.Date(2026, 2, 1, 1, 35, 10, 0, time.UTC)
	start := DateAtLocation(raw, location)

	if start.Day() != 31 || start.Month() != time.January {
		t.Fatalf("expected local calendar day 2026-01-31, got %s", start.Format(time.RFC3339))
	}
	if start.Hour() != 0 || start.Minute() != 0 || start.Second() != 0 {
		t.Fatalf("expected midnight start, got %s", start.Format(time.RFC3339))
	}
	if got := LogDate(raw, location); got != "2026-01-31" {
		t.Fatalf("expected log date 2026-01-31, got %q", got)
	}
}

func TestCalendarDaysBetweenAcrossDST(t *testing.T) {
	location, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 2026-03-08 is the spring-forward day in New York.
	before := time.Date(2026, time.March, 7, 23, 30, 0, 0, location)
	after := time.Date(2026, time.March, 8, 23, 30, 0, 0, location)
	if got := CalendarDaysBetween(before, after, location); got != 1 {
		t.Fatalf("CalendarDaysBetween across DST = %d, want 1", got)
	}

	if got := CalendarDaysBetween(after, before, location); got != -1 {
		t.Fatalf("CalendarDaysBetween reversed = %d, want -1", got)
	}
}

func TestLogDateAndWeekdayUseLocation(t *testing.T) {
	location := time.FixedZone("UTC-3", -3*60*60)
	value := time.Date(2026, time.March, 2, 1, 0, 0, 0, time.UTC)

	if got := LogDate(value, location); got != "2026-03-01" {
		t.Fatalf("LogDate() = %q, want 2026-03-01", got)
	}
	if got := WeekdayName(value, location); got != "sunday" {
		t.Fatalf("WeekdayName() = %q, want sunday", got)
	}
}
