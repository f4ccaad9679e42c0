package services

import "time"

const logDateLayout = "2006-01-02"

var weekdayNames = [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

// CalendarDaysBetween counts midnights crossed from earlier to later in location.
// It compares calendar dates, so DST transitions never produce 23h or 25h days.
func CalendarDaysBetween(earlier time.Time, later time.Time, location *time.Location) int {
	from := DateAtLocation(earlier, location)
	to := DateAtLocation(later, location)
	fromUTC := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toUTC := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toUTC.Sub(fromUTC).Hours() / 24)
}

func LogDate(value time.Time, location *time.Location) string {
	return DateAtLocation(value, location).Format(logDateLayout)
}

func WeekdayName(value time.Time, location *time.Location) string {
	return weekdayNames[DateAtLocation(value, location).Weekday()]
}
