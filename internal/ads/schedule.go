package ads

import "time"

// DateLayout is the wire format for calendar dates (slot keys).
const DateLayout = "2006-01-02"

// DefaultPublishHour is the default publish time of day (15:00 local).
const DefaultPublishHour = 15

// TakedownAt returns the takedown instant for an ad published at publish
// with the given duration: publish plus durationDays calendar days, same
// time of day.
func TakedownAt(publish time.Time, durationDays int) time.Time {
	return publish.AddDate(0, 0, durationDays)
}

// OccupiedDates returns every local calendar date the active window
// [publish, takedown) touches, ordered and formatted as YYYY-MM-DD.
// A 3-day ad yields 3 consecutive dates starting at publish's date.
// The same bucketing is used by the slot guard and the calendar grid, so
// both always agree on which days an ad occupies.
func OccupiedDates(publish, takedown time.Time, loc *time.Location) []string {
	start := dateOf(publish, loc)
	end := dateOf(takedown, loc)

	var dates []string
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates
}

// DateOnly formats t's local calendar date as YYYY-MM-DD.
func DateOnly(t time.Time, loc *time.Location) string {
	return dateOf(t, loc).Format(DateLayout)
}

// PublishReminderTime is when the publish reminder event starts: one hour
// before the actual publish instant.
func PublishReminderTime(publish time.Time) time.Time {
	return publish.Add(-time.Hour)
}

// DefaultPublishTime returns today at 15:00 in loc, the usual publish slot.
func DefaultPublishTime(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), DefaultPublishHour, 0, 0, 0, loc)
}

func dateOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
