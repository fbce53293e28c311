package core

import "time"

// Status is the temporal classification of a scheduled communication.
type Status string

const (
	StatusOverdue  Status = "overdue"
	StatusDueToday Status = "due_today"
	StatusUpcoming Status = "upcoming"
)

// CalendarDay truncates t to midnight of its calendar day in loc.
// A nil loc means UTC.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Classify compares the calendar day of scheduledDate with the calendar day
// of now, both taken in loc.
func Classify(scheduledDate, now time.Time, loc *time.Location) Status {
	day := CalendarDay(scheduledDate, loc)
	today := CalendarDay(now, loc)
	switch {
	case day.Before(today):
		return StatusOverdue
	case day.Equal(today):
		return StatusDueToday
	default:
		return StatusUpcoming
	}
}
