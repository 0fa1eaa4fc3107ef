package scheduler

import "time"

// WeekWindow is the rolling scheduling horizon: midnight of the next week-start
// weekday through midnight of the next week-end weekday after it, in UTC.
type WeekWindow struct {
	Start time.Time
	End   time.Time
}

// NewWeekWindow anchors the window on now. The current day counts as a valid
// week start; the week end must lie strictly after the start, so a "now" that
// falls exactly on the week-end weekday rolls a full 7 days forward instead of
// collapsing the window to zero length.
func NewWeekWindow(now time.Time, startDay, endDay time.Weekday) WeekWindow {
	today := midnight(now.UTC())

	startOff := (int(startDay) - int(now.UTC().Weekday()) + 7) % 7
	start := today.AddDate(0, 0, startOff)

	endOff := (int(endDay) - int(now.UTC().Weekday()) + 7) % 7
	if endOff == 0 {
		endOff = 7
	}
	end := today.AddDate(0, 0, endOff)
	for !end.After(start) {
		end = end.AddDate(0, 0, 7)
	}
	return WeekWindow{Start: start, End: end}
}

// Days is the bucket count for the window, inclusive of both endpoint days.
func (w WeekWindow) Days() int {
	return int(w.End.Sub(w.Start)/(24*time.Hour)) + 1
}

// Contains reports whether t falls on one of the window's days. End marks
// midnight of the last day, which is itself part of the window.
func (w WeekWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End.AddDate(0, 0, 1))
}
