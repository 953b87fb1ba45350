package models

import (
	"fmt"
	"time"
)

// WindowDays is the length of each reporting window in calendar days.
const WindowDays = 7

// Window is an inclusive range of instants.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, boundaries included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Days returns the number of calendar days covered by the window.
func (w Window) Days() int {
	days := 0
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		days++
	}
	return days
}

// String formats the window as "Jan 2 - Jan 8, 2024".
func (w Window) String() string {
	return fmt.Sprintf("%s - %s", w.Start.Format("Jan 2"), w.End.Format("Jan 2, 2006"))
}

// Windows holds the current and previous reporting windows of a run.
type Windows struct {
	Current  Window
	Previous Window
}

// ResolveWindows computes both reporting windows relative to now. The current
// window ends on the calendar day before now so a partial day is never counted;
// the previous window covers the seven days immediately before it.
func ResolveWindows(now time.Time) Windows {
	today := StartOfDay(now)
	end := today.AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -(WindowDays - 1))
	prevEnd := start.AddDate(0, 0, -1)
	prevStart := prevEnd.AddDate(0, 0, -(WindowDays - 1))

	return Windows{
		Current:  Window{Start: start, End: end},
		Previous: Window{Start: prevStart, End: prevEnd},
	}
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
