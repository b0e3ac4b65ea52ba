package quota

import (
	"fmt"
	"time"
)

// Window is the renewal cadence of a rule.
type Window string

const (
	WindowLifetime Window = "lifetime"
	WindowMonthly  Window = "monthly"
	WindowDaily    Window = "daily"
)

func (w Window) period() string {
	switch w {
	case WindowDaily:
		return "day"
	case WindowMonthly:
		return "month"
	}
	return "lifetime"
}

// calendarKey orders instants by their calendar day or month in loc.
func calendarKey(w Window, t time.Time, loc *time.Location) int {
	y, m, d := t.In(loc).Date()
	if w == WindowMonthly {
		return y*12 + int(m)
	}
	return (y*12+int(m))*32 + d
}

// reached reports whether now falls in the window starting at resetAt or a
// later one. Only the calendar matters, not the elapsed duration.
func reached(w Window, now, resetAt time.Time, loc *time.Location) bool {
	return calendarKey(w, now, loc) >= calendarKey(w, resetAt, loc)
}

// nextReset returns the first instant of the window after the one holding now.
func nextReset(w Window, now time.Time, loc *time.Location) time.Time {
	y, m, d := now.In(loc).Date()
	switch w {
	case WindowMonthly:
		return time.Date(y, m+1, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	}
}

func describeReset(w Window, resetAt *time.Time, loc *time.Location) string {
	switch {
	case w == WindowLifetime:
		return "Does not renew"
	case resetAt == nil:
		return fmt.Sprintf("Renews every %s", w.period())
	case w == WindowMonthly:
		return "Renews on " + resetAt.In(loc).Format("January 2, 2006")
	default:
		return "Renews at " + resetAt.In(loc).Format("2006-01-02 15:04 MST")
	}
}
