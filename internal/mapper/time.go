package mapper

import "time"

// Instant normalises t to what a timestamptz column keeps: UTC, microseconds.
func Instant(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func instantPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := Instant(*t)
	return &v
}
