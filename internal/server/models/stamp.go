package models

import "time"

// Stamp is the last-modified instant of a stored record, used for conflict
// detection.
type Stamp struct {
	ID        string
	UpdatedAt time.Time
}
