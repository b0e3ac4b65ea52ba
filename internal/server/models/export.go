package models

import "time"

// Export describes an archive uploaded to object storage.
type Export struct {
	ID         string
	UserID     string
	StorageKey string
	Tasks      int
	Domains    int
	CreatedAt  time.Time
}
