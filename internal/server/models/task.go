package models

import "time"

// Priorite is the storage priority scale. It has fewer buckets than the
// client scale.
type Priorite string

const (
	PrioriteBasse      Priorite = "basse"
	PrioriteMoyenne    Priorite = "moyenne"
	PrioriteHaute      Priorite = "haute"
	PrioriteNonDefinie Priorite = "non_definie"
)

// Task is a task row as stored in the tasks table.
type Task struct {
	ID     string
	UserID string

	Title    string
	Notes    string
	State    string
	Priorite Priorite
	DomainID *string

	// DueOn is a calendar date held as UTC midnight.
	DueOn            *time.Time
	EstimatedSeconds *int64
	Recurrence       *string
	Position         int

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
	DeletedAt   *time.Time
}
