package models

import "time"

// Domain is a life area (work, health, ...) as stored in the domains table.
type Domain struct {
	ID     string
	UserID string

	Name string
	// Color is six hex digits without the leading '#'.
	Color       string
	Icon        string
	Description string
	IsDefault   bool
	Position    int

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}
