package models

import "time"

// Account is the server-side record of a tenant. It is created lazily on the
// first authenticated request.
type Account struct {
	ID        string
	Plan      string
	TimeZone  string
	CreatedAt time.Time
}
