package records

import (
	"time"

	"github.com/dmitrijs2005/tasksync/internal/syncapi"
)

// Codec describes how a record type maps onto its table.
type Codec[T any] struct {
	Table     string
	ID        func(*T) string
	UpdatedAt func(*T) time.Time
	Deleted   func(*T) bool
}

var TaskCodec = Codec[syncapi.Task]{
	Table:     "tasks",
	ID:        func(t *syncapi.Task) string { return t.ID },
	UpdatedAt: func(t *syncapi.Task) time.Time { return t.UpdatedAt },
	Deleted:   func(t *syncapi.Task) bool { return t.DeletedAt != nil },
}

var DomainCodec = Codec[syncapi.Domain]{
	Table:     "domains",
	ID:        func(d *syncapi.Domain) string { return d.ID },
	UpdatedAt: func(d *syncapi.Domain) time.Time { return d.UpdatedAt },
	Deleted:   func(d *syncapi.Domain) bool { return d.DeletedAt != nil },
}
