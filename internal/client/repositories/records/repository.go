package records

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/syncapi"
)

type Repository[T any] interface {
	// Save stores a local change and marks it pending.
	Save(ctx context.Context, r *T) error

	// MergeRemote applies a record received from the server when it is
	// strictly newer than the local copy, clearing the pending flag.
	// applied is false when the local copy won.
	MergeRemote(ctx context.Context, r *T) (applied bool, err error)

	// Pending lists changes not yet pushed, tombstones included.
	Pending(ctx context.Context) ([]T, error)

	// MarkSynced clears the pending flag unless the record was changed
	// again after updatedAt.
	MarkSynced(ctx context.Context, id string, updatedAt time.Time) error

	// List returns live records ordered by id.
	List(ctx context.Context) ([]T, error)

	// Get returns common.ErrorNotFound for an unknown id. Tombstones are
	// returned.
	Get(ctx context.Context, id string) (*T, error)
}

type (
	TaskRepository   = Repository[syncapi.Task]
	DomainRepository = Repository[syncapi.Domain]
)
