package tasks

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/server/models"
)

// Repository persists tasks per owner.
type Repository interface {
	// Upsert inserts or overwrites a task by id. It fails with
	// common.ErrOwnership when the id belongs to another owner.
	Upsert(ctx context.Context, t *models.Task) error
	// SelectUpdated returns the owner's tasks changed strictly after since,
	// or all of them when since is nil, ordered by updated_at then id.
	SelectUpdated(ctx context.Context, userID string, since *time.Time) ([]*models.Task, error)
	// SelectStamps returns updated_at for those of ids the owner has stored.
	SelectStamps(ctx context.Context, userID string, ids []string) ([]models.Stamp, error)
}
