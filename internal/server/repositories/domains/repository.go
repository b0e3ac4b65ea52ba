package domains

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/server/models"
)

// Repository persists domains per owner.
type Repository interface {
	Upsert(ctx context.Context, d *models.Domain) error
	SelectUpdated(ctx context.Context, userID string, since *time.Time) ([]*models.Domain, error)
	// SelectStamps also serves as an ownership check: ids absent from the
	// result are not owned by userID.
	SelectStamps(ctx context.Context, userID string, ids []string) ([]models.Stamp, error)
}
