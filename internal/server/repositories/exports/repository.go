package exports

import (
	"context"

	"github.com/dmitrijs2005/tasksync/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, e *models.Export) error
}
