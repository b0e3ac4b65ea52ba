package accounts

import (
	"context"

	"github.com/dmitrijs2005/tasksync/internal/server/models"
)

type Repository interface {
	// Ensure returns the account id, creating it with plan when missing.
	Ensure(ctx context.Context, id, plan string) (*models.Account, error)
	// GetByID returns common.ErrorNotFound for an unknown id.
	GetByID(ctx context.Context, id string) (*models.Account, error)
}
