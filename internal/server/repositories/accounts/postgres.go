// Package accounts provides PostgreSQL-backed persistence for tenant
// accounts and their plan.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/dbx"
	"github.com/dmitrijs2005/tasksync/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Ensure creates the account on first sight. The no-op update makes
// RETURNING yield the existing row too.
func (r *PostgresRepository) Ensure(ctx context.Context, id, plan string) (*models.Account, error) {
	query := `
		INSERT INTO accounts (id, plan) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING id, plan, time_zone, created_at
	`
	a := &models.Account{}
	if err := r.db.QueryRowContext(ctx, query, id, plan).Scan(&a.ID, &a.Plan, &a.TimeZone, &a.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT id, plan, time_zone, created_at FROM accounts WHERE id = $1`
	a := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Plan, &a.TimeZone, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}
