// Package quotas provides PostgreSQL-backed persistence for quota meters.
package quotas

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/dbx"
	"github.com/dmitrijs2005/tasksync/internal/quota"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Load returns common.ErrorNotFound when the owner never used action.
func (r *PostgresRepository) Load(ctx context.Context, owner string, action quota.Action) (quota.State, error) {
	query := `
		SELECT plan, lifetime_used, period_used, period_reset_at, period_window, time_zone
		FROM quotas WHERE user_id = $1 AND action = $2
	`
	var s quota.State
	err := r.db.QueryRowContext(ctx, query, owner, string(action)).
		Scan(&s.Plan, &s.LifetimeUsed, &s.PeriodUsed, &s.PeriodResetAt, &s.Window, &s.TimeZone)
	if errors.Is(err, sql.ErrNoRows) {
		return quota.State{}, common.ErrorNotFound
	}
	if err != nil {
		return quota.State{}, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

// Save upserts the state of owner and action.
func (r *PostgresRepository) Save(ctx context.Context, owner string, action quota.Action, s quota.State) error {
	query := `
		INSERT INTO quotas (user_id, action, plan, lifetime_used, period_used, period_reset_at, period_window, time_zone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, action)
		DO UPDATE SET
			plan = EXCLUDED.plan,
			lifetime_used = EXCLUDED.lifetime_used,
			period_used = EXCLUDED.period_used,
			period_reset_at = EXCLUDED.period_reset_at,
			period_window = EXCLUDED.period_window,
			time_zone = EXCLUDED.time_zone;
	`
	_, err := r.db.ExecContext(ctx, query,
		owner, string(action), string(s.Plan), s.LifetimeUsed, s.PeriodUsed, s.PeriodResetAt, string(s.Window), s.TimeZone)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
