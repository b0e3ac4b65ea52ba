// Package tasks provides PostgreSQL-backed persistence for tasks.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/dbx"
	"github.com/dmitrijs2005/tasksync/internal/server/models"
)

const taskColumns = `id, user_id, title, notes, state, priorite, domain_id, due_on,
	estimated_seconds, recurrence, position, created_at, updated_at, completed_at, deleted_at`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert writes t unconditionally: the last upsert to commit wins.
func (r *PostgresRepository) Upsert(ctx context.Context, t *models.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id)
		DO UPDATE SET
			title = EXCLUDED.title,
			notes = EXCLUDED.notes,
			state = EXCLUDED.state,
			priorite = EXCLUDED.priorite,
			domain_id = EXCLUDED.domain_id,
			due_on = EXCLUDED.due_on,
			estimated_seconds = EXCLUDED.estimated_seconds,
			recurrence = EXCLUDED.recurrence,
			position = EXCLUDED.position,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			completed_at = EXCLUDED.completed_at,
			deleted_at = EXCLUDED.deleted_at
			WHERE tasks.user_id = EXCLUDED.user_id;
	`
	res, err := r.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.Title, t.Notes, t.State, string(t.Priorite), t.DomainID, t.DueOn,
		t.EstimatedSeconds, t.Recurrence, t.Position, t.CreatedAt, t.UpdatedAt, t.CompletedAt, t.DeletedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("task %s: %w", t.ID, common.ErrOwnership)
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// SelectUpdated implements Repository.
func (r *PostgresRepository) SelectUpdated(ctx context.Context, userID string, since *time.Time) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	args := []any{userID}
	if since != nil {
		query += ` AND updated_at > $2`
		args = append(args, *since)
	}
	query += ` ORDER BY updated_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select tasks: %w", err)
	}
	defer rows.Close()

	var result []*models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Title, &t.Notes, &t.State, &t.Priorite, &t.DomainID, &t.DueOn,
			&t.EstimatedSeconds, &t.Recurrence, &t.Position, &t.CreatedAt, &t.UpdatedAt,
			&t.CompletedAt, &t.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SelectStamps implements Repository.
func (r *PostgresRepository) SelectStamps(ctx context.Context, userID string, ids []string) ([]models.Stamp, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT id, updated_at FROM tasks WHERE user_id = $1 AND id IN (` + dbx.Placeholders(2, len(ids)) + `)`
	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select task stamps: %w", err)
	}
	defer rows.Close()

	var result []models.Stamp
	for rows.Next() {
		var s models.Stamp
		if err := rows.Scan(&s.ID, &s.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
