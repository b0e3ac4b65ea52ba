// Package domains provides PostgreSQL-backed persistence for domains.
package domains

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/dbx"
	"github.com/dmitrijs2005/tasksync/internal/server/models"
)

const domainColumns = `id, user_id, name, color, icon, description, is_default, position,
	created_at, updated_at, deleted_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts or overwrites a domain by id for its owner. A row owned by
// someone else is left untouched and common.ErrOwnership is returned.
func (r *PostgresRepository) Upsert(ctx context.Context, d *models.Domain) error {
	query := `
		INSERT INTO domains (` + domainColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id)
		DO UPDATE SET
			name = EXCLUDED.name,
			color = EXCLUDED.color,
			icon = EXCLUDED.icon,
			description = EXCLUDED.description,
			is_default = EXCLUDED.is_default,
			position = EXCLUDED.position,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at
			WHERE domains.user_id = EXCLUDED.user_id;
	`
	res, err := r.db.ExecContext(ctx, query,
		d.ID, d.UserID, d.Name, d.Color, d.Icon, d.Description, d.IsDefault, d.Position,
		d.CreatedAt, d.UpdatedAt, d.DeletedAt)
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
		return fmt.Errorf("domain %s: %w", d.ID, common.ErrOwnership)
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) SelectUpdated(ctx context.Context, userID string, since *time.Time) ([]*models.Domain, error) {
	query := `SELECT ` + domainColumns + ` FROM domains WHERE user_id = $1`
	args := []any{userID}
	if since != nil {
		query += ` AND updated_at > $2`
		args = append(args, *since)
	}
	query += ` ORDER BY updated_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select domains: %w", err)
	}
	defer rows.Close()

	var result []*models.Domain
	for rows.Next() {
		var d models.Domain
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.Name, &d.Color, &d.Icon, &d.Description, &d.IsDefault, &d.Position,
			&d.CreatedAt, &d.UpdatedAt, &d.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		result = append(result, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) SelectStamps(ctx context.Context, userID string, ids []string) ([]models.Stamp, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT id, updated_at FROM domains WHERE user_id = $1 AND id IN (` + dbx.Placeholders(2, len(ids)) + `)`
	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select domain stamps: %w", err)
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
