package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/dbx"
	"github.com/dmitrijs2005/tasksync/internal/syncapi"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository[T any] struct {
	db    dbx.DBTX
	codec Codec[T]
}

func NewSQLiteRepository[T any](db dbx.DBTX, codec Codec[T]) *SQLiteRepository[T] {
	return &SQLiteRepository[T]{db: db, codec: codec}
}

func NewTaskRepository(db dbx.DBTX) *SQLiteRepository[syncapi.Task] {
	return NewSQLiteRepository(db, TaskCodec)
}

func NewDomainRepository(db dbx.DBTX) *SQLiteRepository[syncapi.Domain] {
	return NewSQLiteRepository(db, DomainCodec)
}

func (r *SQLiteRepository[T]) columns(rec *T) ([]byte, int64, bool, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, 0, false, err
	}
	return body, r.codec.UpdatedAt(rec).UnixNano(), r.codec.Deleted(rec), nil
}

func (r *SQLiteRepository[T]) Save(ctx context.Context, rec *T) error {
	body, ns, deleted, err := r.columns(rec)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %[1]s (id, body, updated_at_ns, deleted, pending)
			VALUES (?, ?, ?, ?, 1)
			ON CONFLICT(id) DO UPDATE SET body = excluded.body,
				updated_at_ns = excluded.updated_at_ns,
				deleted = excluded.deleted,
				pending = 1`, r.codec.Table)

	if _, err := r.db.ExecContext(ctx, query, r.codec.ID(rec), body, ns, deleted); err != nil {
		return fmt.Errorf("failed to save %s row: %w", r.codec.Table, err)
	}
	return nil
}

func (r *SQLiteRepository[T]) MergeRemote(ctx context.Context, rec *T) (bool, error) {
	body, ns, deleted, err := r.columns(rec)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(`INSERT INTO %[1]s (id, body, updated_at_ns, deleted, pending)
			VALUES (?, ?, ?, ?, 0)
			ON CONFLICT(id) DO UPDATE SET body = excluded.body,
				updated_at_ns = excluded.updated_at_ns,
				deleted = excluded.deleted,
				pending = 0
			WHERE excluded.updated_at_ns > %[1]s.updated_at_ns`, r.codec.Table)

	res, err := r.db.ExecContext(ctx, query, r.codec.ID(rec), body, ns, deleted)
	if err != nil {
		return false, fmt.Errorf("failed to merge %s row: %w", r.codec.Table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *SQLiteRepository[T]) MarkSynced(ctx context.Context, id string, updatedAt time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET pending = 0 WHERE id = ? AND updated_at_ns = ?`, r.codec.Table)
	if _, err := r.db.ExecContext(ctx, query, id, updatedAt.UnixNano()); err != nil {
		return fmt.Errorf("failed to mark %s row synced: %w", r.codec.Table, err)
	}
	return nil
}

func (r *SQLiteRepository[T]) Pending(ctx context.Context) ([]T, error) {
	return r.selectBodies(ctx, fmt.Sprintf(
		`SELECT body FROM %s WHERE pending = 1 ORDER BY updated_at_ns, id`, r.codec.Table))
}

func (r *SQLiteRepository[T]) List(ctx context.Context) ([]T, error) {
	return r.selectBodies(ctx, fmt.Sprintf(
		`SELECT body FROM %s WHERE deleted = 0 ORDER BY id`, r.codec.Table))
}

func (r *SQLiteRepository[T]) Get(ctx context.Context, id string) (*T, error) {
	var body []byte
	query := fmt.Sprintf(`SELECT body FROM %s WHERE id = ?`, r.codec.Table)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}

	var rec T
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("corrupt %s row %s: %w", r.codec.Table, id, err)
	}
	return &rec, nil
}

func (r *SQLiteRepository[T]) selectBodies(ctx context.Context, query string) ([]T, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", r.codec.Table, err)
	}
	defer rows.Close()

	var result []T
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var rec T
		if err := json.Unmarshal(body, &rec); err != nil {
			return nil, fmt.Errorf("corrupt %s row: %w", r.codec.Table, err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
