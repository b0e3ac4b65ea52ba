package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/dbx"
	"github.com/dmitrijs2005/tasksync/internal/quota"
	"github.com/dmitrijs2005/tasksync/internal/server/models"
)

type AccountRepository struct {
	m  *Manager
	db dbx.DBTX
}

func (r *AccountRepository) Ensure(ctx context.Context, id, plan string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.m.enter(r.db)()

	a, ok := r.m.data.accounts[id]
	if !ok {
		a = models.Account{ID: id, Plan: plan, TimeZone: "UTC", CreatedAt: time.Now().UTC()}
		r.m.data.accounts[id] = a
	}
	return &a, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.m.enter(r.db)()

	a, ok := r.m.data.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &a, nil
}

type TaskRepository struct {
	m  *Manager
	db dbx.DBTX
}

func (r *TaskRepository) Upsert(ctx context.Context, t *models.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer r.m.enter(r.db)()

	if cur, ok := r.m.data.tasks[t.ID]; ok && cur.UserID != t.UserID {
		return fmt.Errorf("task %s: %w", t.ID, common.ErrOwnership)
	}
	r.m.data.tasks[t.ID] = cloneTask(*t)
	return nil
}

func (r *TaskRepository) SelectUpdated(ctx context.Context, userID string, since *time.Time) ([]*models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.m.enter(r.db)()

	var result []*models.Task
	for _, t := range r.m.data.tasks {
		if t.UserID == userID && changedAfter(t.UpdatedAt, since) {
			c := cloneTask(t)
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].UpdatedAt.Before(result[j].UpdatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *TaskRepository) SelectStamps(ctx context.Context, userID string, ids []string) ([]models.Stamp, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.m.enter(r.db)()

	var result []models.Stamp
	for _, id := range ids {
		if t, ok := r.m.data.tasks[id]; ok && t.UserID == userID {
			result = append(result, models.Stamp{ID: id, UpdatedAt: t.UpdatedAt})
		}
	}
	return result, nil
}

type DomainRepository struct {
	m  *Manager
	db dbx.DBTX
}

func (r *DomainRepository) Upsert(ctx context.Context, d *models.Domain) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer r.m.enter(r.db)()

	if cur, ok := r.m.data.domains[d.ID]; ok && cur.UserID != d.UserID {
		return fmt.Errorf("domain %s: %w", d.ID, common.ErrOwnership)
	}
	r.m.data.domains[d.ID] = cloneDomain(*d)
	return nil
}

func (r *DomainRepository) SelectUpdated(ctx context.Context, userID string, since *time.Time) ([]*models.Domain, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.m.enter(r.db)()

	var result []*models.Domain
	for _, d := range r.m.data.domains {
		if d.UserID == userID && changedAfter(d.UpdatedAt, since) {
			c := cloneDomain(d)
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].UpdatedAt.Before(result[j].UpdatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *DomainRepository) SelectStamps(ctx context.Context, userID string, ids []string) ([]models.Stamp, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.m.enter(r.db)()

	var result []models.Stamp
	for _, id := range ids {
		if d, ok := r.m.data.domains[id]; ok && d.UserID == userID {
			result = append(result, models.Stamp{ID: id, UpdatedAt: d.UpdatedAt})
		}
	}
	return result, nil
}

type QuotaRepository struct {
	m  *Manager
	db dbx.DBTX
}

func (r *QuotaRepository) Load(ctx context.Context, owner string, action quota.Action) (quota.State, error) {
	if err := ctx.Err(); err != nil {
		return quota.State{}, err
	}
	defer r.m.enter(r.db)()

	s, ok := r.m.data.quotas[quotaKey{owner, action}]
	if !ok {
		return quota.State{}, common.ErrorNotFound
	}
	return cloneState(s), nil
}

func (r *QuotaRepository) Save(ctx context.Context, owner string, action quota.Action, s quota.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer r.m.enter(r.db)()

	r.m.data.quotas[quotaKey{owner, action}] = cloneState(s)
	return nil
}

type ExportRepository struct {
	m  *Manager
	db dbx.DBTX
}

func (r *ExportRepository) Create(ctx context.Context, e *models.Export) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer r.m.enter(r.db)()

	if _, ok := r.m.data.exports[e.ID]; ok {
		return fmt.Errorf("export %s already exists", e.ID)
	}
	r.m.data.exports[e.ID] = *e
	return nil
}
