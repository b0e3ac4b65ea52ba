// Package services implements the client-side use cases: local task and
// domain edits, the sync cycle and local quota metering.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/client/repositories/records"
	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/mapper"
	"github.com/dmitrijs2005/tasksync/internal/syncapi"
	"github.com/google/uuid"
)

// DefaultDomainColor is used when a domain is created without a color.
const DefaultDomainColor = "#6366F1"

// TaskInput carries the user-editable fields of a new task.
type TaskInput struct {
	Title            string
	Description      string
	Priority         syncapi.Priority
	DomainID         *string
	Tags             []string
	DueDate          *string
	EstimatedMinutes *int
	Recurrence       *syncapi.Recurrence
	Order            int
}

// DomainInput carries the user-editable fields of a new domain.
type DomainInput struct {
	Name        string
	Color       string
	Icon        string
	Description string
	IsDefault   bool
	Order       int
}

// TaskService edits the local replica. Every change is marked pending and
// gets an updatedAt strictly after the previous one, so it wins the next
// last-writer-wins comparison on this device.
type TaskService interface {
	AddTask(ctx context.Context, in TaskInput) (*syncapi.Task, error)
	UpdateTask(ctx context.Context, id string, edit func(*syncapi.Task)) (*syncapi.Task, error)
	CompleteTask(ctx context.Context, id string) (*syncapi.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context) ([]syncapi.Task, error)

	AddDomain(ctx context.Context, in DomainInput) (*syncapi.Domain, error)
	DeleteDomain(ctx context.Context, id string) error
	ListDomains(ctx context.Context) ([]syncapi.Domain, error)
}

type taskService struct {
	tasks   records.TaskRepository
	domains records.DomainRepository
	now     func() time.Time
}

func NewTaskService(tasks records.TaskRepository, domains records.DomainRepository) TaskService {
	return &taskService{tasks: tasks, domains: domains, now: time.Now}
}

// stamp returns the current instant at the precision the server keeps,
// moved past prev when the clock has not advanced beyond it.
func (s *taskService) stamp(prev time.Time) time.Time {
	next := mapper.Instant(s.now())
	if !next.After(prev) {
		next = prev.Add(time.Microsecond)
	}
	return next
}

func (s *taskService) AddTask(ctx context.Context, in TaskInput) (*syncapi.Task, error) {
	now := s.stamp(time.Time{})

	t := &syncapi.Task{
		ID:               uuid.NewString(),
		Title:            in.Title,
		Description:      in.Description,
		Status:           syncapi.StatusTodo,
		Priority:         in.Priority,
		DomainID:         in.DomainID,
		Tags:             in.Tags,
		DueDate:          in.DueDate,
		EstimatedMinutes: in.EstimatedMinutes,
		Recurrence:       in.Recurrence,
		Order:            in.Order,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if t.Priority == "" {
		t.Priority = syncapi.PriorityMedium
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}

	if err := s.save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *taskService) live(ctx context.Context, id string) (*syncapi.Task, error) {
	t, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.DeletedAt != nil {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (s *taskService) save(ctx context.Context, t *syncapi.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.tasks.Save(ctx, t); err != nil {
		return fmt.Errorf("saving error: %w", err)
	}
	return nil
}

// UpdateTask applies edit to a live task. Identity and timestamps are
// managed here and cannot be changed by edit.
func (s *taskService) UpdateTask(ctx context.Context, id string, edit func(*syncapi.Task)) (*syncapi.Task, error) {
	t, err := s.live(ctx, id)
	if err != nil {
		return nil, err
	}

	prev := *t
	edit(t)
	t.ID, t.CreatedAt, t.DeletedAt = prev.ID, prev.CreatedAt, nil
	t.UpdatedAt = s.stamp(prev.UpdatedAt)

	switch {
	case t.Status == syncapi.StatusDone && prev.Status != syncapi.StatusDone:
		done := t.UpdatedAt
		t.CompletedAt = &done
	case t.Status != syncapi.StatusDone:
		t.CompletedAt = nil
	}

	if err := s.save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *taskService) CompleteTask(ctx context.Context, id string) (*syncapi.Task, error) {
	return s.UpdateTask(ctx, id, func(t *syncapi.Task) { t.Status = syncapi.StatusDone })
}

// DeleteTask replaces the task with a tombstone that replicates like an edit.
func (s *taskService) DeleteTask(ctx context.Context, id string) error {
	t, err := s.live(ctx, id)
	if err != nil {
		return err
	}
	t.UpdatedAt = s.stamp(t.UpdatedAt)
	deleted := t.UpdatedAt
	t.DeletedAt = &deleted

	if err := s.tasks.Save(ctx, t); err != nil {
		return fmt.Errorf("error deleting task: %w", err)
	}
	return nil
}

func (s *taskService) ListTasks(ctx context.Context) ([]syncapi.Task, error) {
	return s.tasks.List(ctx)
}

func (s *taskService) AddDomain(ctx context.Context, in DomainInput) (*syncapi.Domain, error) {
	now := s.stamp(time.Time{})

	d := &syncapi.Domain{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Color:       in.Color,
		Icon:        in.Icon,
		Description: in.Description,
		IsDefault:   in.IsDefault,
		Order:       in.Order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if d.Color == "" {
		d.Color = DefaultDomainColor
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := s.domains.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("saving error: %w", err)
	}
	return d, nil
}

func (s *taskService) DeleteDomain(ctx context.Context, id string) error {
	d, err := s.domains.Get(ctx, id)
	if err != nil {
		return err
	}
	if d.DeletedAt != nil {
		return common.ErrorNotFound
	}

	d.UpdatedAt = s.stamp(d.UpdatedAt)
	deleted := d.UpdatedAt
	d.DeletedAt = &deleted

	if err := s.domains.Save(ctx, d); err != nil {
		return fmt.Errorf("error deleting domain: %w", err)
	}
	return nil
}

func (s *taskService) ListDomains(ctx context.Context) ([]syncapi.Domain, error) {
	return s.domains.List(ctx)
}
