package mapper

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/server/models"
	"github.com/dmitrijs2005/tasksync/internal/syncapi"
)

// ToStorageTask maps a validated client task owned by ownerID.
// It only fails on a malformed due date.
func ToStorageTask(t *syncapi.Task, ownerID string) (*models.Task, error) {
	out := &models.Task{
		ID:          t.ID,
		UserID:      ownerID,
		Title:       t.Title,
		Notes:       t.Description,
		State:       string(t.Status),
		Priorite:    StoragePriority(t.Priority),
		DomainID:    copyString(t.DomainID),
		Position:    t.Order,
		CreatedAt:   Instant(t.CreatedAt),
		UpdatedAt:   Instant(t.UpdatedAt),
		CompletedAt: instantPtr(t.CompletedAt),
		DeletedAt:   instantPtr(t.DeletedAt),
	}

	if t.DueDate != nil {
		d, err := time.Parse(syncapi.DateLayout, *t.DueDate)
		if err != nil {
			return nil, fmt.Errorf("task %s: due date: %w", t.ID, err)
		}
		out.DueOn = &d
	}

	if t.EstimatedMinutes != nil {
		s := int64(*t.EstimatedMinutes) * 60
		out.EstimatedSeconds = &s
	}

	if t.Recurrence != nil {
		r := string(*t.Recurrence)
		out.Recurrence = &r
	}

	return out, nil
}

// ToClientTask maps a stored task back to the wire representation.
func ToClientTask(t *models.Task) syncapi.Task {
	out := syncapi.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Notes,
		Status:      syncapi.Status(t.State),
		Priority:    ClientPriority(t.Priorite),
		DomainID:    copyString(t.DomainID),
		Tags:        []string{},
		Order:       t.Position,
		CreatedAt:   Instant(t.CreatedAt),
		UpdatedAt:   Instant(t.UpdatedAt),
		CompletedAt: instantPtr(t.CompletedAt),
		DeletedAt:   instantPtr(t.DeletedAt),
	}

	if t.DueOn != nil {
		d := t.DueOn.UTC().Format(syncapi.DateLayout)
		out.DueDate = &d
	}

	if t.EstimatedSeconds != nil {
		m := int(*t.EstimatedSeconds / 60)
		out.EstimatedMinutes = &m
	}

	if t.Recurrence != nil {
		r := syncapi.Recurrence(*t.Recurrence)
		out.Recurrence = &r
	}

	return out
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
