package memory

import (
	"time"

	"github.com/dmitrijs2005/tasksync/internal/quota"
	"github.com/dmitrijs2005/tasksync/internal/server/models"
)

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTask(t models.Task) models.Task {
	t.DomainID = clonePtr(t.DomainID)
	t.DueOn = clonePtr(t.DueOn)
	t.EstimatedSeconds = clonePtr(t.EstimatedSeconds)
	t.Recurrence = clonePtr(t.Recurrence)
	t.CompletedAt = clonePtr(t.CompletedAt)
	t.DeletedAt = clonePtr(t.DeletedAt)
	return t
}

func cloneDomain(d models.Domain) models.Domain {
	d.DeletedAt = clonePtr(d.DeletedAt)
	return d
}

func cloneState(s quota.State) quota.State {
	s.PeriodResetAt = clonePtr(s.PeriodResetAt)
	return s
}

func changedAfter(updatedAt time.Time, since *time.Time) bool {
	return since == nil || updatedAt.After(*since)
}
