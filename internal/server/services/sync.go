// Package services contains server-side business logic: the sync
// coordinator, account bootstrap, quota metering and exports.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/dbx"
	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/dmitrijs2005/tasksync/internal/mapper"
	"github.com/dmitrijs2005/tasksync/internal/server/conflicts"
	"github.com/dmitrijs2005/tasksync/internal/server/models"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tasksync/internal/syncapi"
	"golang.org/x/sync/errgroup"
)

// SyncService implements Pull and Push for one owner at a time. Callers
// authenticate the owner and check the sync entitlement beforehand.
//
// Concurrent pushes of the same ids are not coordinated: each push is one
// transaction and the last one to commit wins.
type SyncService struct {
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

// NewSyncService constructs a SyncService over the given repositories.
func NewSyncService(m repomanager.RepositoryManager, logger logging.Logger) *SyncService {
	return &SyncService{
		repomanager: m,
		logger:      logger.With("module", "sync"),
	}
}

// Pull returns every task and domain of ownerID changed strictly after
// since, or everything when since is nil. Tombstones are included.
func (s *SyncService) Pull(ctx context.Context, ownerID string, since *time.Time) (*syncapi.PullResponse, error) {
	db := s.repomanager.DB()
	since = pullCursor(since)

	var (
		tasks   []*models.Task
		domains []*models.Domain
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = s.repomanager.Tasks(db).SelectUpdated(gctx, ownerID, since)
		return err
	})
	g.Go(func() error {
		var err error
		domains, err = s.repomanager.Domains(db).SelectUpdated(gctx, ownerID, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("pull: %w", storageError(err))
	}

	resp := &syncapi.PullResponse{
		Tasks:   make([]syncapi.Task, 0, len(tasks)),
		Domains: make([]syncapi.Domain, 0, len(domains)),
	}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, mapper.ToClientTask(t))
	}
	for _, d := range domains {
		resp.Domains = append(resp.Domains, mapper.ToClientDomain(d))
	}

	s.logger.Debug(ctx, "pull served", "owner", ownerID, "tasks", len(resp.Tasks), "domains", len(resp.Domains))
	return resp, nil
}

// Push validates the whole batch, then in one transaction counts conflicts
// (only when LastSyncAt is set), upserts domains, checks that every task
// references a domain the owner has, and upserts tasks. Any failure leaves
// the store untouched.
func (s *SyncService) Push(ctx context.Context, ownerID string, req *syncapi.PushRequest) (*syncapi.PushResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	domains := make([]*models.Domain, len(req.Domains))
	for i := range req.Domains {
		domains[i] = mapper.ToStorageDomain(&req.Domains[i], ownerID)
	}

	tasks := make([]*models.Task, len(req.Tasks))
	for i := range req.Tasks {
		t, err := mapper.ToStorageTask(&req.Tasks[i], ownerID)
		if err != nil {
			return nil, common.NewValidationError(common.FieldError{
				Field: fmt.Sprintf("tasks[%d].dueDate", i), Message: err.Error(),
			})
		}
		tasks[i] = t
	}

	var detected int
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if req.LastSyncAt != nil {
			n, err := s.countConflicts(ctx, tx, ownerID, tasks, domains)
			if err != nil {
				return err
			}
			detected = n
		}

		domainRepo := s.repomanager.Domains(tx)
		for _, d := range domains {
			if err := domainRepo.Upsert(ctx, d); err != nil {
				return err
			}
		}

		if err := s.checkDomainRefs(ctx, tx, ownerID, tasks, domains); err != nil {
			return err
		}

		taskRepo := s.repomanager.Tasks(tx)
		for _, t := range tasks {
			if err := taskRepo.Upsert(ctx, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("push: %w", storageError(err))
	}

	resp := &syncapi.PushResponse{Pushed: len(tasks) + len(domains), Conflicts: detected}
	s.logger.Info(ctx, "push applied",
		"owner", ownerID, "tasks", len(tasks), "domains", len(domains), "conflicts", detected)
	return resp, nil
}

// countConflicts runs detection on domains and tasks independently, before
// anything is written.
func (s *SyncService) countConflicts(ctx context.Context, tx dbx.DBTX, ownerID string, tasks []*models.Task, domains []*models.Domain) (int, error) {
	domainStamps := make([]models.Stamp, len(domains))
	for i, d := range domains {
		domainStamps[i] = models.Stamp{ID: d.ID, UpdatedAt: d.UpdatedAt}
	}
	taskStamps := make([]models.Stamp, len(tasks))
	for i, t := range tasks {
		taskStamps[i] = models.Stamp{ID: t.ID, UpdatedAt: t.UpdatedAt}
	}

	storedDomains, err := s.repomanager.Domains(tx).SelectStamps(ctx, ownerID, conflicts.IDs(domainStamps))
	if err != nil {
		return 0, err
	}
	storedTasks, err := s.repomanager.Tasks(tx).SelectStamps(ctx, ownerID, conflicts.IDs(taskStamps))
	if err != nil {
		return 0, err
	}

	return conflicts.Count(domainStamps, conflicts.Index(storedDomains)) +
		conflicts.Count(taskStamps, conflicts.Index(storedTasks)), nil
}

// checkDomainRefs requires each task's domain to be in the batch or already
// owned by ownerID.
func (s *SyncService) checkDomainRefs(ctx context.Context, tx dbx.DBTX, ownerID string, tasks []*models.Task, domains []*models.Domain) error {
	inBatch := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		inBatch[d.ID] = struct{}{}
	}

	var missing []string
	seen := map[string]struct{}{}
	for _, t := range tasks {
		if t.DomainID == nil {
			continue
		}
		id := *t.DomainID
		if _, ok := inBatch[id]; ok {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	owned, err := s.repomanager.Domains(tx).SelectStamps(ctx, ownerID, missing)
	if err != nil {
		return err
	}
	known := conflicts.Index(owned)

	var details []common.FieldError
	for i, t := range tasks {
		if t.DomainID == nil {
			continue
		}
		if _, ok := inBatch[*t.DomainID]; ok {
			continue
		}
		if _, ok := known[*t.DomainID]; !ok {
			details = append(details, common.FieldError{
				Field:   fmt.Sprintf("tasks[%d].domainId", i),
				Message: "references an unknown domain",
			})
		}
	}
	if len(details) > 0 {
		return common.NewValidationError(details...)
	}
	return nil
}

// pullCursor drops sub-microsecond digits of since. Stored stamps have
// microsecond precision, so this keeps "after since" unchanged, while
// timestamptz would round the cursor up and hide the next microsecond.
func pullCursor(since *time.Time) *time.Time {
	if since == nil {
		return nil
	}
	c := mapper.Instant(*since)
	return &c
}
