package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/client/client"
	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/dbx"
	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/dmitrijs2005/tasksync/internal/mapper"
	"github.com/dmitrijs2005/tasksync/internal/syncapi"
)

// Syncer replicates the local store with the server, one cycle at a time.
type Syncer interface {
	// Sync runs pull, merge and push. It returns common.ErrSyncInProgress
	// when another cycle is running.
	Sync(ctx context.Context) (*models.SyncResult, error)
	State() models.SyncState
	// ResetCursor forgets the last sync instant so the next cycle pulls
	// everything.
	ResetCursor(ctx context.Context) error
}

type syncer struct {
	db     *sql.DB
	repos  *client.Repositories
	api    client.Client
	logger logging.Logger
	state  atomic.Int32
	now    func() time.Time
}

// NewSyncer builds a Syncer. Sync entitlement is decided by the server,
// which answers 403 when the account plan does not include it.
func NewSyncer(db *sql.DB, api client.Client, logger logging.Logger) Syncer {
	return &syncer{
		db:     db,
		repos:  client.NewRepositories(db),
		api:    api,
		logger: logger.With("module", "syncer"),
		now:    time.Now,
	}
}

func (s *syncer) State() models.SyncState {
	return models.SyncState(s.state.Load())
}

func (s *syncer) enter(st models.SyncState) {
	s.state.Store(int32(st))
}

func (s *syncer) ResetCursor(ctx context.Context) error {
	return s.repos.Metadata.Delete(ctx, metadata.KeyLastSyncAt)
}

func (s *syncer) Sync(ctx context.Context) (*models.SyncResult, error) {
	if !s.state.CompareAndSwap(int32(models.SyncIdle), int32(models.SyncPulling)) {
		return nil, common.ErrSyncInProgress
	}
	defer s.enter(models.SyncIdle)

	since, err := s.repos.Metadata.GetTime(ctx, metadata.KeyLastSyncAt)
	if err != nil {
		return nil, fmt.Errorf("error reading sync cursor: %w", err)
	}

	// Anything changed on the server from here on is picked up next cycle.
	cursor := mapper.Instant(s.now())

	pulled, err := s.api.Pull(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("pull: %w", err)
	}

	s.enter(models.SyncMerging)
	applied, err := s.merge(ctx, pulled)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	s.enter(models.SyncPushing)
	pushed, conflicts, err := s.push(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("push: %w", err)
	}

	if err := s.repos.Metadata.SetTime(ctx, metadata.KeyLastSyncAt, cursor); err != nil {
		return nil, fmt.Errorf("error saving sync cursor: %w", err)
	}

	res := &models.SyncResult{
		Pulled:    len(pulled.Tasks) + len(pulled.Domains),
		Applied:   applied,
		Pushed:    pushed,
		Conflicts: conflicts,
		Cursor:    cursor,
	}
	s.logger.Info(ctx, "sync completed",
		"pulled", res.Pulled, "applied", res.Applied, "pushed", res.Pushed, "conflicts", res.Conflicts)
	if conflicts > 0 {
		s.logger.Warn(ctx, "server had newer versions of pushed records", "conflicts", conflicts)
	}
	return res, nil
}

// merge applies pulled records in one transaction, domains first.
func (s *syncer) merge(ctx context.Context, resp *syncapi.PullResponse) (int, error) {
	applied := 0

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repos := client.NewRepositories(tx)

		for i := range resp.Domains {
			ok, err := repos.Domains.MergeRemote(ctx, &resp.Domains[i])
			if err != nil {
				return err
			}
			if ok {
				applied++
			}
		}
		for i := range resp.Tasks {
			ok, err := repos.Tasks.MergeRemote(ctx, &resp.Tasks[i])
			if err != nil {
				return err
			}
			if ok {
				applied++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}

// batches splits pending changes into requests the server accepts. Domain
// batches go first so tasks never reference a domain not yet pushed.
func batches(tasks []syncapi.Task, domains []syncapi.Domain, since *time.Time) []*syncapi.PushRequest {
	var out []*syncapi.PushRequest

	for start := 0; start < len(domains); start += syncapi.MaxBatchSize {
		end := min(start+syncapi.MaxBatchSize, len(domains))
		out = append(out, &syncapi.PushRequest{
			Tasks:      []syncapi.Task{},
			Domains:    domains[start:end],
			LastSyncAt: since,
		})
	}
	for start := 0; start < len(tasks); start += syncapi.MaxBatchSize {
		end := min(start+syncapi.MaxBatchSize, len(tasks))
		out = append(out, &syncapi.PushRequest{
			Tasks:      tasks[start:end],
			Domains:    []syncapi.Domain{},
			LastSyncAt: since,
		})
	}
	return out
}

func (s *syncer) push(ctx context.Context, since *time.Time) (pushed, conflicts int, err error) {
	tasks, err := s.repos.Tasks.Pending(ctx)
	if err != nil {
		return 0, 0, err
	}
	domains, err := s.repos.Domains.Pending(ctx)
	if err != nil {
		return 0, 0, err
	}
	if len(tasks)+len(domains) == 0 {
		s.logger.Debug(ctx, "nothing to push")
		return 0, 0, nil
	}

	for _, req := range batches(tasks, domains, since) {
		resp, err := s.api.Push(ctx, req)
		if err != nil {
			return pushed, conflicts, err
		}
		pushed += resp.Pushed
		conflicts += resp.Conflicts

		for _, d := range req.Domains {
			if err := s.repos.Domains.MarkSynced(ctx, d.ID, d.UpdatedAt); err != nil {
				return pushed, conflicts, err
			}
		}
		for _, t := range req.Tasks {
			if err := s.repos.Tasks.MarkSynced(ctx, t.ID, t.UpdatedAt); err != nil {
				return pushed, conflicts, err
			}
		}
	}
	return pushed, conflicts, nil
}
