package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/client/client"
	"github.com/dmitrijs2005/tasksync/internal/syncapi"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "replica.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakeServer keeps the last pushed version of every record and answers
// pulls by updatedAt, like the real coordinator does for one owner.
type fakeServer struct {
	client.Client

	mu      sync.Mutex
	tasks   map[string]syncapi.Task
	domains map[string]syncapi.Domain

	pulls    []*time.Time
	pushes   []*syncapi.PushRequest
	pullErr  error
	pushErr  error
	onPull   func()
	onPush   func()
	conflict int
}

func newFakeServer() *fakeServer {
	return &fakeServer{tasks: map[string]syncapi.Task{}, domains: map[string]syncapi.Domain{}}
}

func (f *fakeServer) Pull(_ context.Context, since *time.Time) (*syncapi.PullResponse, error) {
	if f.onPull != nil {
		f.onPull()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.pulls = append(f.pulls, since)
	if f.pullErr != nil {
		return nil, f.pullErr
	}

	resp := &syncapi.PullResponse{Tasks: []syncapi.Task{}, Domains: []syncapi.Domain{}}
	for _, t := range f.tasks {
		if since == nil || t.UpdatedAt.After(*since) {
			resp.Tasks = append(resp.Tasks, t)
		}
	}
	for _, d := range f.domains {
		if since == nil || d.UpdatedAt.After(*since) {
			resp.Domains = append(resp.Domains, d)
		}
	}
	return resp, nil
}

func (f *fakeServer) Push(_ context.Context, req *syncapi.PushRequest) (*syncapi.PushResponse, error) {
	if f.onPush != nil {
		f.onPush()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.pushes = append(f.pushes, req)
	if f.pushErr != nil {
		return nil, f.pushErr
	}
	for _, t := range req.Tasks {
		f.tasks[t.ID] = t
	}
	for _, d := range req.Domains {
		f.domains[d.ID] = d
	}
	return &syncapi.PushResponse{Pushed: len(req.Tasks) + len(req.Domains), Conflicts: f.conflict}, nil
}
