package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/client/client"
	"github.com/dmitrijs2005/tasksync/internal/client/config"
	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/dmitrijs2005/tasksync/internal/syncapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	client.Client

	mu        sync.Mutex
	pingErr   error
	pullErrs  []error
	pulls     int
	pushed    []*syncapi.PushRequest
	exportErr error
	exports   int
}

func (f *fakeAPI) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeAPI) Pull(context.Context, *time.Time) (*syncapi.PullResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pulls++
	if len(f.pullErrs) > 0 {
		err := f.pullErrs[0]
		f.pullErrs = f.pullErrs[1:]
		return nil, err
	}
	return &syncapi.PullResponse{Tasks: []syncapi.Task{}, Domains: []syncapi.Domain{}}, nil
}

func (f *fakeAPI) Push(_ context.Context, req *syncapi.PushRequest) (*syncapi.PushResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = append(f.pushed, req)
	return &syncapi.PushResponse{Pushed: len(req.Tasks) + len(req.Domains)}, nil
}

func (f *fakeAPI) Usage(_ context.Context, action string) (*syncapi.QuotaResponse, error) {
	return &syncapi.QuotaResponse{Action: action, Plan: "tier2", Used: 4, Limit: 20, Remaining: 16, ResetDescription: "resets on 1 Apr"}, nil
}

func (f *fakeAPI) Export(context.Context) (*syncapi.ExportResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	f.exports++
	return &syncapi.ExportResponse{
		ID: "e1", URL: "https://bucket.example/exports/e1.json",
		ExpiresAt: time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC), Tasks: 3, Domains: 1,
	}, nil
}

func newTestApp(t *testing.T, plan string) (*App, *fakeAPI, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.Plan = plan
	cfg.DatabasePath = filepath.Join(t.TempDir(), "replica.db")

	db, err := client.InitDatabase(context.Background(), cfg.DatabasePath)
	require.NoError(t, err)

	api := &fakeAPI{}
	a := newApp(cfg, db, api, logging.NopLogger{})
	out := &bytes.Buffer{}
	a.out = out
	a.retryBase = time.Millisecond
	t.Cleanup(func() { _ = a.Close() })
	return a, api, out
}

// run executes one command line and returns what it printed.
func run(t *testing.T, a *App, out *bytes.Buffer, args ...string) (string, error) {
	t.Helper()
	out.Reset()
	err := a.Run(context.Background(), args)
	return out.String(), err
}

func listJSON(t *testing.T, a *App, out *bytes.Buffer) []syncapi.Task {
	t.Helper()
	s, err := run(t, a, out, "list", "--output", "json")
	require.NoError(t, err)

	var tasks []syncapi.Task
	dec := json.NewDecoder(strings.NewReader(s))
	for dec.More() {
		var tk syncapi.Task
		require.NoError(t, dec.Decode(&tk))
		tasks = append(tasks, tk)
	}
	return tasks
}

func TestNewApp_RejectsBadServerURL(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "replica.db")
	cfg.ServerURL = "ftp://nowhere"

	_, err := NewApp(context.Background(), cfg)
	assert.Error(t, err)
}

func TestCheckOnline_SwitchesMode(t *testing.T) {
	a, api, _ := newTestApp(t, "tier2")
	ctx := context.Background()
	assert.Equal(t, ModeUnknown, a.Mode())

	a.checkOnline(ctx)
	assert.Equal(t, ModeOnline, a.Mode())

	api.pingErr = client.ErrUnavailable
	a.checkOnline(ctx)
	assert.Equal(t, ModeOffline, a.Mode())
}

func TestStartOnlineStatusWatcher_StopsOnCancel(t *testing.T) {
	a, _, _ := newTestApp(t, "tier2")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		a.StartOnlineStatusWatcher(ctx, time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return a.Mode() == ModeOnline }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
