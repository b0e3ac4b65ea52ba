package cli

import (
	"context"
	"database/sql"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/client/client"
	"github.com/dmitrijs2005/tasksync/internal/client/config"
	"github.com/dmitrijs2005/tasksync/internal/client/services"
	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/dmitrijs2005/tasksync/internal/quota"
)

type Mode string

const (
	ModeUnknown Mode = "unknown"
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	api    client.Client
	tasks  services.TaskService
	syncer services.Syncer
	quotas services.QuotaService

	out  io.Writer
	in   io.Reader
	mode atomic.Value

	// retryBase is the first delay between attempts of a scheduled cycle.
	retryBase time.Duration
}

// NewApp opens the local replica and builds the API client described by c.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stderr, logging.ParseLevel(c.LogLevel))

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	api, err := client.NewHTTPClient(c.ServerURL, c.AccessToken, c.RequestTimeout)
	if err != nil {
		db.Close()
		return nil, err
	}

	return newApp(c, db, api, logger), nil
}

func newApp(c *config.Config, db *sql.DB, api client.Client, logger logging.Logger) *App {
	repos := client.NewRepositories(db)
	quotas := services.NewQuotaService(repos.Metadata, quota.Plan(c.Plan), c.TimeZone, logger)

	a := &App{
		config:    c,
		logger:    logger.With("module", "cli"),
		db:        db,
		api:       api,
		tasks:     services.NewTaskService(repos.Tasks, repos.Domains),
		syncer:    services.NewSyncer(db, api, logger),
		quotas:    quotas,
		out:       os.Stdout,
		in:        os.Stdin,
		retryBase: time.Second,
	}
	a.mode.Store(ModeUnknown)
	return a
}

// Close releases the local database.
func (a *App) Close() error {
	return a.db.Close()
}

func (a *App) Mode() Mode {
	return a.mode.Load().(Mode)
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	if old := a.mode.Swap(mode); old != mode {
		a.logger.Info(ctx, "connectivity changed", "mode", mode)
	}
}

// Run executes the command line args against the app.
func (a *App) Run(ctx context.Context, args []string) error {
	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetOut(a.out)
	root.SetErr(a.out)
	return root.ExecuteContext(ctx)
}

// StartOnlineStatusWatcher pings the server every interval and records the
// outcome as the app mode until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.checkOnline(ctx)
	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.api.Ping(pctx); err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}
