// Package server wires configuration, storage, services and the HTTP API
// of the sync server and runs them until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/dmitrijs2005/tasksync/internal/quota"
	"github.com/dmitrijs2005/tasksync/internal/server/config"
	"github.com/dmitrijs2005/tasksync/internal/server/httpserver"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/memory"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tasksync/internal/server/services"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	manager  repomanager.RepositoryManager
	services httpserver.Services
}

// newManager opens the configured backend. db is nil for the memory backend.
func newManager(c *config.Config) (repomanager.RepositoryManager, *sql.DB, error) {
	switch c.StorageBackend {
	case config.BackendMemory:
		return memory.NewManager(), nil, nil
	case config.BackendPostgres:
		db, err := sql.Open("pgx", c.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		m, err := repomanager.NewPostgresRepositoryManager(db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return m, db, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", c.StorageBackend)
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(c.LogLevel))

	m, db, err := newManager(c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	syncer := services.NewSyncService(m, logger)
	quotas := services.NewQuotaService(m, quota.DefaultPolicy(), logger)

	svc := httpserver.Services{
		Accounts: services.NewAccountService(m, quota.Plan(c.DefaultPlan), logger),
		Sync:     syncer,
		Quotas:   quotas,
		Exports:  services.NewExportService(m, syncer, quotas, c, logger),
	}

	return &App{config: c, logger: logger, db: db, manager: m, services: svc}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpserver.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.services,
		app.config.SecretKey, app.config.RequestTimeout)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "backend", app.config.StorageBackend)

	if app.config.StorageBackend == config.BackendMemory {
		app.logger.Warn(ctx, "memory backend: data is lost on restart")
	}

	if err := app.manager.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if app.db != nil {
		return app.db.Close()
	}
	return nil
}
