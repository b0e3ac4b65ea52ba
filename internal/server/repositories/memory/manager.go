// Package memory is an in-process RepositoryManager. It backs the server in
// development mode and lets service tests exercise transactions and
// concurrent pushes without a database.
//
// WithTx serialises units of work and rolls back by restoring a snapshot.
// Work outside a transaction waits for the running one, so readers never
// observe uncommitted writes.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/dmitrijs2005/tasksync/internal/dbx"
	"github.com/dmitrijs2005/tasksync/internal/quota"
	"github.com/dmitrijs2005/tasksync/internal/server/models"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/domains"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/exports"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/quotas"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/tasks"
)

var errNoSQL = errors.New("memory backend does not execute SQL")

// handle stands in for *sql.DB or *sql.Tx so repositories can be vended
// through the manager interface.
type handle struct {
	inTx bool
}

func (*handle) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, errNoSQL
}

func (*handle) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errNoSQL
}

func (*handle) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

type quotaKey struct {
	owner  string
	action quota.Action
}

type dataset struct {
	accounts map[string]models.Account
	tasks    map[string]models.Task
	domains  map[string]models.Domain
	quotas   map[quotaKey]quota.State
	exports  map[string]models.Export
}

func newDataset() *dataset {
	return &dataset{
		accounts: map[string]models.Account{},
		tasks:    map[string]models.Task{},
		domains:  map[string]models.Domain{},
		quotas:   map[quotaKey]quota.State{},
		exports:  map[string]models.Export{},
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.accounts {
		c.accounts[k] = v
	}
	for k, v := range d.tasks {
		c.tasks[k] = cloneTask(v)
	}
	for k, v := range d.domains {
		c.domains[k] = cloneDomain(v)
	}
	for k, v := range d.quotas {
		c.quotas[k] = cloneState(v)
	}
	for k, v := range d.exports {
		c.exports[k] = v
	}
	return c
}

// Manager implements repomanager.RepositoryManager in memory.
type Manager struct {
	txMu sync.RWMutex
	mu   sync.Mutex
	data *dataset
	root *handle
}

// NewManager returns an empty store.
func NewManager() *Manager {
	return &Manager{data: newDataset(), root: &handle{}}
}

// RunMigrations is a no-op: there is no schema.
func (m *Manager) RunMigrations(context.Context) error {
	return nil
}

// DB returns the non-transactional handle.
func (m *Manager) DB() dbx.DBTX {
	return m.root
}

// WithTx runs fn exclusively. When fn fails, panics or outlives ctx, every
// change it made is discarded.
func (m *Manager) WithTx(ctx context.Context, fn dbx.TxFunc) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snapshot := m.data.clone()
	m.mu.Unlock()

	rollback := func() {
		m.mu.Lock()
		m.data = snapshot
		m.mu.Unlock()
	}

	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			rollback()
		}
	}()

	return fn(ctx, &handle{inTx: true})
}

// enter locks the store for one repository call. Calls made through the
// transactional handle already run under the exclusive tx lock.
func (m *Manager) enter(db dbx.DBTX) func() {
	if h, ok := db.(*handle); ok && h.inTx {
		m.mu.Lock()
		return m.mu.Unlock
	}
	m.txMu.RLock()
	m.mu.Lock()
	return func() {
		m.mu.Unlock()
		m.txMu.RUnlock()
	}
}

func (m *Manager) Accounts(db dbx.DBTX) accounts.Repository {
	return &AccountRepository{m: m, db: db}
}

func (m *Manager) Tasks(db dbx.DBTX) tasks.Repository {
	return &TaskRepository{m: m, db: db}
}

func (m *Manager) Domains(db dbx.DBTX) domains.Repository {
	return &DomainRepository{m: m, db: db}
}

func (m *Manager) Quotas(db dbx.DBTX) quotas.Repository {
	return &QuotaRepository{m: m, db: db}
}

func (m *Manager) Exports(db dbx.DBTX) exports.Repository {
	return &ExportRepository{m: m, db: db}
}
