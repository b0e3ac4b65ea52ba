package repomanager

import (
	"context"

	"github.com/dmitrijs2005/tasksync/internal/dbx"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/domains"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/exports"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/quotas"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/tasks"
)

// RepositoryManager vends repositories bound to a handle, either the plain
// connection from DB or the transactional one WithTx passes to its callback.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	DB() dbx.DBTX
	// WithTx runs fn as one unit of work: everything fn writes through the
	// handle commits together or not at all.
	WithTx(ctx context.Context, fn dbx.TxFunc) error

	Accounts(db dbx.DBTX) accounts.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	Domains(db dbx.DBTX) domains.Repository
	Quotas(db dbx.DBTX) quotas.Repository
	Exports(db dbx.DBTX) exports.Repository
}
