// Package repomanager vends repository implementations bound to a DBTX and
// owns the storage lifecycle (migrations, transactions, close).
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/tasksync/internal/dbx"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/activities"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	// DB is the non-transactional handle passed to the repo factories.
	DB() dbx.DBTX
	// WithTx runs fn in one unit of work; repos built from tx share it.
	WithTx(ctx context.Context, fn dbx.TxFunc) error
	Ping(ctx context.Context) error
	Close() error

	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	Activities(db dbx.DBTX) activities.Repository
}
