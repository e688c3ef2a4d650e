package repomanager

import (
	"context"

	"github.com/dmitrijs2005/tasksync/internal/dbx"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/activities"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/memory"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/users"
)

// InMemoryRepositoryManager serves every repo from one memory.Store.
// The DBTX arguments are ignored and WithTx provides no isolation.
type InMemoryRepositoryManager struct {
	store *memory.Store
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{store: memory.NewStore()}
}

// Store exposes the backing store, e.g. to pin its clock in tests.
func (m *InMemoryRepositoryManager) Store() *memory.Store { return m.store }

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error { return nil }
func (m *InMemoryRepositoryManager) DB() dbx.DBTX                            { return nil }
func (m *InMemoryRepositoryManager) Ping(ctx context.Context) error          { return nil }
func (m *InMemoryRepositoryManager) Close() error                            { return nil }

func (m *InMemoryRepositoryManager) WithTx(ctx context.Context, fn dbx.TxFunc) error {
	return fn(ctx, nil)
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.store.Users()
}

func (m *InMemoryRepositoryManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return m.store.RefreshTokens()
}

func (m *InMemoryRepositoryManager) Tasks(dbx.DBTX) tasks.Repository {
	return m.store.Tasks()
}

func (m *InMemoryRepositoryManager) Activities(dbx.DBTX) activities.Repository {
	return m.store.Activities()
}
