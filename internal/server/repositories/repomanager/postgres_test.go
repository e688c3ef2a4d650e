package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/tasksync/internal/dbx"
	"github.com/dmitrijs2005/tasksync/internal/server/models"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/activities"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestManagers_SatisfyInterface(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	var _ RepositoryManager = NewPostgresRepositoryManager(db)
	var _ RepositoryManager = NewInMemoryRepositoryManager()
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := NewPostgresRepositoryManager(db)

	if _, ok := m.Users(db).(*users.PostgresRepository); !ok {
		t.Fatal("Users() should be postgres-backed")
	}
	if _, ok := m.RefreshTokens(db).(*refreshtokens.PostgresRepository); !ok {
		t.Fatal("RefreshTokens() should be postgres-backed")
	}
	if _, ok := m.Tasks(db).(*tasks.PostgresRepository); !ok {
		t.Fatal("Tasks() should be postgres-backed")
	}
	if _, ok := m.Activities(db).(*activities.PostgresRepository); !ok {
		t.Fatal("Activities() should be postgres-backed")
	}
	if m.DB() == nil {
		t.Fatal("DB() nil")
	}
}

func TestWithTx_CommitsAndRollsBack(t *testing.T) {
	db, mock := newDB(t)
	defer db.Close()
	m := NewPostgresRepositoryManager(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM tasks").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := m.WithTx(context.Background(), func(ctx context.Context, tx dbx.DBTX) error {
		return m.Tasks(tx).Delete(ctx, "t1")
	})
	if err != nil {
		t.Fatalf("WithTx error: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectRollback()
	err = m.WithTx(context.Background(), func(ctx context.Context, tx dbx.DBTX) error {
		return errors.New("abort")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPingAndClose(t *testing.T) {
	db, mock := newDB(t)
	m := NewPostgresRepositoryManager(db)

	mock.ExpectPing()
	if err := m.Ping(context.Background()); err != nil {
		t.Fatalf("Ping error: %v", err)
	}
	mock.ExpectClose()
	if err := m.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	if err := NewPostgresRepositoryManager(db).RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	if err := NewPostgresRepositoryManager(db).RunMigrations(context.Background()); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestInMemoryManager_SharesStore(t *testing.T) {
	m := NewInMemoryRepositoryManager()
	ctx := context.Background()

	if err := m.RunMigrations(ctx); err != nil {
		t.Fatal(err)
	}
	if m.DB() != nil {
		t.Fatal("memory manager has no DB handle")
	}

	err := m.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := m.Tasks(tx).Create(ctx, &models.Task{Title: "A", Owner: "u1"})
		return err
	})
	if err != nil {
		t.Fatalf("WithTx error: %v", err)
	}

	list, err := m.Tasks(nil).List(ctx, "u1", models.TaskFilter{})
	if err != nil || len(list) != 1 {
		t.Fatalf("expected task visible outside tx, got %v, %v", list, err)
	}
}
