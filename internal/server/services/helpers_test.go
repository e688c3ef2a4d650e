package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/dbx"
	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/dmitrijs2005/tasksync/internal/server/config"
	"github.com/dmitrijs2005/tasksync/internal/server/models"
	"github.com/dmitrijs2005/tasksync/internal/server/realtime"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/activities"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/repomanager"
)

// --- helpers ---

type published struct {
	userID string
	ev     realtime.Event
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, userID string, ev realtime.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{userID: userID, ev: ev})
	return f.err
}

func (f *fakePublisher) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, p := range f.events {
		out = append(out, p.ev.Name())
	}
	return out
}

func (f *fakePublisher) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = nil
}

type fixture struct {
	rm         *repomanager.InMemoryRepositoryManager
	pub        *fakePublisher
	activities *ActivityService
	tasks      *TaskService
	users      *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rm := repomanager.NewInMemoryRepositoryManager()
	pub := &fakePublisher{}
	log := logging.NewNop()
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
	a := NewActivityService(rm, pub, log)
	return &fixture{
		rm:         rm,
		pub:        pub,
		activities: a,
		tasks:      NewTaskService(rm, a, pub, log),
		users:      NewUserService(rm, a, cfg, log),
	}
}

func (f *fixture) mustCreate(t *testing.T, owner, title string) *models.Task {
	t.Helper()
	task, err := f.tasks.Create(context.Background(), owner, CreateTaskInput{Title: title})
	if err != nil {
		t.Fatalf("create %q: %v", title, err)
	}
	return task
}

func ptr[T any](v T) *T { return &v }

// failingActivitiesManager wraps the memory manager and makes every
// activity append fail.
type failingActivitiesManager struct {
	*repomanager.InMemoryRepositoryManager
}

type failingActivities struct {
	activities.Repository
}

func (failingActivities) Create(context.Context, *models.Activity) (*models.Activity, error) {
	return nil, errors.New("disk full")
}

func (m failingActivitiesManager) Activities(db dbx.DBTX) activities.Repository {
	return failingActivities{Repository: m.InMemoryRepositoryManager.Activities(db)}
}

// failingRefreshTokensManager makes every refresh token write fail.
type failingRefreshTokensManager struct {
	*repomanager.InMemoryRepositoryManager
}

type failingRefreshTokens struct {
	refreshtokens.Repository
}

func (failingRefreshTokens) Upsert(context.Context, string, string, time.Duration) error {
	return errors.New("store offline")
}

func (m failingRefreshTokensManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return failingRefreshTokens{Repository: m.InMemoryRepositoryManager.RefreshTokens(db)}
}
