// Package memory is a process-local storage backend implementing every
// repository interface. It backs the "memory" storage option and the
// service tests. Data is lost on restart.
package memory

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/server/models"
	"github.com/google/uuid"
)

type Store struct {
	mu            sync.RWMutex
	users         map[string]models.User
	refreshTokens map[string]models.RefreshToken // keyed by user id
	tasks         map[string]models.Task
	taskSeq       map[string]uint64 // insertion order, breaks CreatedAt ties
	seq           uint64
	activities    []models.Activity
	now           func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:         make(map[string]models.User),
		refreshTokens: make(map[string]models.RefreshToken),
		tasks:         make(map[string]models.Task),
		taskSeq:       make(map[string]uint64),
		now:           time.Now,
	}
}

// SetClock overrides the timestamp source. Tests only.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Users() *UsersRepo                 { return &UsersRepo{s: s} }
func (s *Store) RefreshTokens() *RefreshTokensRepo { return &RefreshTokensRepo{s: s} }
func (s *Store) Tasks() *TasksRepo                 { return &TasksRepo{s: s} }
func (s *Store) Activities() *ActivitiesRepo       { return &ActivitiesRepo{s: s} }

func newID() string { return uuid.NewString() }

func cloneTask(t models.Task) models.Task {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	t.Tags = append([]string{}, t.Tags...)
	return t
}
