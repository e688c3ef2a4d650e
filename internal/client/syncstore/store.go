// Package syncstore is the client-side task collection. It merges direct
// API responses with broadcast events so that the final state does not
// depend on which of the two arrives first.
package syncstore

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/logging"
)

type Store struct {
	mu    sync.RWMutex
	tasks []models.Task
	stats models.Stats
	log   logging.Logger
	now   func() time.Time
	// onChange runs after every mutation, outside the lock.
	onChange func()
}

type Option func(*Store)

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithOnChange registers a callback invoked after each applied change.
func WithOnChange(fn func()) Option { return func(s *Store) { s.onChange = fn } }

func New(log logging.Logger, opts ...Option) *Store {
	s := &Store{log: log.With("module", "syncstore"), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) indexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) recomputeLocked() {
	s.stats = ComputeStats(s.log, s.tasks, s.now())
}

func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// ApplyCreate prepends t unless a task with its id is already present.
func (s *Store) ApplyCreate(t models.Task) {
	s.mu.Lock()
	if s.indexLocked(t.ID) >= 0 {
		s.mu.Unlock()
		return
	}
	s.tasks = append([]models.Task{t}, s.tasks...)
	s.recomputeLocked()
	s.mu.Unlock()
	s.changed()
}

// ApplyUpdate replaces the task with t's id. Unknown ids are ignored.
func (s *Store) ApplyUpdate(t models.Task) {
	s.mu.Lock()
	if i := s.indexLocked(t.ID); i >= 0 {
		s.tasks[i] = t
	}
	s.recomputeLocked()
	s.mu.Unlock()
	s.changed()
}

// ApplyDelete removes the task with id, if present.
func (s *Store) ApplyDelete(id string) {
	s.mu.Lock()
	if i := s.indexLocked(id); i >= 0 {
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	}
	s.recomputeLocked()
	s.mu.Unlock()
	s.changed()
}

// Replace swaps in a full listing, e.g. after (re)loading from the API.
func (s *Store) Replace(tasks []models.Task) {
	s.mu.Lock()
	s.tasks = append([]models.Task(nil), tasks...)
	s.recomputeLocked()
	s.mu.Unlock()
	s.changed()
}

// Apply dispatches a broadcast event. It reports whether the event touched
// the task collection.
func (s *Store) Apply(ev Event) bool {
	switch e := ev.(type) {
	case TaskCreated:
		s.ApplyCreate(e.Task)
	case TaskUpdated:
		s.ApplyUpdate(e.Task)
	case TaskDeleted:
		s.ApplyDelete(e.ID)
	case ActivityLogged, RoomJoined:
		return false
	default:
		s.log.Warn(context.Background(), "unhandled event type")
		return false
	}
	return true
}

// Tasks returns a copy of the collection in display order.
func (s *Store) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Task(nil), s.tasks...)
}

func (s *Store) Stats() models.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// ComputeStats derives counters from tasks. Unknown statuses count as
// pending and are reported; overdue needs a parseable due date before now.
func ComputeStats(log logging.Logger, tasks []models.Task, now time.Time) models.Stats {
	var st models.Stats
	for _, t := range tasks {
		st.Total++
		switch t.Status {
		case models.StatusCompleted:
			st.Completed++
		case models.StatusInProgress:
			st.InProgress++
		case models.StatusPending:
			st.Pending++
		default:
			log.Warn(context.Background(), "unrecognized task status, counting as pending", "task_id", t.ID, "status", t.Status)
			st.Pending++
		}

		if t.Status == models.StatusCompleted || t.DueDate == "" {
			continue
		}
		due, err := time.Parse(time.RFC3339, t.DueDate)
		if err != nil {
			continue
		}
		if due.Before(now) {
			st.Overdue++
		}
	}
	return st
}
