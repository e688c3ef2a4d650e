package memory

import (
	"context"

	"github.com/dmitrijs2005/tasksync/internal/server/models"
)

type ActivitiesRepo struct {
	s *Store
}

func (r *ActivitiesRepo) Create(ctx context.Context, a *models.Activity) (*models.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a.ID = newID()
	a.CreatedAt = r.s.now()
	a.Task = nil
	r.s.activities = append(r.s.activities, *a)
	return a, nil
}

// ListByUser walks the log backwards so the newest entries come first.
func (r *ActivitiesRepo) ListByUser(ctx context.Context, userID string) ([]models.Activity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.Activity{}
	for i := len(r.s.activities) - 1; i >= 0; i-- {
		a := r.s.activities[i]
		if a.UserID != userID {
			continue
		}
		if a.TaskID != nil {
			if t, ok := r.s.tasks[*a.TaskID]; ok {
				a.Task = &models.ActivityTask{Title: t.Title, Description: t.Description}
			}
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *ActivitiesRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	kept := r.s.activities[:0]
	var n int64
	for _, a := range r.s.activities {
		if a.UserID == userID {
			n++
			continue
		}
		kept = append(kept, a)
	}
	r.s.activities = kept
	return n, nil
}
