package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/server/models"
)

type TasksRepo struct {
	s *Store
}

func (r *TasksRepo) titleTakenLocked(title, excludeID string) bool {
	for id, t := range r.s.tasks {
		if id != excludeID && t.Title == title {
			return true
		}
	}
	return false
}

func (r *TasksRepo) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.titleTakenLocked(task.Title, "") {
		return nil, common.ErrorAlreadyExists
	}

	task.ID = newID()
	task.CreatedAt = r.s.now()
	task.UpdatedAt = task.CreatedAt
	if task.Tags == nil {
		task.Tags = []string{}
	}
	r.s.seq++
	r.s.taskSeq[task.ID] = r.s.seq
	r.s.tasks[task.ID] = cloneTask(*task)
	return task, nil
}

func (r *TasksRepo) GetByID(ctx context.Context, id string) (*models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	t = cloneTask(t)
	return &t, nil
}

func matches(t models.Task, f models.TaskFilter) bool {
	if f.Status != "" && string(t.Status) != f.Status {
		return false
	}
	if f.Priority != "" && string(t.Priority) != f.Priority {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), q) && !strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	return true
}

func (r *TasksRepo) List(ctx context.Context, owner string, filter models.TaskFilter) ([]models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.Task{}
	for _, t := range r.s.tasks {
		if t.Owner == owner && matches(t, filter) {
			out = append(out, cloneTask(t))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return r.s.taskSeq[out[i].ID] > r.s.taskSeq[out[j].ID]
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *TasksRepo) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.tasks[task.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if r.titleTakenLocked(task.Title, task.ID) {
		return nil, common.ErrorAlreadyExists
	}

	cur.Title = task.Title
	cur.Description = task.Description
	cur.Status = task.Status
	cur.Priority = task.Priority
	cur.UpdatedAt = r.s.now()
	r.s.tasks[task.ID] = cur

	task.UpdatedAt = cur.UpdatedAt
	return task, nil
}

func (r *TasksRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.tasks, id)
	delete(r.s.taskSeq, id)
	return nil
}

func (r *TasksRepo) TitleExists(ctx context.Context, title, excludeID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.titleTakenLocked(title, excludeID), nil
}

func (r *TasksRepo) Stats(ctx context.Context, owner string, now time.Time) (*models.TaskStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st := &models.TaskStats{}
	for _, t := range r.s.tasks {
		if t.Owner != owner {
			continue
		}
		st.Total++
		switch t.Status {
		case models.StatusCompleted:
			st.Completed++
		case models.StatusInProgress:
			st.InProgress++
		case models.StatusPending:
			st.Pending++
		}
		if t.Status != models.StatusCompleted && t.DueDate != nil && t.DueDate.Before(now) {
			st.Overdue++
		}
	}
	return st, nil
}

func (r *TasksRepo) Upcoming(ctx context.Context, owner string, from, to time.Time) ([]models.UpcomingTask, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.UpcomingTask{}
	for _, t := range r.s.tasks {
		if t.Owner != owner || t.Status == models.StatusCompleted || t.DueDate == nil {
			continue
		}
		if t.DueDate.Before(from) || t.DueDate.After(to) {
			continue
		}
		out = append(out, models.UpcomingTask{Title: t.Title, DueDate: *t.DueDate, Status: t.Status, Priority: t.Priority})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}
