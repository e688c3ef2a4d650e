package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/dbx"
	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/dmitrijs2005/tasksync/internal/server/models"
	"github.com/dmitrijs2005/tasksync/internal/server/realtime"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/repomanager"
)

const upcomingWindow = 7 * 24 * time.Hour

// Response messages shared with the HTTP layer.
const (
	MsgTaskUpdated  = "Task Updated Successfully"
	MsgTaskDeleted  = "Task Deleted Successfully"
	MsgNoTaskStats  = "No Task Stats available"
	MsgNoTasksDue   = "No Tasks Due"
	msgTaskNotFound = "Task not found"
	msgTitleTaken   = "Task with this title already exists"
)

// CreateTaskInput is a new task as submitted; zero Status and Priority
// fall back to pending and medium.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     *time.Time
	Tags        []string
}

// UpdateTaskInput holds the fields a caller wants to change; nil means
// "leave as is".
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
}

// TaskService implements the task mutation API. Every mutation commits
// before anything is broadcast.
type TaskService struct {
	repomanager repomanager.RepositoryManager
	activities  *ActivityService
	publisher   Publisher
	log         logging.Logger
	now         func() time.Time
}

// NewTaskService wires the task store, the activity log and the realtime
// publisher. Pass NopPublisher when no broadcasting is wanted.
func NewTaskService(m repomanager.RepositoryManager, a *ActivityService, p Publisher, log logging.Logger) *TaskService {
	return &TaskService{
		repomanager: m,
		activities:  a,
		publisher:   p,
		log:         log.With("module", "tasks"),
		now:         time.Now,
	}
}

// Create stores a task owned by callerID, logs a created activity and
// broadcasts task-create. Titles are trimmed and must be unique.
func (s *TaskService) Create(ctx context.Context, callerID string, in CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, common.NewValidationError("Title is required")
	}

	status := in.Status
	if status == "" {
		status = models.StatusPending
	}
	if !status.Valid() {
		return nil, common.NewValidationError(fmt.Sprintf("Invalid status %q", status))
	}

	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, common.NewValidationError(fmt.Sprintf("Invalid priority %q", priority))
	}

	repo := s.repomanager.Tasks(s.repomanager.DB())

	exists, err := repo.TitleExists(ctx, title, "")
	if err != nil {
		return nil, fmt.Errorf("error checking title: %w", err)
	}
	if exists {
		return nil, common.NewValidationError(msgTitleTaken)
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	task, err := repo.Create(ctx, &models.Task{
		Title:       title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     in.DueDate,
		Owner:       callerID,
		Tags:        tags,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.NewValidationError(msgTitleTaken)
		}
		return nil, fmt.Errorf("error creating task: %w", err)
	}

	s.log.Info(ctx, "task created", "task_id", task.ID, "user_id", callerID)
	publish(ctx, s.publisher, s.log, callerID, realtime.TaskCreated{Task: *task})
	return task, nil
}

// List returns the caller's tasks matching filter, newest first.
func (s *TaskService) List(ctx context.Context, callerID string, filter models.TaskFilter) ([]models.Task, error) {
	out, err := s.repomanager.Tasks(s.repomanager.DB()).List(ctx, callerID, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}
	return out, nil
}

// loadOwned fetches id through db and checks that callerID owns it.
func (s *TaskService) loadOwned(ctx context.Context, db dbx.DBTX, callerID, id, action string) (*models.Task, error) {
	task, err := s.repomanager.Tasks(db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewNotFoundError(msgTaskNotFound)
		}
		return nil, fmt.Errorf("error loading task: %w", err)
	}
	if task.Owner != callerID {
		return nil, common.NewForbiddenError(fmt.Sprintf("You are not authorized to %s this task", action))
	}
	return task, nil
}

// GetByID returns one task. It fails with NotFound for unknown ids and
// Forbidden when the caller does not own the task.
func (s *TaskService) GetByID(ctx context.Context, callerID, id string) (*models.Task, error) {
	return s.loadOwned(ctx, s.repomanager.DB(), callerID, id, "view")
}

// diffTask applies in to task and describes every field that actually
// changed, in the fixed order title, description, status, priority.
func diffTask(task *models.Task, in UpdateTaskInput) []string {
	var changes []string
	record := func(field, from, to string) {
		changes = append(changes, fmt.Sprintf("%s from %q to %q", field, from, to))
	}

	if in.Title != nil && *in.Title != task.Title {
		record("title", task.Title, *in.Title)
		task.Title = *in.Title
	}
	if in.Description != nil && *in.Description != task.Description {
		record("description", task.Description, *in.Description)
		task.Description = *in.Description
	}
	if in.Status != nil && *in.Status != task.Status {
		record("status", string(task.Status), string(*in.Status))
		task.Status = *in.Status
	}
	if in.Priority != nil && *in.Priority != task.Priority {
		record("priority", string(task.Priority), string(*in.Priority))
		task.Priority = *in.Priority
	}
	return changes
}

// Update changes a task the caller owns. Exactly one "updated" activity is
// appended when at least one field changed; task-update is emitted always.
func (s *TaskService) Update(ctx context.Context, callerID, id string, in UpdateTaskInput) (*models.Task, error) {
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		in.Title = &t
	}

	var (
		task     *models.Task
		activity *models.Activity
	)

	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		task, err = s.loadOwned(ctx, tx, callerID, id, "update")
		if err != nil {
			return err
		}

		changes := diffTask(task, in)

		if task.Title == "" {
			return common.NewValidationError("Title is required")
		}
		if in.Title != nil {
			taken, err := s.repomanager.Tasks(tx).TitleExists(ctx, task.Title, task.ID)
			if err != nil {
				return fmt.Errorf("error checking title: %w", err)
			}
			if taken {
				return common.NewValidationError(msgTitleTaken)
			}
		}

		task, err = s.repomanager.Tasks(tx).Update(ctx, task)
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return common.NewValidationError(msgTitleTaken)
			}
			if errors.Is(err, common.ErrorNotFound) {
				return common.NewNotFoundError(msgTaskNotFound)
			}
			return fmt.Errorf("error updating task: %w", err)
		}

		if len(changes) > 0 {
			taskID := task.ID
			activity, err = s.activities.appendTx(ctx, tx, callerID, models.ActionUpdated,
				"Updated task's "+strings.Join(changes, ", "), &taskID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "task updated", "task_id", task.ID, "user_id", callerID, "changed", activity != nil)

	if activity != nil {
		publish(ctx, s.publisher, s.log, callerID, realtime.ActivityLogged{Activity: *activity})
	}
	publish(ctx, s.publisher, s.log, callerID, realtime.TaskUpdated{Task: *task})
	return task, nil
}

// Delete removes a task the caller owns and logs a "deleted" activity.
func (s *TaskService) Delete(ctx context.Context, callerID, id string) error {
	var activity *models.Activity

	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		task, err := s.loadOwned(ctx, tx, callerID, id, "delete")
		if err != nil {
			return err
		}

		if err := s.repomanager.Tasks(tx).Delete(ctx, task.ID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NewNotFoundError(msgTaskNotFound)
			}
			return fmt.Errorf("error deleting task: %w", err)
		}

		taskID := task.ID
		activity, err = s.activities.appendTx(ctx, tx, callerID, models.ActionDeleted,
			fmt.Sprintf("Deleted task titled %q", task.Title), &taskID)
		return err
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "task deleted", "task_id", id, "user_id", callerID)
	publish(ctx, s.publisher, s.log, callerID,
		realtime.ActivityLogged{Activity: *activity},
		realtime.TaskDeleted{ID: id},
	)
	return nil
}

// Stats returns the caller's status breakdown. Callers with no tasks get a
// not-found error.
func (s *TaskService) Stats(ctx context.Context, callerID string) (*models.TaskStats, error) {
	st, err := s.repomanager.Tasks(s.repomanager.DB()).Stats(ctx, callerID, s.now())
	if err != nil {
		return nil, fmt.Errorf("error computing stats: %w", err)
	}
	if st.Total == 0 {
		return nil, common.NewNotFoundError(MsgNoTaskStats)
	}
	return st, nil
}

// Upcoming lists non-completed tasks due within the next seven days.
func (s *TaskService) Upcoming(ctx context.Context, callerID string) ([]models.UpcomingTask, error) {
	now := s.now()
	out, err := s.repomanager.Tasks(s.repomanager.DB()).Upcoming(ctx, callerID, now, now.Add(upcomingWindow))
	if err != nil {
		return nil, fmt.Errorf("error listing upcoming tasks: %w", err)
	}
	return out, nil
}
