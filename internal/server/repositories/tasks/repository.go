// Package tasks stores task records. Ownership checks live in the service
// layer; the repository only scopes list/stat queries by owner.
package tasks

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/server/models"
)

type Repository interface {
	// Create fills ID and timestamps. A clashing title yields common.ErrorAlreadyExists.
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id string) (*models.Task, error)
	// List returns owner's tasks matching filter, newest first.
	List(ctx context.Context, owner string, filter models.TaskFilter) ([]models.Task, error)
	// Update persists title, description, status and priority.
	Update(ctx context.Context, task *models.Task) (*models.Task, error)
	Delete(ctx context.Context, id string) error
	// TitleExists reports whether another task (id != excludeID) uses title.
	TitleExists(ctx context.Context, title, excludeID string) (bool, error)
	Stats(ctx context.Context, owner string, now time.Time) (*models.TaskStats, error)
	// Upcoming returns non-completed tasks due within [from, to], soonest first.
	Upcoming(ctx context.Context, owner string, from, to time.Time) ([]models.UpcomingTask, error)
}
