// Package activities persists the append-only activity log.
package activities

import (
	"context"

	"github.com/dmitrijs2005/tasksync/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, a *models.Activity) (*models.Activity, error)
	// ListByUser returns the user's activities newest first, with Task
	// populated when the referenced task still exists.
	ListByUser(ctx context.Context, userID string) ([]models.Activity, error)
	// DeleteByUser removes every activity of the user and returns the count.
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}
