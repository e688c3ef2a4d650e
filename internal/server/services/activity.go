package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tasksync/internal/dbx"
	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/dmitrijs2005/tasksync/internal/server/models"
	"github.com/dmitrijs2005/tasksync/internal/server/realtime"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/repomanager"
)

// ActivityService owns the append-only activity log.
type ActivityService struct {
	repomanager repomanager.RepositoryManager
	publisher   Publisher
	log         logging.Logger
}

// NewActivityService returns a service appending to the log in m and
// announcing each entry through p.
func NewActivityService(m repomanager.RepositoryManager, p Publisher, log logging.Logger) *ActivityService {
	return &ActivityService{repomanager: m, publisher: p, log: log.With("module", "activities")}
}

// appendTx writes one activity through tx. The caller publishes it after commit.
func (s *ActivityService) appendTx(ctx context.Context, tx dbx.DBTX, userID string, action models.ActivityAction, description string, taskID *string) (*models.Activity, error) {
	a := &models.Activity{
		Description: description,
		Action:      action,
		TaskID:      taskID,
		UserID:      userID,
	}
	out, err := s.repomanager.Activities(tx).Create(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("error appending activity: %w", err)
	}
	return out, nil
}

// Record appends an activity outside any task mutation (login, logout) and
// broadcasts it as new-activity.
func (s *ActivityService) Record(ctx context.Context, userID string, action models.ActivityAction, description string) (*models.Activity, error) {
	a, err := s.appendTx(ctx, s.repomanager.DB(), userID, action, description, nil)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.publisher, s.log, userID, realtime.ActivityLogged{Activity: *a})
	return a, nil
}

// List returns the caller's activities newest first.
func (s *ActivityService) List(ctx context.Context, userID string) ([]models.Activity, error) {
	out, err := s.repomanager.Activities(s.repomanager.DB()).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing activities: %w", err)
	}
	return out, nil
}

// Clear deletes all of the caller's activities.
func (s *ActivityService) Clear(ctx context.Context, userID string) (int64, error) {
	n, err := s.repomanager.Activities(s.repomanager.DB()).DeleteByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("error clearing activities: %w", err)
	}
	s.log.Info(ctx, "activity log cleared", "user_id", userID, "deleted", n)
	return n, nil
}
