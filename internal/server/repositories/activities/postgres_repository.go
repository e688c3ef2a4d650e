package activities

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/tasksync/internal/dbx"
	"github.com/dmitrijs2005/tasksync/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Activity) (*models.Activity, error) {
	query :=
		`INSERT INTO activities (description, action, task_id, user_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`

	var taskID sql.NullString
	if a.TaskID != nil {
		taskID = sql.NullString{String: *a.TaskID, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query, a.Description, a.Action, taskID, a.UserID).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.Activity, error) {
	query :=
		`SELECT a.id, a.description, a.action, a.task_id, a.user_id, a.created_at, t.title, t.description
		 FROM activities a
		 LEFT JOIN tasks t ON t.id = a.task_id
		 WHERE a.user_id = $1
		 ORDER BY a.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.Activity{}
	for rows.Next() {
		var (
			a                    models.Activity
			taskID               sql.NullString
			taskTitle, taskDescr sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Description, &a.Action, &taskID, &a.UserID, &a.CreatedAt, &taskTitle, &taskDescr); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if taskID.Valid {
			id := taskID.String
			a.TaskID = &id
		}
		if taskTitle.Valid {
			a.Task = &models.ActivityTask{Title: taskTitle.String, Description: taskDescr.String}
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
