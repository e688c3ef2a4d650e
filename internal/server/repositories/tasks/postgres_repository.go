package tasks

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/dbx"
	"github.com/dmitrijs2005/tasksync/internal/server/models"
)

const taskColumns = `id, title, description, status, priority, due_date, owner, tags, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	var (
		t    models.Task
		due  sql.NullTime
		tags []byte
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &due, &t.Owner, &tags, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	t.Tags = []string{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &t.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	return &t, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	tags, err := encodeTags(task.Tags)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO tasks (title, description, status, priority, due_date, owner, tags)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)
		 RETURNING id, created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, task.Status, task.Priority, nullTime(task.DueDate), task.Owner, tags).
		Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if _, ok := dbx.IsUniqueViolation(err); ok {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}
	return task, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		// A malformed id cannot name any task.
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidText(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

// likePattern escapes LIKE metacharacters so search is a plain substring match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func (r *PostgresRepository) List(ctx context.Context, owner string, filter models.TaskFilter) ([]models.Task, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE owner = $1`)
	args := []any{owner}

	if filter.Status != "" {
		args = append(args, filter.Status)
		fmt.Fprintf(&sb, ` AND status = $%d`, len(args))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		fmt.Fprintf(&sb, ` AND priority = $%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, likePattern(filter.Search))
		fmt.Fprintf(&sb, ` AND (title ILIKE $%d OR description ILIKE $%d)`, len(args), len(args))
	}
	sb.WriteString(` ORDER BY created_at DESC`)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	query :=
		`UPDATE tasks SET title = $2, description = $3, status = $4, priority = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.Title, task.Description, task.Status, task.Priority).
		Scan(&task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidText(err) {
			return nil, common.ErrorNotFound
		}
		if _, ok := dbx.IsUniqueViolation(err); ok {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return task, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		if dbx.IsInvalidText(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) TitleExists(ctx context.Context, title, excludeID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM tasks WHERE title = $1 AND id::text <> $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, title, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) Stats(ctx context.Context, owner string, now time.Time) (*models.TaskStats, error) {
	query :=
		`SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'in-progress'),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status <> 'completed' AND due_date IS NOT NULL AND due_date < $2)
		 FROM tasks
		 WHERE owner = $1`

	s := &models.TaskStats{}
	err := r.db.QueryRowContext(ctx, query, owner, now).
		Scan(&s.Total, &s.Completed, &s.InProgress, &s.Pending, &s.Overdue)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) Upcoming(ctx context.Context, owner string, from, to time.Time) ([]models.UpcomingTask, error) {
	query :=
		`SELECT title, due_date, status, priority
		 FROM tasks
		 WHERE owner = $1 AND status <> 'completed' AND due_date >= $2 AND due_date <= $3
		 ORDER BY due_date ASC`

	rows, err := r.db.QueryContext(ctx, query, owner, from, to)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.UpcomingTask{}
	for rows.Next() {
		var u models.UpcomingTask
		if err := rows.Scan(&u.Title, &u.DueDate, &u.Status, &u.Priority); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
