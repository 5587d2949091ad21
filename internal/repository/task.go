package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/motionhq/motion-go/internal/model"
)

var ErrTaskNotFound = errors.New("task not found")

// taskColumns selects task rows joined to their live parent project.
const taskColumns = `t.id, t.project_id, t.title, t.description, t.status,
	t.created_at, t.updated_at, p.name`

// taskOwnerJoin restricts task rows to live tasks under live projects owned
// by the requesting user. Ownership is transitive: task -> project -> user.
const taskOwnerJoin = `FROM tasks t
	JOIN projects p ON p.id = t.project_id AND p.deleted_at IS NULL
	WHERE t.deleted_at IS NULL AND p.user_id = ?`

// TaskRepository handles task persistence with ownership resolved through
// the parent project.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task, assigning its ID and timestamps. The caller is
// responsible for having verified project ownership first.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	task.ID = uuid.NewString()
	now := time.Now().UTC().Truncate(time.Millisecond)
	task.CreatedAt = now
	task.UpdatedAt = now

	query := `INSERT INTO tasks (id, project_id, title, description, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.ProjectID, task.Title, task.Description, string(task.Status),
		task.CreatedAt, task.UpdatedAt,
	)
	return err
}

// ListByProject retrieves live tasks of a project owned by the user, newest
// first, optionally filtered by status.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID, userID string, status model.TaskStatus) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` ` + taskOwnerJoin + ` AND t.project_id = ?`
	args := []any{userID, projectID}

	if status != "" {
		query += ` AND t.status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY t.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(
			&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status,
			&t.CreatedAt, &t.UpdatedAt, &t.ProjectName,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// GetForOwner retrieves a live task by ID, scoped to the owning user through
// the parent project.
func (r *TaskRepository) GetForOwner(ctx context.Context, taskID, userID string) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` ` + taskOwnerJoin + ` AND t.id = ?`

	t := &model.Task{}
	err := r.db.QueryRowContext(ctx, query, userID, taskID).Scan(
		&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status,
		&t.CreatedAt, &t.UpdatedAt, &t.ProjectName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	return t, nil
}

// Update persists title, description and status changes. The WHERE clause
// re-checks ownership so a stale read cannot update someone else's task.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task, userID string) error {
	task.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	query := `UPDATE tasks t
		JOIN projects p ON p.id = t.project_id AND p.deleted_at IS NULL
		SET t.title = ?, t.description = ?, t.status = ?, t.updated_at = ?
		WHERE t.id = ? AND t.deleted_at IS NULL AND p.user_id = ?`

	res, err := r.db.ExecContext(ctx, query,
		task.Title, task.Description, string(task.Status), task.UpdatedAt,
		task.ID, userID,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// SoftDelete marks a task deleted, scoped to the owning user.
func (r *TaskRepository) SoftDelete(ctx context.Context, taskID, userID string) error {
	now := time.Now().UTC().Truncate(time.Millisecond)

	query := `UPDATE tasks t
		JOIN projects p ON p.id = t.project_id AND p.deleted_at IS NULL
		SET t.deleted_at = ?
		WHERE t.id = ? AND t.deleted_at IS NULL AND p.user_id = ?`

	res, err := r.db.ExecContext(ctx, query, now, taskID, userID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}

	return nil
}
