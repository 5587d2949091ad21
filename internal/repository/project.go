package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/motionhq/motion-go/internal/model"
)

var ErrProjectNotFound = errors.New("project not found")

// projectColumns selects project rows with their live-task counts.
const projectColumns = `p.id, p.user_id, p.name, p.description, p.created_at, p.updated_at,
	(SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id AND t.deleted_at IS NULL)`

// ProjectRepository handles project persistence. Every query is scoped by the
// owning user's ID and excludes soft-deleted rows, so a wrong owner and a
// wrong ID are indistinguishable.
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a new project, assigning its ID and timestamps.
func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	project.ID = uuid.NewString()
	now := time.Now().UTC().Truncate(time.Millisecond)
	project.CreatedAt = now
	project.UpdatedAt = now

	query := `INSERT INTO projects (id, user_id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		project.ID, project.UserID, project.Name, project.Description,
		project.CreatedAt, project.UpdatedAt,
	)
	return err
}

// ListByOwner retrieves all live projects owned by a user, newest first.
func (r *ProjectRepository) ListByOwner(ctx context.Context, userID string) ([]model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects p
		WHERE p.user_id = ? AND p.deleted_at IS NULL
		ORDER BY p.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Name, &p.Description,
			&p.CreatedAt, &p.UpdatedAt, &p.TaskCount,
		); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

// GetForOwner retrieves a live project by ID, scoped to the owning user.
func (r *ProjectRepository) GetForOwner(ctx context.Context, projectID, userID string) (*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects p
		WHERE p.id = ? AND p.user_id = ? AND p.deleted_at IS NULL`

	p := &model.Project{}
	err := r.db.QueryRowContext(ctx, query, projectID, userID).Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description,
		&p.CreatedAt, &p.UpdatedAt, &p.TaskCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	return p, nil
}

// Update persists name and description changes, scoped to the owning user.
func (r *ProjectRepository) Update(ctx context.Context, project *model.Project) error {
	project.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	query := `UPDATE projects SET name = ?, description = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query,
		project.Name, project.Description, project.UpdatedAt,
		project.ID, project.UserID,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProjectNotFound
	}

	return nil
}

// SoftDeleteCascade soft-deletes a project and all of its live tasks in one
// transaction. Both writes commit or neither does; there is no state with a
// deleted project and live tasks.
func (r *ProjectRepository) SoftDeleteCascade(ctx context.Context, projectID, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Truncate(time.Millisecond)

	res, err := tx.ExecContext(ctx,
		`UPDATE projects SET deleted_at = ? WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		now, projectID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProjectNotFound
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE tasks SET deleted_at = ? WHERE project_id = ? AND deleted_at IS NULL`,
		now, projectID)
	if err != nil {
		return err
	}

	return tx.Commit()
}
