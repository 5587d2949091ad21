package model

import "time"

// TaskStatus enumerates the allowed task states.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
	TaskStatusBlocked    TaskStatus = "BLOCKED"
)

// Valid reports whether s is one of the allowed status values.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone, TaskStatusBlocked:
		return true
	}
	return false
}

// Task belongs to a project; ownership is transitive through the project's
// user.
type Task struct {
	ID          string
	ProjectID   string
	Title       string
	Description string
	Status      TaskStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time

	// ProjectName is the parent project's name, populated on reads.
	ProjectName string
}

// CreateTaskRequest represents a task creation request.
type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Status      string `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE BLOCKED"`
	ProjectID   string `json:"projectId" validate:"required,uuid4"`
}

// UpdateTaskRequest represents a partial task update.
type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Status      *string `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE BLOCKED"`
}

// UpdateTaskStatusRequest updates only the status field.
type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=TODO IN_PROGRESS DONE BLOCKED"`
}

// TaskProjectRef is the embedded parent-project summary in task responses.
type TaskProjectRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TaskResponse is the task shape for API responses.
type TaskResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      TaskStatus     `json:"status"`
	Project     TaskProjectRef `json:"project"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// PublicTask converts a task row to its response shape.
func PublicTask(t *Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Project:     TaskProjectRef{ID: t.ProjectID, Name: t.ProjectName},
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
