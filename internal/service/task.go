package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/motionhq/motion-go/internal/apperr"
	"github.com/motionhq/motion-go/internal/model"
	"github.com/motionhq/motion-go/internal/repository"
)

// TaskStore is the persistence contract for tasks.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	ListByProject(ctx context.Context, projectID, userID string, status model.TaskStatus) ([]model.Task, error)
	GetForOwner(ctx context.Context, taskID, userID string) (*model.Task, error)
	Update(ctx context.Context, task *model.Task, userID string) error
	SoftDelete(ctx context.Context, taskID, userID string) error
}

// TaskService guards all task operations by ownership of the parent project.
type TaskService struct {
	tasks    TaskStore
	projects ProjectStore
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks TaskStore, projects ProjectStore) *TaskService {
	return &TaskService{tasks: tasks, projects: projects}
}

// verifyProjectOwnership confirms the project is live and owned by the user.
// Creating tasks under someone else's project must fail the same way as
// under a nonexistent one.
func (s *TaskService) verifyProjectOwnership(ctx context.Context, projectID, userID string) (*model.Project, error) {
	project, err := s.projects.GetForOwner(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperr.NotFound("Project")
		}
		return nil, s.internal("verify project ownership", err)
	}
	return project, nil
}

// CreateTask creates a task under a project owned by the requesting user.
func (s *TaskService) CreateTask(ctx context.Context, userID string, req model.CreateTaskRequest) (model.TaskResponse, error) {
	project, err := s.verifyProjectOwnership(ctx, req.ProjectID, userID)
	if err != nil {
		return model.TaskResponse{}, err
	}

	status := model.TaskStatusTodo
	if req.Status != "" {
		status = model.TaskStatus(req.Status)
	}

	task := &model.Task{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		ProjectName: project.Name,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return model.TaskResponse{}, s.internal("create task", err)
	}

	return model.PublicTask(task), nil
}

// GetProjectTasks lists live tasks of a project owned by the user,
// optionally filtered by status.
func (s *TaskService) GetProjectTasks(ctx context.Context, projectID, userID string, status model.TaskStatus) ([]model.TaskResponse, error) {
	if status != "" && !status.Valid() {
		return nil, apperr.UnprocessableEntity("Validation failed", map[string][]string{
			"status": {"must be one of TODO, IN_PROGRESS, DONE, BLOCKED"},
		})
	}

	if _, err := s.verifyProjectOwnership(ctx, projectID, userID); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByProject(ctx, projectID, userID, status)
	if err != nil {
		return nil, s.internal("list tasks", err)
	}

	out := make([]model.TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, model.PublicTask(&tasks[i]))
	}
	return out, nil
}

// GetTaskByID fetches one task owned by the user through its project.
func (s *TaskService) GetTaskByID(ctx context.Context, taskID, userID string) (model.TaskResponse, error) {
	task, err := s.tasks.GetForOwner(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return model.TaskResponse{}, apperr.NotFound("Task")
		}
		return model.TaskResponse{}, s.internal("get task", err)
	}
	return model.PublicTask(task), nil
}

// UpdateTask applies a partial update to a task owned by the user.
func (s *TaskService) UpdateTask(ctx context.Context, taskID, userID string, req model.UpdateTaskRequest) (model.TaskResponse, error) {
	task, err := s.tasks.GetForOwner(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return model.TaskResponse{}, apperr.NotFound("Task")
		}
		return model.TaskResponse{}, s.internal("update task: fetch", err)
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = model.TaskStatus(*req.Status)
	}

	if err := s.tasks.Update(ctx, task, userID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return model.TaskResponse{}, apperr.NotFound("Task")
		}
		return model.TaskResponse{}, s.internal("update task: save", err)
	}

	return model.PublicTask(task), nil
}

// UpdateTaskStatus changes only the status of a task owned by the user.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, taskID, userID string, status model.TaskStatus) (model.TaskResponse, error) {
	task, err := s.tasks.GetForOwner(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return model.TaskResponse{}, apperr.NotFound("Task")
		}
		return model.TaskResponse{}, s.internal("update task status: fetch", err)
	}

	task.Status = status
	if err := s.tasks.Update(ctx, task, userID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return model.TaskResponse{}, apperr.NotFound("Task")
		}
		return model.TaskResponse{}, s.internal("update task status: save", err)
	}

	return model.PublicTask(task), nil
}

// DeleteTask soft-deletes a task owned by the user.
func (s *TaskService) DeleteTask(ctx context.Context, taskID, userID string) (string, error) {
	if err := s.tasks.SoftDelete(ctx, taskID, userID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return "", apperr.NotFound("Task")
		}
		return "", s.internal("delete task", err)
	}
	return "Task deleted successfully", nil
}

func (s *TaskService) internal(op string, err error) error {
	slog.Error("task service failure", "op", op, "error", err)
	return apperr.Internal()
}
