package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/motionhq/motion-go/internal/apperr"
	"github.com/motionhq/motion-go/internal/model"
	"github.com/motionhq/motion-go/internal/repository"
)

// ProjectStore is the persistence contract for projects.
type ProjectStore interface {
	Create(ctx context.Context, project *model.Project) error
	ListByOwner(ctx context.Context, userID string) ([]model.Project, error)
	GetForOwner(ctx context.Context, projectID, userID string) (*model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	SoftDeleteCascade(ctx context.Context, projectID, userID string) error
}

// ProjectService guards all project operations by the requesting user's
// ownership. A project that exists but belongs to someone else is reported
// exactly like one that does not exist.
type ProjectService struct {
	projects ProjectStore
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projects ProjectStore) *ProjectService {
	return &ProjectService{projects: projects}
}

// CreateProject creates a project owned by the requesting user.
func (s *ProjectService) CreateProject(ctx context.Context, userID string, req model.CreateProjectRequest) (model.ProjectResponse, error) {
	project := &model.Project{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return model.ProjectResponse{}, s.internal("create project", err)
	}
	return model.PublicProject(project), nil
}

// GetUserProjects lists the requesting user's live projects.
func (s *ProjectService) GetUserProjects(ctx context.Context, userID string) ([]model.ProjectResponse, error) {
	projects, err := s.projects.ListByOwner(ctx, userID)
	if err != nil {
		return nil, s.internal("list projects", err)
	}

	out := make([]model.ProjectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, model.PublicProject(&projects[i]))
	}
	return out, nil
}

// GetProjectByID fetches one project owned by the requesting user.
func (s *ProjectService) GetProjectByID(ctx context.Context, projectID, userID string) (model.ProjectResponse, error) {
	project, err := s.projects.GetForOwner(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return model.ProjectResponse{}, apperr.NotFound("Project")
		}
		return model.ProjectResponse{}, s.internal("get project", err)
	}
	return model.PublicProject(project), nil
}

// UpdateProject applies a partial update to a project owned by the user.
func (s *ProjectService) UpdateProject(ctx context.Context, projectID, userID string, req model.UpdateProjectRequest) (model.ProjectResponse, error) {
	project, err := s.projects.GetForOwner(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return model.ProjectResponse{}, apperr.NotFound("Project")
		}
		return model.ProjectResponse{}, s.internal("update project: fetch", err)
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}

	if err := s.projects.Update(ctx, project); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return model.ProjectResponse{}, apperr.NotFound("Project")
		}
		return model.ProjectResponse{}, s.internal("update project: save", err)
	}

	return model.PublicProject(project), nil
}

// DeleteProject soft-deletes a project and all of its live tasks atomically.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID, userID string) (string, error) {
	if err := s.projects.SoftDeleteCascade(ctx, projectID, userID); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return "", apperr.NotFound("Project")
		}
		return "", s.internal("delete project", err)
	}
	return "Project deleted successfully", nil
}

func (s *ProjectService) internal(op string, err error) error {
	slog.Error("project service failure", "op", op, "error", err)
	return apperr.Internal()
}
