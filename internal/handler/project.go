package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/motionhq/motion-go/internal/middleware"
	"github.com/motionhq/motion-go/internal/model"
	"github.com/motionhq/motion-go/internal/service"
)

// ProjectHandler handles HTTP requests for project CRUD.
type ProjectHandler struct {
	service *service.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(svc *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: svc}
}

// HandleCreate handles POST /api/v1/projects.
func (h *ProjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req model.CreateProjectRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.service.CreateProject(r.Context(), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, resp, "Project created successfully")
}

// HandleList handles GET /api/v1/projects.
func (h *ProjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	resp, err := h.service.GetUserProjects(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, resp, "")
}

// HandleGet handles GET /api/v1/projects/{projectID}.
func (h *ProjectHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	resp, err := h.service.GetProjectByID(r.Context(), chi.URLParam(r, "projectID"), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, resp, "")
}

// HandleUpdate handles PUT /api/v1/projects/{projectID}.
func (h *ProjectHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req model.UpdateProjectRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.service.UpdateProject(r.Context(), chi.URLParam(r, "projectID"), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, resp, "Project updated successfully")
}

// HandleDelete handles DELETE /api/v1/projects/{projectID}.
func (h *ProjectHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	msg, err := h.service.DeleteProject(r.Context(), chi.URLParam(r, "projectID"), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, nil, msg)
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorEnvelope{
		Success: false,
		Error:   errorBody{Message: "Unauthorized", StatusCode: http.StatusUnauthorized},
	})
}
