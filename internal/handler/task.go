package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/motionhq/motion-go/internal/middleware"
	"github.com/motionhq/motion-go/internal/model"
	"github.com/motionhq/motion-go/internal/service"
)

// TaskHandler handles HTTP requests for task CRUD.
type TaskHandler struct {
	service *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{service: svc}
}

// HandleCreate handles POST /api/v1/tasks.
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req model.CreateTaskRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.service.CreateTask(r.Context(), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, resp, "Task created successfully")
}

// HandleListByProject handles GET /api/v1/projects/{projectID}/tasks.
// Supports an optional ?status= filter.
func (h *TaskHandler) HandleListByProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	status := model.TaskStatus(r.URL.Query().Get("status"))

	resp, err := h.service.GetProjectTasks(r.Context(), chi.URLParam(r, "projectID"), userID, status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, resp, "")
}

// HandleGet handles GET /api/v1/tasks/{taskID}.
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	resp, err := h.service.GetTaskByID(r.Context(), chi.URLParam(r, "taskID"), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, resp, "")
}

// HandleUpdate handles PUT /api/v1/tasks/{taskID}.
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req model.UpdateTaskRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.service.UpdateTask(r.Context(), chi.URLParam(r, "taskID"), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, resp, "Task updated successfully")
}

// HandleUpdateStatus handles PATCH /api/v1/tasks/{taskID}/status.
func (h *TaskHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req model.UpdateTaskStatusRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.service.UpdateTaskStatus(r.Context(), chi.URLParam(r, "taskID"), userID, model.TaskStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, resp, "Task status updated successfully")
}

// HandleDelete handles DELETE /api/v1/tasks/{taskID}.
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	msg, err := h.service.DeleteTask(r.Context(), chi.URLParam(r, "taskID"), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, nil, msg)
}
