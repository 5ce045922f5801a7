package projecthandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"teamdesk/internal/domain/access"
	"teamdesk/internal/domain/audit"
	"teamdesk/internal/domain/auth"
	"teamdesk/internal/domain/core"
	"teamdesk/internal/domain/notifications"
	"teamdesk/internal/domain/projects"
	"teamdesk/internal/transport/http/api"
	"teamdesk/internal/transport/http/middleware"
	"teamdesk/internal/transport/http/shared"
)

type Handler struct {
	Service *projects.Service
	Users   *core.Store
	Audit   *audit.Service
	Notify  *notifications.Service
}

func NewHandler(svc *projects.Service, users *core.Store, auditSvc *audit.Service, notify *notifications.Service) *Handler {
	return &Handler{Service: svc, Users: users, Audit: auditSvc, Notify: notify}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/projects", func(r chi.Router) {
		r.Get("/", h.handleListProjects)
		r.With(middleware.RequireMinRole(access.RoleTeamLead)).Post("/", h.handleCreateProject)
		r.Get("/{projectID}/board", h.handleBoard)
		r.Post("/{projectID}/tasks", h.handleCreateTask)
		r.With(middleware.RequireMinRole(access.RoleTeamLead)).Post("/{projectID}/archive", h.handleArchiveProject)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Patch("/{taskID}", h.handleUpdateTask)
		r.Post("/{taskID}/move", h.handleMoveTask)
	})
}

func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	list, err := h.Service.Store.ListProjects(r.Context(), user.TenantID, r.URL.Query().Get("departmentId"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "projects_list_failed", "failed to list projects", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

type createProjectRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	DepartmentID string `json:"departmentId"`
}

func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	departmentID := payload.DepartmentID
	if departmentID == "" {
		departmentID = user.DepartmentID
	}

	id, err := h.Service.Store.CreateProject(r.Context(), user.TenantID, projects.Project{
		Name:         payload.Name,
		Description:  payload.Description,
		DepartmentID: departmentID,
		OwnerID:      user.UserID,
		Status:       projects.ProjectActive,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "project_create_failed", "failed to create project", middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, user, "projects.create", "project", id, nil, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBoard(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	board, err := h.Service.Board(r.Context(), user.TenantID, chi.URLParam(r, "projectID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "board_failed", "failed to load board", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, board, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleArchiveProject(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	projectID := chi.URLParam(r, "projectID")
	project, err := h.Service.Store.GetProject(r.Context(), user.TenantID, projectID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "project_not_found", "project not found", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.Store.ArchiveProject(r.Context(), user.TenantID, projectID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "project_archive_failed", "failed to archive project", middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, user, "projects.archive", "project", projectID, map[string]string{"status": project.Status}, map[string]string{"status": projects.ProjectArchived})
	api.Success(w, map[string]string{"id": projectID, "status": projects.ProjectArchived}, middleware.GetRequestID(r.Context()))
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	AssigneeID  string `json:"assigneeId"`
	DueDate     string `json:"dueDate"`
}

func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	projectID := chi.URLParam(r, "projectID")
	project, err := h.Service.Store.GetProject(r.Context(), user.TenantID, projectID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "project_not_found", "project not found", middleware.GetRequestID(r.Context()))
		return
	}
	if project.Status != projects.ProjectActive {
		api.Fail(w, http.StatusConflict, "project_archived", "project is archived", middleware.GetRequestID(r.Context()))
		return
	}

	var payload createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("title", payload.Title, "title is required")
	if payload.Priority == "" {
		payload.Priority = projects.PriorityMedium
	}
	if !projects.ValidPriority(payload.Priority) {
		v.Add("priority", "must be one of low, medium, high")
	}
	var dueDate *time.Time
	if payload.DueDate != "" {
		if parsed, ok := v.Date("dueDate", payload.DueDate); ok {
			dueDate = &parsed
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.Store.CreateTask(r.Context(), projects.Task{
		ProjectID:   projectID,
		Title:       payload.Title,
		Description: payload.Description,
		Status:      projects.StatusTodo,
		Priority:    payload.Priority,
		AssigneeID:  payload.AssigneeID,
		ReporterID:  user.UserID,
		DueDate:     dueDate,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "task_create_failed", "failed to create task", middleware.GetRequestID(r.Context()))
		return
	}

	if payload.AssigneeID != "" && payload.AssigneeID != user.UserID {
		if err := h.Notify.Notify(r.Context(), user.TenantID, payload.AssigneeID, notifications.TypeTaskAssigned, "Task assigned", payload.Title); err != nil {
			slog.Warn("task assignment notification failed", "err", err)
		}
	}
	h.recordAudit(r, user, "projects.task.create", "task", id, nil, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

type updateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	AssigneeID  string `json:"assigneeId"`
}

func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	user, task, project, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	if !h.authorizeTask(w, r, user, task, project) {
		return
	}

	var payload updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("title", payload.Title, "title is required")
	if !projects.ValidPriority(payload.Priority) {
		v.Add("priority", "must be one of low, medium, high")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Service.Store.UpdateTask(r.Context(), task.ID, payload.Title, payload.Description, payload.Priority, payload.AssigneeID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "task_update_failed", "failed to update task", middleware.GetRequestID(r.Context()))
		return
	}

	if payload.AssigneeID != "" && payload.AssigneeID != task.AssigneeID && payload.AssigneeID != user.UserID {
		if err := h.Notify.Notify(r.Context(), user.TenantID, payload.AssigneeID, notifications.TypeTaskAssigned, "Task assigned", payload.Title); err != nil {
			slog.Warn("task assignment notification failed", "err", err)
		}
	}
	h.recordAudit(r, user, "projects.task.update", "task", task.ID, task, payload)
	api.Success(w, map[string]string{"id": task.ID}, middleware.GetRequestID(r.Context()))
}

type moveTaskRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleMoveTask(w http.ResponseWriter, r *http.Request) {
	user, task, project, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	if !h.authorizeTask(w, r, user, task, project) {
		return
	}

	var payload moveTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	moved, err := h.Service.MoveTask(r.Context(), user.TenantID, task.ID, payload.Status)
	if err != nil {
		switch {
		case errors.Is(err, projects.ErrInvalidStatus):
			api.Fail(w, http.StatusBadRequest, "invalid_status", "unknown task status", middleware.GetRequestID(r.Context()))
		case errors.Is(err, projects.ErrInvalidTransition):
			api.Fail(w, http.StatusConflict, "invalid_transition", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "task_move_failed", "failed to move task", middleware.GetRequestID(r.Context()))
		}
		return
	}

	h.recordAudit(r, user, "projects.task.move", "task", task.ID, map[string]string{"status": task.Status}, map[string]string{"status": moved.Status})
	api.Success(w, moved, middleware.GetRequestID(r.Context()))
}

func (h *Handler) loadTask(w http.ResponseWriter, r *http.Request) (auth.UserContext, projects.Task, projects.Project, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return auth.UserContext{}, projects.Task{}, projects.Project{}, false
	}

	task, err := h.Service.Store.GetTask(r.Context(), user.TenantID, chi.URLParam(r, "taskID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "task_not_found", "task not found", middleware.GetRequestID(r.Context()))
		return auth.UserContext{}, projects.Task{}, projects.Project{}, false
	}
	project, err := h.Service.Store.GetProject(r.Context(), user.TenantID, task.ProjectID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "project_not_found", "project not found", middleware.GetRequestID(r.Context()))
		return auth.UserContext{}, projects.Task{}, projects.Project{}, false
	}
	return user, task, project, true
}

// authorizeTask lets the task's owner edit it directly; anyone else goes
// through the management rules against the project's department.
func (h *Handler) authorizeTask(w http.ResponseWriter, r *http.Request, user auth.UserContext, task projects.Task, project projects.Project) bool {
	ownerID := task.AssigneeID
	if ownerID == "" {
		ownerID = task.ReporterID
	}

	op := access.OpEditOwn
	if ownerID != user.UserID {
		op = access.OpManage
	}

	ownerRole := user.Role
	if ownerID != user.UserID {
		owner, err := h.Users.GetUser(r.Context(), user.TenantID, ownerID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "authz_error", "permission check failed", middleware.GetRequestID(r.Context()))
			return false
		}
		ownerRole = owner.Role
	}

	dec, err := access.Authorize(user.Actor(), op, projects.TaskRecordContext(task, project, ownerRole))
	if err != nil {
		slog.Error("authorization failed", "err", err, "requestId", middleware.GetRequestID(r.Context()))
		api.Fail(w, http.StatusInternalServerError, "authz_error", "permission check failed", middleware.GetRequestID(r.Context()))
		return false
	}
	if !dec.Allowed {
		slog.Info("record access denied",
			"reason", string(dec.Reason),
			"userId", user.UserID,
			"path", r.URL.Path,
			"requestId", middleware.GetRequestID(r.Context()),
		)
		api.Fail(w, http.StatusForbidden, "forbidden", "not permitted", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

func (h *Handler) recordAudit(r *http.Request, user auth.UserContext, action, entityType, entityID string, before, after any) {
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, action, entityType, entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
