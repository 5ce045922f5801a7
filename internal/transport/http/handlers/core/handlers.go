package corehandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"teamdesk/internal/domain/access"
	"teamdesk/internal/domain/audit"
	"teamdesk/internal/domain/auth"
	"teamdesk/internal/domain/core"
	"teamdesk/internal/domain/notifications"
	"teamdesk/internal/transport/http/api"
	"teamdesk/internal/transport/http/middleware"
	"teamdesk/internal/transport/http/shared"
)

type Handler struct {
	Store  *core.Store
	Audit  *audit.Service
	Notify *notifications.Service
}

func NewHandler(store *core.Store, auditSvc *audit.Service, notify *notifications.Service) *Handler {
	return &Handler{Store: store, Audit: auditSvc, Notify: notify}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.With(middleware.RequireMinRole(access.RoleTeamLead)).Get("/", h.handleListUsers)
		r.With(middleware.RequireRoles(access.RoleHR, access.RoleDeptAdmin, access.RoleOrgAdmin, access.RoleSuperAdmin)).Post("/", h.handleCreateUser)
		r.Get("/me", h.handleGetSelf)
		r.Get("/{userID}", h.handleGetUser)
		r.Patch("/{userID}", h.handleUpdateProfile)
		r.Patch("/{userID}/role", h.handleUpdateRole)
		r.Patch("/{userID}/department", h.handleUpdateDepartment)
		r.Patch("/{userID}/status", h.handleUpdateStatus)
	})

	r.Route("/departments", func(r chi.Router) {
		r.Get("/", h.handleListDepartments)
		r.With(middleware.RequireMinRole(access.RoleOrgAdmin)).Post("/", h.handleCreateDepartment)
	})
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	departmentID := r.URL.Query().Get("departmentId")
	// DEPT_ADMIN and below only see their own department.
	if ok, err := access.AtLeast(user.Role, access.RoleOrgAdmin); err != nil || !ok {
		departmentID = user.DepartmentID
	}

	page := shared.ParsePagination(r, 50, 200)
	users, err := h.Store.ListUsers(r.Context(), user.TenantID, departmentID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "users_list_failed", "failed to list users", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, users, middleware.GetRequestID(r.Context()))
}

type createUserRequest struct {
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Role         string `json:"role"`
	DepartmentID string `json:"departmentId"`
	Password     string `json:"password"`
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("email", payload.Email, "email is required")
	v.Required("firstName", payload.FirstName, "first name is required")
	v.Required("lastName", payload.LastName, "last name is required")
	v.Required("password", payload.Password, "password is required")
	role, roleErr := access.ParseRole(payload.Role)
	if roleErr != nil {
		v.Add("role", "must be a known role")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	// Nobody provisions an account above their own rank.
	if ok, err := access.AtLeast(user.Role, role); err != nil || !ok {
		api.Fail(w, http.StatusForbidden, "forbidden", "not permitted", middleware.GetRequestID(r.Context()))
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to create user", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Store.CreateUser(r.Context(), user.TenantID, core.User{
		Email:        strings.ToLower(strings.TrimSpace(payload.Email)),
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
		Role:         role,
		DepartmentID: payload.DepartmentID,
		Active:       true,
	}, hash)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to create user", middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, user, "core.user.create", "user", id, nil, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetSelf(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	target, err := h.Store.GetUser(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "user_not_found", "user not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, target, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, target, ok := h.loadTarget(w, r)
	if !ok {
		return
	}

	if target.ID != user.UserID {
		dec, err := access.Authorize(user.Actor(), access.OpManage, target.RecordContext())
		if err != nil || !dec.Allowed {
			h.deny(w, r, user, dec, err)
			return
		}
	}
	api.Success(w, target, middleware.GetRequestID(r.Context()))
}

type updateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, target, ok := h.loadTarget(w, r)
	if !ok {
		return
	}

	op := access.OpEditOwn
	if target.ID != user.UserID {
		op = access.OpManage
	}
	dec, err := access.Authorize(user.Actor(), op, target.RecordContext())
	if err != nil || !dec.Allowed {
		h.deny(w, r, user, dec, err)
		return
	}

	var payload updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("firstName", payload.FirstName, "first name is required")
	v.Required("lastName", payload.LastName, "last name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Store.UpdateUserProfile(r.Context(), user.TenantID, target.ID, payload.FirstName, payload.LastName); err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_update_failed", "failed to update user", middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, user, "core.user.update", "user", target.ID, target, payload)
	api.Success(w, map[string]string{"id": target.ID}, middleware.GetRequestID(r.Context()))
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	user, target, ok := h.loadTarget(w, r)
	if !ok {
		return
	}

	dec, err := access.Authorize(user.Actor(), access.OpManage, target.RecordContext())
	if err != nil || !dec.Allowed {
		h.deny(w, r, user, dec, err)
		return
	}

	var payload updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	newRole, err := access.ParseRole(payload.Role)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_role", "unknown role", middleware.GetRequestID(r.Context()))
		return
	}

	// Promotions are capped at the actor's own rank.
	if ok, err := access.AtLeast(user.Role, newRole); err != nil || !ok {
		api.Fail(w, http.StatusForbidden, "forbidden", "not permitted", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Store.UpdateUserRole(r.Context(), user.TenantID, target.ID, string(newRole)); err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_update_failed", "failed to update role", middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, user, "core.user.role", "user", target.ID, map[string]string{"role": string(target.Role)}, payload)
	if err := h.Notify.Notify(r.Context(), user.TenantID, target.ID, notifications.TypeRoleChanged, "Your role changed", "Your role is now "+string(newRole)); err != nil {
		slog.Warn("role change notification failed", "err", err)
	}
	api.Success(w, map[string]string{"id": target.ID, "role": string(newRole)}, middleware.GetRequestID(r.Context()))
}

type updateDepartmentRequest struct {
	DepartmentID string `json:"departmentId"`
}

func (h *Handler) handleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	user, target, ok := h.loadTarget(w, r)
	if !ok {
		return
	}

	dec, err := access.Authorize(user.Actor(), access.OpManage, target.RecordContext())
	if err != nil || !dec.Allowed {
		h.deny(w, r, user, dec, err)
		return
	}

	var payload updateDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Store.UpdateUserDepartment(r.Context(), user.TenantID, target.ID, payload.DepartmentID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_update_failed", "failed to update department", middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, user, "core.user.department", "user", target.ID, map[string]string{"departmentId": target.DepartmentID}, payload)
	api.Success(w, map[string]string{"id": target.ID}, middleware.GetRequestID(r.Context()))
}

type updateStatusRequest struct {
	Active bool `json:"isActive"`
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, target, ok := h.loadTarget(w, r)
	if !ok {
		return
	}

	// Deactivating yourself would lock the account mid-session.
	if target.ID == user.UserID {
		api.Fail(w, http.StatusForbidden, "forbidden", "not permitted", middleware.GetRequestID(r.Context()))
		return
	}

	dec, err := access.Authorize(user.Actor(), access.OpManage, target.RecordContext())
	if err != nil || !dec.Allowed {
		h.deny(w, r, user, dec, err)
		return
	}

	var payload updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Store.SetUserActive(r.Context(), user.TenantID, target.ID, payload.Active); err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_update_failed", "failed to update status", middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, user, "core.user.status", "user", target.ID, map[string]bool{"isActive": target.Active}, payload)
	api.Success(w, map[string]any{"id": target.ID, "isActive": payload.Active}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	departments, err := h.Store.ListDepartments(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "departments_list_failed", "failed to list departments", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, departments, middleware.GetRequestID(r.Context()))
}

type createDepartmentRequest struct {
	Name      string `json:"name"`
	ManagerID string `json:"managerId"`
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload createDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Store.CreateDepartment(r.Context(), user.TenantID, payload.Name, payload.ManagerID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_create_failed", "failed to create department", middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, user, "core.department.create", "department", id, nil, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) loadTarget(w http.ResponseWriter, r *http.Request) (auth.UserContext, core.User, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return auth.UserContext{}, core.User{}, false
	}

	target, err := h.Store.GetUser(r.Context(), user.TenantID, chi.URLParam(r, "userID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "user_not_found", "user not found", middleware.GetRequestID(r.Context()))
		return auth.UserContext{}, core.User{}, false
	}
	return user, target, true
}

func (h *Handler) deny(w http.ResponseWriter, r *http.Request, user auth.UserContext, dec access.Decision, err error) {
	if err != nil {
		slog.Error("authorization failed", "err", err, "requestId", middleware.GetRequestID(r.Context()))
		api.Fail(w, http.StatusInternalServerError, "authz_error", "permission check failed", middleware.GetRequestID(r.Context()))
		return
	}
	slog.Info("record access denied",
		"reason", string(dec.Reason),
		"userId", user.UserID,
		"path", r.URL.Path,
		"requestId", middleware.GetRequestID(r.Context()),
	)
	api.Fail(w, http.StatusForbidden, "forbidden", "not permitted", middleware.GetRequestID(r.Context()))
}

func (h *Handler) recordAudit(r *http.Request, user auth.UserContext, action, entityType, entityID string, before, after any) {
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, action, entityType, entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
