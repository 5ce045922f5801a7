package leavehandler

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
	"teamdesk/internal/domain/leave"
	"teamdesk/internal/domain/notifications"
	"teamdesk/internal/transport/http/api"
	"teamdesk/internal/transport/http/middleware"
	"teamdesk/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
	Users   *core.Store
	Audit   *audit.Service
	Notify  *notifications.Service
}

func NewHandler(svc *leave.Service, users *core.Store, auditSvc *audit.Service, notify *notifications.Service) *Handler {
	return &Handler{Service: svc, Users: users, Audit: auditSvc, Notify: notify}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.Get("/types", h.handleListTypes)
		r.With(middleware.RequireRoles(access.RoleHR, access.RoleOrgAdmin, access.RoleSuperAdmin)).Post("/types", h.handleCreateType)

		r.Get("/requests", h.handleListRequests)
		r.Post("/requests", h.handleSubmit)
		r.Patch("/requests/{requestID}", h.handleAmend)
		r.Post("/requests/{requestID}/approve", h.handleApprove)
		r.Post("/requests/{requestID}/reject", h.handleReject)
		r.Post("/requests/{requestID}/cancel", h.handleCancel)
	})
}

func (h *Handler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	types, err := h.Service.Store.ListTypes(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_types_failed", "failed to list leave types", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, types, middleware.GetRequestID(r.Context()))
}

type createTypeRequest struct {
	Name   string `json:"name"`
	Code   string `json:"code"`
	IsPaid bool   `json:"isPaid"`
}

func (h *Handler) handleCreateType(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload createTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.Required("code", payload.Code, "code is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.Store.CreateType(r.Context(), user.TenantID, leave.LeaveType{
		Name:   payload.Name,
		Code:   payload.Code,
		IsPaid: payload.IsPaid,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_type_create_failed", "failed to create leave type", middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, user, "leave.type.create", "leave_type", id, nil, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	userID := r.URL.Query().Get("userId")
	departmentID := r.URL.Query().Get("departmentId")
	// Non-approvers only see their own requests.
	if !access.IsApprover(user.Role) {
		userID = user.UserID
		departmentID = ""
	}

	page := shared.ParsePagination(r, 50, 200)
	requests, err := h.Service.Store.ListRequests(r.Context(), user.TenantID, userID, departmentID, r.URL.Query().Get("status"), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_list_failed", "failed to list leave requests", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, requests, middleware.GetRequestID(r.Context()))
}

type submitRequest struct {
	LeaveTypeID string `json:"leaveTypeId"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	StartHalf   bool   `json:"startHalf"`
	EndHalf     bool   `json:"endHalf"`
	Reason      string `json:"reason"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload submitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	start, end, ok := h.validateDates(w, r, payload.LeaveTypeID, payload.StartDate, payload.EndDate)
	if !ok {
		return
	}

	id, err := h.Service.Submit(r.Context(), user.TenantID, user.UserID, payload.LeaveTypeID, start, end, payload.StartHalf, payload.EndHalf, payload.Reason)
	if err != nil {
		if errors.Is(err, leave.ErrInvalidRange) {
			api.Fail(w, http.StatusBadRequest, "invalid_range", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "leave_submit_failed", "failed to submit leave request", middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, user, "leave.request.submit", "leave_request", id, nil, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAmend(w http.ResponseWriter, r *http.Request) {
	user, req, ok := h.loadRequest(w, r)
	if !ok {
		return
	}

	if !h.authorizeRequest(w, r, user, req, access.OpEditOwn) {
		return
	}

	var payload submitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	start, end, ok := h.validateDates(w, r, req.LeaveTypeID, payload.StartDate, payload.EndDate)
	if !ok {
		return
	}

	if err := h.Service.Amend(r.Context(), user.TenantID, req, start, end, payload.StartHalf, payload.EndHalf, payload.Reason); err != nil {
		h.failState(w, r, err, "leave_amend_failed", "failed to amend leave request")
		return
	}

	h.recordAudit(r, user, "leave.request.amend", "leave_request", req.ID, req, payload)
	api.Success(w, map[string]string{"id": req.ID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, approve bool) {
	user, req, ok := h.loadRequest(w, r)
	if !ok {
		return
	}

	if !h.authorizeRequest(w, r, user, req, access.OpApprove) {
		return
	}

	if err := h.Service.Decide(r.Context(), user.TenantID, req, approve, user.UserID); err != nil {
		h.failState(w, r, err, "leave_decide_failed", "failed to decide leave request")
		return
	}

	status := leave.StatusRejected
	ntype := notifications.TypeLeaveRejected
	title := "Leave request rejected"
	if approve {
		status = leave.StatusApproved
		ntype = notifications.TypeLeaveApproved
		title = "Leave request approved"
	}
	if err := h.Notify.Notify(r.Context(), user.TenantID, req.UserID, ntype, title, req.StartDate.Format("2006-01-02")+" to "+req.EndDate.Format("2006-01-02")); err != nil {
		slog.Warn("leave decision notification failed", "err", err)
	}
	h.recordAudit(r, user, "leave.request."+status, "leave_request", req.ID, map[string]string{"status": req.Status}, map[string]string{"status": status})
	api.Success(w, map[string]string{"id": req.ID, "status": status}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	user, req, ok := h.loadRequest(w, r)
	if !ok {
		return
	}

	if !h.authorizeRequest(w, r, user, req, access.OpEditOwn) {
		return
	}

	if err := h.Service.Cancel(r.Context(), user.TenantID, req); err != nil {
		h.failState(w, r, err, "leave_cancel_failed", "failed to cancel leave request")
		return
	}

	h.recordAudit(r, user, "leave.request.cancel", "leave_request", req.ID, map[string]string{"status": req.Status}, map[string]string{"status": leave.StatusCancelled})
	api.Success(w, map[string]string{"id": req.ID, "status": leave.StatusCancelled}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) validateDates(w http.ResponseWriter, r *http.Request, leaveTypeID, rawStart, rawEnd string) (time.Time, time.Time, bool) {
	v := shared.NewValidator()
	v.Required("leaveTypeId", leaveTypeID, "leave type is required")
	start, _ := v.Date("startDate", rawStart)
	end, _ := v.Date("endDate", rawEnd)
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func (h *Handler) loadRequest(w http.ResponseWriter, r *http.Request) (auth.UserContext, leave.Request, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return auth.UserContext{}, leave.Request{}, false
	}

	req, err := h.Service.Store.GetRequest(r.Context(), user.TenantID, chi.URLParam(r, "requestID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "leave_request_not_found", "leave request not found", middleware.GetRequestID(r.Context()))
		return auth.UserContext{}, leave.Request{}, false
	}
	return user, req, true
}

func (h *Handler) authorizeRequest(w http.ResponseWriter, r *http.Request, user auth.UserContext, req leave.Request, op access.Operation) bool {
	ownerRole := user.Role
	if req.UserID != user.UserID {
		if op == access.OpEditOwn {
			op = access.OpManage
		}
		owner, err := h.Users.GetUser(r.Context(), user.TenantID, req.UserID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "authz_error", "permission check failed", middleware.GetRequestID(r.Context()))
			return false
		}
		ownerRole = owner.Role
	}

	dec, err := access.Authorize(user.Actor(), op, req.RecordContext(ownerRole))
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

func (h *Handler) failState(w http.ResponseWriter, r *http.Request, err error, code, msg string) {
	switch {
	case errors.Is(err, leave.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", "leave request is not in a changeable state", middleware.GetRequestID(r.Context()))
	case errors.Is(err, leave.ErrInvalidRange):
		api.Fail(w, http.StatusBadRequest, "invalid_range", err.Error(), middleware.GetRequestID(r.Context()))
	default:
		api.Fail(w, http.StatusInternalServerError, code, msg, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) recordAudit(r *http.Request, user auth.UserContext, action, entityType, entityID string, before, after any) {
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, action, entityType, entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
