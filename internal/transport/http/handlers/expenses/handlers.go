package expensehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"teamdesk/internal/domain/access"
	"teamdesk/internal/domain/audit"
	"teamdesk/internal/domain/auth"
	"teamdesk/internal/domain/core"
	"teamdesk/internal/domain/expenses"
	"teamdesk/internal/domain/notifications"
	"teamdesk/internal/transport/http/api"
	"teamdesk/internal/transport/http/middleware"
	"teamdesk/internal/transport/http/shared"
)

type Handler struct {
	Service *expenses.Service
	Users   *core.Store
	Audit   *audit.Service
	Notify  *notifications.Service
}

func NewHandler(svc *expenses.Service, users *core.Store, auditSvc *audit.Service, notify *notifications.Service) *Handler {
	return &Handler{Service: svc, Users: users, Audit: auditSvc, Notify: notify}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/expenses", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{expenseID}", h.handleGet)
		r.Patch("/{expenseID}", h.handleUpdate)
		r.Post("/{expenseID}/submit", h.handleSubmit)
		r.Post("/{expenseID}/approve", h.handleApprove)
		r.Post("/{expenseID}/reject", h.handleReject)
		r.Post("/{expenseID}/reimburse", h.handleReimburse)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	userID := r.URL.Query().Get("userId")
	departmentID := r.URL.Query().Get("departmentId")
	if !access.IsApprover(user.Role) {
		userID = user.UserID
		departmentID = ""
	}

	page := shared.ParsePagination(r, 50, 200)
	list, err := h.Service.Store.List(r.Context(), user.TenantID, userID, departmentID, r.URL.Query().Get("status"), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "expenses_list_failed", "failed to list expenses", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"items": list,
		"total": expenses.Total(list),
	}, middleware.GetRequestID(r.Context()))
}

type expensePayload struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	ExpenseDate string `json:"expenseDate"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	expense, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	expense.UserID = user.UserID
	expense.Status = expenses.StatusDraft

	id, err := h.Service.Create(r.Context(), user.TenantID, expense)
	if err != nil {
		h.failDomain(w, r, err, "expense_create_failed", "failed to create expense")
		return
	}

	h.recordAudit(r, user, "expenses.create", "expense", id, nil, expense)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, expense, ok := h.loadExpense(w, r)
	if !ok {
		return
	}

	if expense.UserID != user.UserID {
		if !h.authorize(w, r, user, expense, access.OpManage) {
			return
		}
	}
	api.Success(w, expense, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, expense, ok := h.loadExpense(w, r)
	if !ok {
		return
	}

	if !h.authorize(w, r, user, expense, access.OpEditOwn) {
		return
	}

	updated, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	updated.UserID = expense.UserID
	updated.Status = expense.Status

	if err := h.Service.UpdateDraft(r.Context(), user.TenantID, expense, updated); err != nil {
		h.failDomain(w, r, err, "expense_update_failed", "failed to update expense")
		return
	}

	h.recordAudit(r, user, "expenses.update", "expense", expense.ID, expense, updated)
	api.Success(w, map[string]string{"id": expense.ID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, expenses.StatusSubmitted, access.OpEditOwn, "", "")
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, expenses.StatusApproved, access.OpApprove, notifications.TypeExpenseApproved, "Expense approved")
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, expenses.StatusRejected, access.OpApprove, notifications.TypeExpenseRejected, "Expense rejected")
}

func (h *Handler) handleReimburse(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, expenses.StatusReimbursed, access.OpApprove, notifications.TypeExpensePaid, "Expense reimbursed")
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, toStatus string, op access.Operation, ntype, title string) {
	user, expense, ok := h.loadExpense(w, r)
	if !ok {
		return
	}

	if !h.authorize(w, r, user, expense, op) {
		return
	}

	decidedBy := ""
	if op == access.OpApprove {
		decidedBy = user.UserID
	}
	if err := h.Service.Transition(r.Context(), user.TenantID, expense, toStatus, decidedBy); err != nil {
		h.failDomain(w, r, err, "expense_transition_failed", "failed to update expense status")
		return
	}

	if ntype != "" {
		body := expense.Amount.StringFixed(2) + " " + expense.Currency
		if err := h.Notify.Notify(r.Context(), user.TenantID, expense.UserID, ntype, title, body); err != nil {
			slog.Warn("expense notification failed", "err", err)
		}
	}
	h.recordAudit(r, user, "expenses."+toStatus, "expense", expense.ID, map[string]string{"status": expense.Status}, map[string]string{"status": toStatus})
	api.Success(w, map[string]string{"id": expense.ID, "status": toStatus}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request) (expenses.Expense, bool) {
	var payload expensePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return expenses.Expense{}, false
	}

	v := shared.NewValidator()
	v.Required("category", payload.Category, "category is required")
	v.Required("amount", payload.Amount, "amount is required")
	if !expenses.ValidCategory(payload.Category) {
		v.Add("category", "unknown expense category")
	}
	amount, err := decimal.NewFromString(payload.Amount)
	if payload.Amount != "" && err != nil {
		v.Add("amount", "must be a decimal number")
	}
	if payload.Currency == "" {
		payload.Currency = "USD"
	}
	expenseDate, _ := v.Date("expenseDate", payload.ExpenseDate)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return expenses.Expense{}, false
	}

	return expenses.Expense{
		Category:    payload.Category,
		Description: payload.Description,
		Amount:      amount,
		Currency:    payload.Currency,
		ExpenseDate: expenseDate,
	}, true
}

func (h *Handler) loadExpense(w http.ResponseWriter, r *http.Request) (auth.UserContext, expenses.Expense, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return auth.UserContext{}, expenses.Expense{}, false
	}

	expense, err := h.Service.Store.Get(r.Context(), user.TenantID, chi.URLParam(r, "expenseID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "expense_not_found", "expense not found", middleware.GetRequestID(r.Context()))
		return auth.UserContext{}, expenses.Expense{}, false
	}
	return user, expense, true
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, user auth.UserContext, expense expenses.Expense, op access.Operation) bool {
	ownerRole := user.Role
	if expense.UserID != user.UserID {
		if op == access.OpEditOwn {
			op = access.OpManage
		}
		owner, err := h.Users.GetUser(r.Context(), user.TenantID, expense.UserID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "authz_error", "permission check failed", middleware.GetRequestID(r.Context()))
			return false
		}
		ownerRole = owner.Role
	}

	dec, err := access.Authorize(user.Actor(), op, expense.RecordContext(ownerRole))
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

func (h *Handler) failDomain(w http.ResponseWriter, r *http.Request, err error, code, msg string) {
	switch {
	case errors.Is(err, expenses.ErrInvalidAmount):
		api.Fail(w, http.StatusBadRequest, "invalid_amount", "expense amount must be positive", middleware.GetRequestID(r.Context()))
	case errors.Is(err, expenses.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", err.Error(), middleware.GetRequestID(r.Context()))
	default:
		api.Fail(w, http.StatusInternalServerError, code, msg, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) recordAudit(r *http.Request, user auth.UserContext, action, entityType, entityID string, before, after any) {
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, action, entityType, entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
