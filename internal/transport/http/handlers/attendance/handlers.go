package attendancehandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"teamdesk/internal/domain/access"
	"teamdesk/internal/domain/attendance"
	"teamdesk/internal/domain/auth"
	"teamdesk/internal/domain/core"
	"teamdesk/internal/transport/http/api"
	"teamdesk/internal/transport/http/middleware"
	"teamdesk/internal/transport/http/shared"
)

type Handler struct {
	Service *attendance.Service
	Users   *core.Store
}

func NewHandler(svc *attendance.Service, users *core.Store) *Handler {
	return &Handler{Service: svc, Users: users}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.Post("/clock-in", h.handleClockIn)
		r.Post("/clock-out", h.handleClockOut)
		r.Get("/records", h.handleListRecords)
		r.Get("/timesheet", h.handleTimesheet)
	})
}

type clockInRequest struct {
	Note string `json:"note"`
}

func (h *Handler) handleClockIn(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload clockInRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
			return
		}
	}

	id, err := h.Service.ClockIn(r.Context(), user.TenantID, user.UserID, payload.Note)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyClockedIn) {
			api.Fail(w, http.StatusConflict, "already_clocked_in", "an open attendance record already exists", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "clock_in_failed", "failed to clock in", middleware.GetRequestID(r.Context()))
		return
	}

	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleClockOut(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	rec, err := h.Service.ClockOut(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		if errors.Is(err, attendance.ErrNotClockedIn) {
			api.Fail(w, http.StatusConflict, "not_clocked_in", "no open attendance record", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "clock_out_failed", "failed to clock out", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, rec, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	user, targetID, from, to, ok := h.resolveQuery(w, r)
	if !ok {
		return
	}

	records, err := h.Service.Store.ListRecords(r.Context(), user.TenantID, targetID, from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_list_failed", "failed to list attendance records", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, records, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleTimesheet(w http.ResponseWriter, r *http.Request) {
	user, targetID, from, to, ok := h.resolveQuery(w, r)
	if !ok {
		return
	}

	sheet, err := h.Service.Timesheet(r.Context(), user.TenantID, targetID, from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "timesheet_failed", "failed to build timesheet", middleware.GetRequestID(r.Context()))
		return
	}

	if r.URL.Query().Get("format") != "pdf" {
		api.Success(w, sheet, middleware.GetRequestID(r.Context()))
		return
	}

	target, err := h.Users.GetUser(r.Context(), user.TenantID, targetID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "user_not_found", "user not found", middleware.GetRequestID(r.Context()))
		return
	}
	pdf, err := attendance.TimesheetPDF(sheet, target.FirstName+" "+target.LastName)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "timesheet_failed", "failed to render timesheet", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="timesheet-%s.pdf"`, from.Format("2006-01-02")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// resolveQuery parses the window and target, authorizing access to another
// user's records through the management rules.
func (h *Handler) resolveQuery(w http.ResponseWriter, r *http.Request) (auth.UserContext, string, time.Time, time.Time, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return auth.UserContext{}, "", time.Time{}, time.Time{}, false
	}

	v := shared.NewValidator()
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -14)
	to := now
	if raw := r.URL.Query().Get("from"); raw != "" {
		if parsed, ok := v.Date("from", raw); ok {
			from = parsed
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if parsed, ok := v.Date("to", raw); ok {
			to = parsed
		}
	}
	v.DateOrder("from", from, "to", to)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return auth.UserContext{}, "", time.Time{}, time.Time{}, false
	}

	targetID := r.URL.Query().Get("userId")
	if targetID == "" || targetID == user.UserID {
		return user, user.UserID, from, to, true
	}

	target, err := h.Users.GetUser(r.Context(), user.TenantID, targetID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "user_not_found", "user not found", middleware.GetRequestID(r.Context()))
		return auth.UserContext{}, "", time.Time{}, time.Time{}, false
	}
	dec, err := access.Authorize(user.Actor(), access.OpManage, target.RecordContext())
	if err != nil {
		slog.Error("authorization failed", "err", err, "requestId", middleware.GetRequestID(r.Context()))
		api.Fail(w, http.StatusInternalServerError, "authz_error", "permission check failed", middleware.GetRequestID(r.Context()))
		return auth.UserContext{}, "", time.Time{}, time.Time{}, false
	}
	if !dec.Allowed {
		slog.Info("record access denied",
			"reason", string(dec.Reason),
			"userId", user.UserID,
			"path", r.URL.Path,
			"requestId", middleware.GetRequestID(r.Context()),
		)
		api.Fail(w, http.StatusForbidden, "forbidden", "not permitted", middleware.GetRequestID(r.Context()))
		return auth.UserContext{}, "", time.Time{}, time.Time{}, false
	}
	return user, targetID, from, to, true
}
