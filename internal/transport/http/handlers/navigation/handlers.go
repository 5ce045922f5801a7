package navigationhandler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"teamdesk/internal/domain/navigation"
	"teamdesk/internal/transport/http/api"
	"teamdesk/internal/transport/http/middleware"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/navigation", h.handleNavigation)
}

func (h *Handler) handleNavigation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	items, err := navigation.Visible(user.Actor())
	if err != nil {
		slog.Error("navigation evaluation failed", "err", err, "requestId", middleware.GetRequestID(r.Context()))
		api.Fail(w, http.StatusInternalServerError, "navigation_failed", "failed to build navigation", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}
