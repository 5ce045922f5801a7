package middleware

import (
	"log/slog"
	"net/http"

	"teamdesk/internal/domain/access"
	"teamdesk/internal/transport/http/api"
)

// RequireGate guards a route with an access gate. Denials map to a generic
// 403; the reason code is logged for diagnostics but never sent to the
// client. A malformed gate is a programming error and fails the request with
// a 500 instead of being masked.
func RequireGate(gate access.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}

			dec, err := access.EvaluateGate(user.Actor(), gate)
			if err != nil {
				slog.Error("gate evaluation failed", "err", err, "path", r.URL.Path, "requestId", GetRequestID(r.Context()))
				api.Fail(w, http.StatusInternalServerError, "gate_error", "permission check failed", GetRequestID(r.Context()))
				return
			}
			if !dec.Allowed {
				slog.Info("gate denied",
					"reason", string(dec.Reason),
					"path", r.URL.Path,
					"userId", user.UserID,
					"requestId", GetRequestID(r.Context()),
				)
				api.Fail(w, http.StatusForbidden, "forbidden", "not permitted", GetRequestID(r.Context()))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireMinRole is shorthand for a rank-threshold gate.
func RequireMinRole(min access.Role) func(http.Handler) http.Handler {
	return RequireGate(access.Gate{MinRole: min})
}

// RequireRoles is shorthand for an exact-membership gate.
func RequireRoles(roles ...access.Role) func(http.Handler) http.Handler {
	return RequireGate(access.Gate{RequiredRoles: roles})
}
