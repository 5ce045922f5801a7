package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"teamdesk/internal/domain/access"
	"teamdesk/internal/domain/auth"
)

func requestAs(user *auth.UserContext) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if user != nil {
		ctx := context.WithValue(req.Context(), ctxKeyUser, *user)
		req = req.WithContext(ctx)
	}
	return req
}

func TestRequireGate(t *testing.T) {
	activeEmployee := &auth.UserContext{UserID: "u-1", Role: access.RoleEmployee, Active: true}
	activeHR := &auth.UserContext{UserID: "u-2", Role: access.RoleHR, Active: true}
	inactiveAdmin := &auth.UserContext{UserID: "u-3", Role: access.RoleOrgAdmin, Active: false}

	tests := []struct {
		name     string
		gate     access.Gate
		user     *auth.UserContext
		wantCode int
	}{
		{name: "anonymous gets 401", gate: access.Gate{}, user: nil, wantCode: http.StatusUnauthorized},
		{name: "open gate admits active user", gate: access.Gate{}, user: activeEmployee, wantCode: http.StatusOK},
		{name: "open gate rejects inactive user", gate: access.Gate{}, user: inactiveAdmin, wantCode: http.StatusForbidden},
		{name: "min role below threshold", gate: access.Gate{MinRole: access.RoleTeamLead}, user: activeEmployee, wantCode: http.StatusForbidden},
		{name: "min role at threshold", gate: access.Gate{MinRole: access.RoleHR}, user: activeHR, wantCode: http.StatusOK},
		{name: "required roles member", gate: access.Gate{RequiredRoles: []access.Role{access.RoleHR}}, user: activeHR, wantCode: http.StatusOK},
		{name: "required roles non-member", gate: access.Gate{RequiredRoles: []access.Role{access.RoleHR}}, user: activeEmployee, wantCode: http.StatusForbidden},
		{
			name:     "ambiguous gate is a server error",
			gate:     access.Gate{RequiredRoles: []access.Role{access.RoleHR}, MinRole: access.RoleEmployee},
			user:     activeHR,
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			rec := httptest.NewRecorder()
			RequireGate(tc.gate)(next).ServeHTTP(rec, requestAs(tc.user))

			if rec.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantCode)
			}
		})
	}
}

func TestRequireMinRoleShorthand(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	user := &auth.UserContext{UserID: "u-1", Role: access.RoleDeptAdmin, Active: true}
	RequireMinRole(access.RoleDeptAdmin)(next).ServeHTTP(rec, requestAs(user))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRequireRolesShorthandExactMembership(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Outranking the listed roles does not help on a membership gate.
	rec := httptest.NewRecorder()
	super := &auth.UserContext{UserID: "u-1", Role: access.RoleSuperAdmin, Active: true}
	RequireRoles(access.RoleHR, access.RoleOrgAdmin)(next).ServeHTTP(rec, requestAs(super))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}
