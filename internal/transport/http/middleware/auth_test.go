package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"teamdesk/internal/domain/access"
	"teamdesk/internal/domain/auth"
)

const testSecret = "test-secret"

func issueToken(t *testing.T, secret string, claims auth.Claims) string {
	t.Helper()
	token, err := auth.GenerateToken(secret, claims, time.Minute)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func TestAuthMiddleware(t *testing.T) {
	validToken := issueToken(t, testSecret, auth.Claims{
		UserID:       "u-1",
		TenantID:     "t-1",
		Role:         string(access.RoleEmployee),
		DepartmentID: "d-1",
		Active:       true,
	})

	tests := []struct {
		name       string
		authHeader string
		wantUser   bool
	}{
		{name: "no header passes through anonymous", authHeader: "", wantUser: false},
		{name: "malformed header passes through anonymous", authHeader: "Token abc", wantUser: false},
		{name: "garbage token passes through anonymous", authHeader: "Bearer not-a-jwt", wantUser: false},
		{name: "wrong secret passes through anonymous", authHeader: "Bearer " + issueToken(t, "other-secret", auth.Claims{UserID: "u-1", Role: string(access.RoleEmployee)}), wantUser: false},
		{name: "unknown role passes through anonymous", authHeader: "Bearer " + issueToken(t, testSecret, auth.Claims{UserID: "u-1", Role: "WIZARD"}), wantUser: false},
		{name: "valid token attaches user", authHeader: "Bearer " + validToken, wantUser: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotUser auth.UserContext
			var gotOK bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser, gotOK = GetUser(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rec := httptest.NewRecorder()
			Auth(testSecret)(next).ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected pass-through 200, got %d", rec.Code)
			}
			if gotOK != tc.wantUser {
				t.Fatalf("user attached = %v, want %v", gotOK, tc.wantUser)
			}
			if tc.wantUser {
				if gotUser.UserID != "u-1" || gotUser.TenantID != "t-1" {
					t.Fatalf("unexpected user context: %+v", gotUser)
				}
				if gotUser.Role != access.RoleEmployee {
					t.Fatalf("unexpected role: %s", gotUser.Role)
				}
				if !gotUser.Active {
					t.Fatal("expected active user")
				}
			}
		})
	}
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	token, err := auth.GenerateToken(testSecret, auth.Claims{UserID: "u-1", Role: string(access.RoleEmployee), Active: true}, -time.Minute)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := GetUser(r.Context())
		if ok {
			t.Fatal("expired token must not attach a user")
		}
		called = true
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	Auth(testSecret)(next).ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Fatal("next handler not called")
	}
}
