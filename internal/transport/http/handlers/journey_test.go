package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"teamdesk/internal/app/server"
	"teamdesk/internal/platform/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

const (
	adminEmail    = "admin@test.local"
	adminPassword = "ChangeMe123!"
)

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		FrontendDir:        "frontend/dist",
		Environment:        "test",
		SeedTenantName:     "Journey Tenant",
		SeedAdminEmail:     adminEmail,
		SeedAdminPassword:  adminPassword,
		SeedDemoData:       false,
		EmailFrom:          "no-reply@test.local",
		RunMigrations:      true,
		MigrationsDir:      "../../../../migrations",
		RunSeed:            true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
	}
}

func startApp(t *testing.T) (*server.App, *httptest.Server) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	app, err := server.New(context.Background(), testConfig(dbURL))
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	t.Cleanup(app.Close)

	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return app, ts
}

func TestWorkdayJourney(t *testing.T) {
	_, ts := startApp(t)
	client := ts.Client()

	adminToken := login(t, client, ts.URL, adminEmail, adminPassword)

	deptID := createDepartment(t, client, ts.URL, adminToken, fmt.Sprintf("Engineering %d", time.Now().UnixNano()))

	employeeEmail := fmt.Sprintf("journey-%d@example.com", time.Now().UnixNano())
	employeePassword := "Employee123!"
	employeeID := createUser(t, client, ts.URL, adminToken, employeeEmail, employeePassword, "EMPLOYEE", deptID)
	employeeToken := login(t, client, ts.URL, employeeEmail, employeePassword)

	// Navigation reflects the caller's role.
	adminNav := navigationKeys(t, client, ts.URL, adminToken)
	if !adminNav["audit"] {
		t.Fatal("expected admin navigation to include audit")
	}
	employeeNav := navigationKeys(t, client, ts.URL, employeeToken)
	if employeeNav["audit"] || employeeNav["settings"] {
		t.Fatalf("employee navigation leaked admin items: %v", employeeNav)
	}
	if !employeeNav["attendance"] || !employeeNav["leave"] {
		t.Fatalf("employee navigation missing base items: %v", employeeNav)
	}

	// Attendance: clock in, double clock-in conflicts, clock out, timesheet.
	postJSONStatus(t, client, ts.URL+"/api/v1/attendance/clock-in", employeeToken, map[string]any{"note": "morning"}, http.StatusCreated)
	postJSONStatus(t, client, ts.URL+"/api/v1/attendance/clock-in", employeeToken, nil, http.StatusConflict)
	postJSONStatus(t, client, ts.URL+"/api/v1/attendance/clock-out", employeeToken, nil, http.StatusOK)
	postJSONStatus(t, client, ts.URL+"/api/v1/attendance/clock-out", employeeToken, nil, http.StatusConflict)

	pdfReq, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/attendance/timesheet?format=pdf", nil)
	pdfReq.Header.Set("Authorization", "Bearer "+employeeToken)
	pdfResp, err := client.Do(pdfReq)
	if err != nil {
		t.Fatalf("timesheet request failed: %v", err)
	}
	defer pdfResp.Body.Close()
	if pdfResp.StatusCode != http.StatusOK {
		t.Fatalf("timesheet status = %d", pdfResp.StatusCode)
	}
	if ct := pdfResp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("timesheet content type = %q", ct)
	}

	// Leave: employee submits; self-approval is always denied; an admin
	// approves and the employee gets notified.
	leaveTypeID := createLeaveType(t, client, ts.URL, adminToken)
	resp := postJSON(t, client, ts.URL+"/api/v1/leave/requests", employeeToken, map[string]any{
		"leaveTypeId": leaveTypeID,
		"startDate":   "2026-10-05",
		"endDate":     "2026-10-07",
		"reason":      "Rest",
	})
	requestID := idFrom(t, resp)

	postJSONStatus(t, client, ts.URL+"/api/v1/leave/requests/"+requestID+"/approve", employeeToken, nil, http.StatusForbidden)

	approveResp := postJSON(t, client, ts.URL+"/api/v1/leave/requests/"+requestID+"/approve", adminToken, nil)
	if status := stringField(t, approveResp, "status"); status != "approved" {
		t.Fatalf("leave status = %q, want approved", status)
	}
	postJSONStatus(t, client, ts.URL+"/api/v1/leave/requests/"+requestID+"/approve", adminToken, nil, http.StatusConflict)

	notifs := getJSON(t, client, ts.URL+"/api/v1/notifications", employeeToken)
	var items []map[string]any
	if err := json.Unmarshal(notifs.Data, &items); err != nil {
		t.Fatalf("failed to decode notifications: %v", err)
	}
	if len(items) == 0 {
		t.Fatal("expected a leave approval notification")
	}

	// Expenses: draft, submit, self-approval denied, admin approves then
	// reimburses.
	expenseResp := postJSON(t, client, ts.URL+"/api/v1/expenses", employeeToken, map[string]any{
		"category":    "travel",
		"description": "client visit",
		"amount":      "120.50",
		"currency":    "USD",
		"expenseDate": "2026-09-01",
	})
	expenseID := idFrom(t, expenseResp)

	postJSONStatus(t, client, ts.URL+"/api/v1/expenses/"+expenseID+"/approve", adminToken, nil, http.StatusConflict)
	postJSONStatus(t, client, ts.URL+"/api/v1/expenses/"+expenseID+"/submit", employeeToken, nil, http.StatusOK)
	postJSONStatus(t, client, ts.URL+"/api/v1/expenses/"+expenseID+"/approve", employeeToken, nil, http.StatusForbidden)
	postJSONStatus(t, client, ts.URL+"/api/v1/expenses/"+expenseID+"/approve", adminToken, nil, http.StatusOK)
	postJSONStatus(t, client, ts.URL+"/api/v1/expenses/"+expenseID+"/reimburse", adminToken, nil, http.StatusOK)

	// Task board: admin sets up the project, the assignee works the card.
	projectResp := postJSON(t, client, ts.URL+"/api/v1/projects", adminToken, map[string]any{
		"name":         fmt.Sprintf("Relaunch %d", time.Now().UnixNano()),
		"departmentId": deptID,
	})
	projectID := idFrom(t, projectResp)

	taskResp := postJSON(t, client, ts.URL+"/api/v1/projects/"+projectID+"/tasks", adminToken, map[string]any{
		"title":      "Draft landing page",
		"priority":   "high",
		"assigneeId": employeeID,
	})
	taskID := idFrom(t, taskResp)

	postJSONStatus(t, client, ts.URL+"/api/v1/tasks/"+taskID+"/move", employeeToken, map[string]any{"status": "done"}, http.StatusConflict)
	moveResp := postJSON(t, client, ts.URL+"/api/v1/tasks/"+taskID+"/move", employeeToken, map[string]any{"status": "in_progress"})
	if status := stringField(t, moveResp, "status"); status != "in_progress" {
		t.Fatalf("task status = %q, want in_progress", status)
	}

	board := getJSON(t, client, ts.URL+"/api/v1/projects/"+projectID+"/board", employeeToken)
	var boardPayload struct {
		Columns map[string][]map[string]any `json:"columns"`
	}
	if err := json.Unmarshal(board.Data, &boardPayload); err != nil {
		t.Fatalf("failed to decode board: %v", err)
	}
	if len(boardPayload.Columns["in_progress"]) != 1 {
		t.Fatalf("expected one in-progress task, got %d", len(boardPayload.Columns["in_progress"]))
	}

	// The whole journey left a trail for the admin.
	audit := getJSON(t, client, ts.URL+"/api/v1/audit", adminToken)
	var events []map[string]any
	if err := json.Unmarshal(audit.Data, &events); err != nil {
		t.Fatalf("failed to decode audit events: %v", err)
	}
	if len(events) == 0 {
		t.Fatal("expected audit events")
	}
}

func TestDepartmentAdminScoping(t *testing.T) {
	_, ts := startApp(t)
	client := ts.Client()

	adminToken := login(t, client, ts.URL, adminEmail, adminPassword)

	suffix := time.Now().UnixNano()
	deptA := createDepartment(t, client, ts.URL, adminToken, fmt.Sprintf("Sales %d", suffix))
	deptB := createDepartment(t, client, ts.URL, adminToken, fmt.Sprintf("Support %d", suffix))

	deptAdminEmail := fmt.Sprintf("deptadmin-%d@example.com", suffix)
	createUser(t, client, ts.URL, adminToken, deptAdminEmail, "DeptAdmin123!", "DEPT_ADMIN", deptA)
	insiderID := createUser(t, client, ts.URL, adminToken, fmt.Sprintf("insider-%d@example.com", suffix), "Insider123!", "EMPLOYEE", deptA)
	outsiderID := createUser(t, client, ts.URL, adminToken, fmt.Sprintf("outsider-%d@example.com", suffix), "Outsider123!", "EMPLOYEE", deptB)

	deptAdminToken := login(t, client, ts.URL, deptAdminEmail, "DeptAdmin123!")

	patch := map[string]any{"firstName": "Renamed", "lastName": "User"}
	patchJSONStatus(t, client, ts.URL+"/api/v1/users/"+insiderID, deptAdminToken, patch, http.StatusOK)
	patchJSONStatus(t, client, ts.URL+"/api/v1/users/"+outsiderID, deptAdminToken, patch, http.StatusForbidden)

	// A department admin cannot touch the org-level admin either.
	meResp := getJSON(t, client, ts.URL+"/api/v1/users/me", adminToken)
	adminID := stringField(t, meResp, "id")
	patchJSONStatus(t, client, ts.URL+"/api/v1/users/"+adminID, deptAdminToken, patch, http.StatusForbidden)
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

func createDepartment(t *testing.T, client *http.Client, baseURL, token, name string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/departments", token, map[string]any{"name": name})
	return idFrom(t, resp)
}

func createUser(t *testing.T, client *http.Client, baseURL, token, email, password, role, departmentID string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/users", token, map[string]any{
		"email":        email,
		"firstName":    "Journey",
		"lastName":     "Tester",
		"role":         role,
		"departmentId": departmentID,
		"password":     password,
	})
	return idFrom(t, resp)
}

func createLeaveType(t *testing.T, client *http.Client, baseURL, token string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/leave/types", token, map[string]any{
		"name":   fmt.Sprintf("Annual %d", time.Now().UnixNano()),
		"code":   fmt.Sprintf("ANL%d", time.Now().UnixNano()),
		"isPaid": true,
	})
	return idFrom(t, resp)
}

func navigationKeys(t *testing.T, client *http.Client, baseURL, token string) map[string]bool {
	t.Helper()
	resp := getJSON(t, client, baseURL+"/api/v1/navigation", token)
	var items []map[string]any
	if err := json.Unmarshal(resp.Data, &items); err != nil {
		t.Fatalf("failed to decode navigation: %v", err)
	}
	keys := make(map[string]bool, len(items))
	for _, item := range items {
		key, _ := item["key"].(string)
		keys[key] = true
	}
	return keys
}

func idFrom(t *testing.T, resp envelope) string {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatalf("expected id in response: %s", string(resp.Data))
	}
	return id
}

func stringField(t *testing.T, resp envelope, field string) string {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	value, _ := payload[field].(string)
	return value
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodPost, url, token, body, 0)
}

func postJSONStatus(t *testing.T, client *http.Client, url, token string, body any, want int) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodPost, url, token, body, want)
}

func patchJSONStatus(t *testing.T, client *http.Client, url, token string, body any, want int) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodPatch, url, token, body, want)
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodGet, url, token, nil, 0)
}

// doJSON issues a request and decodes the envelope. want == 0 means any
// success status; otherwise the exact status is asserted.
func doJSON(t *testing.T, client *http.Client, method, url, token string, body any, want int) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if want != 0 {
		if resp.StatusCode != want {
			t.Fatalf("%s %s: expected status %d, got %d: %s", method, url, want, resp.StatusCode, string(raw))
		}
	} else if resp.StatusCode >= 400 {
		t.Fatalf("%s %s: unexpected status %d: %s", method, url, resp.StatusCode, string(raw))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response body %q: %v", string(raw), err)
	}
	return env
}
