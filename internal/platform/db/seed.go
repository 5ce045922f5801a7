package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"teamdesk/internal/domain/access"
	"teamdesk/internal/domain/auth"
	"teamdesk/internal/platform/config"
)

// Seed provisions the tenant and the bootstrap admin, and, when demo data is
// enabled, a department/user/project fixture with one user per role.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	tenantID, err := ensureTenant(ctx, pool, cfg.SeedTenantName)
	if err != nil {
		return err
	}

	if cfg.SeedAdminEmail != "" {
		if _, err := ensureUser(ctx, pool, tenantID, cfg.SeedAdminEmail, cfg.SeedAdminPassword, "Org", "Admin", access.RoleSuperAdmin, ""); err != nil {
			return err
		}
	}

	if !cfg.SeedDemoData {
		return nil
	}
	return seedDemo(ctx, pool, tenantID)
}

func ensureTenant(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM tenants WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}

	err = pool.QueryRow(ctx, "INSERT INTO tenants (name) VALUES ($1) RETURNING id", name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureDepartment(ctx context.Context, pool *pgxpool.Pool, tenantID, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM departments WHERE tenant_id = $1 AND name = $2", tenantID, name).Scan(&id)
	if err == nil {
		return id, nil
	}

	err = pool.QueryRow(ctx, "INSERT INTO departments (tenant_id, name) VALUES ($1, $2) RETURNING id", tenantID, name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, tenantID, email, password, firstName, lastName string, role access.Role, departmentID string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE tenant_id = $1 AND email = $2", tenantID, email).Scan(&id)
	if err == nil {
		return id, nil
	}

	if password == "" {
		password = "ChangeMe123!"
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}

	err = pool.QueryRow(ctx, `
    INSERT INTO users (tenant_id, email, first_name, last_name, role, department_id, is_active, password_hash)
    VALUES ($1,$2,$3,$4,$5,NULLIF($6,'')::uuid,TRUE,$7)
    RETURNING id
  `, tenantID, email, firstName, lastName, role, departmentID, hash).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func seedDemo(ctx context.Context, pool *pgxpool.Pool, tenantID string) error {
	engID, err := ensureDepartment(ctx, pool, tenantID, "Engineering")
	if err != nil {
		return err
	}
	salesID, err := ensureDepartment(ctx, pool, tenantID, "Sales")
	if err != nil {
		return err
	}
	peopleID, err := ensureDepartment(ctx, pool, tenantID, "People Ops")
	if err != nil {
		return err
	}

	demoUsers := []struct {
		email      string
		first      string
		last       string
		role       access.Role
		department string
	}{
		{"trainee@demo.local", "Toni", "Vega", access.RoleTrainee, engID},
		{"intern@demo.local", "Ira", "Sato", access.RoleIntern, engID},
		{"contractor@demo.local", "Casey", "Lund", access.RoleContractor, salesID},
		{"employee@demo.local", "Emery", "Shaw", access.RoleEmployee, engID},
		{"lead@demo.local", "Lee", "Okafor", access.RoleTeamLead, engID},
		{"pm@demo.local", "Priya", "Mehta", access.RoleProjectManager, engID},
		{"hr@demo.local", "Harper", "Quinn", access.RoleHR, peopleID},
		{"deptadmin@demo.local", "Dana", "Ruiz", access.RoleDeptAdmin, engID},
		{"orgadmin@demo.local", "Ola", "Nilsen", access.RoleOrgAdmin, ""},
		{"superadmin@demo.local", "Sam", "Reyes", access.RoleSuperAdmin, ""},
	}

	userIDs := map[string]string{}
	for _, u := range demoUsers {
		id, err := ensureUser(ctx, pool, tenantID, u.email, "", u.first, u.last, u.role, u.department)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.email, err)
		}
		userIDs[u.email] = id
	}

	projectID, err := ensureProject(ctx, pool, tenantID, "Website Relaunch", engID, userIDs["pm@demo.local"])
	if err != nil {
		return err
	}

	demoTasks := []struct {
		title    string
		status   string
		assignee string
	}{
		{"Design landing page", "done", "employee@demo.local"},
		{"Implement signup flow", "in_progress", "employee@demo.local"},
		{"Set up staging environment", "review", "lead@demo.local"},
		{"Write launch announcement", "todo", ""},
	}
	for _, t := range demoTasks {
		if err := ensureTask(ctx, pool, projectID, t.title, t.status, userIDs[t.assignee], userIDs["pm@demo.local"]); err != nil {
			return err
		}
	}

	leaveTypeID, err := ensureLeaveType(ctx, pool, tenantID, "Annual Leave", "annual")
	if err != nil {
		return err
	}
	if err := ensureLeaveRequest(ctx, pool, tenantID, userIDs["employee@demo.local"], leaveTypeID); err != nil {
		return err
	}

	return ensureExpense(ctx, pool, tenantID, userIDs["employee@demo.local"])
}

func ensureProject(ctx context.Context, pool *pgxpool.Pool, tenantID, name, departmentID, ownerID string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM projects WHERE tenant_id = $1 AND name = $2", tenantID, name).Scan(&id)
	if err == nil {
		return id, nil
	}

	err = pool.QueryRow(ctx, `
    INSERT INTO projects (tenant_id, name, description, department_id, owner_id, status)
    VALUES ($1,$2,$3,$4,$5,'active')
    RETURNING id
  `, tenantID, name, "Demo project seeded at startup", departmentID, ownerID).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureTask(ctx context.Context, pool *pgxpool.Pool, projectID, title, status, assigneeID, reporterID string) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM tasks WHERE project_id = $1 AND title = $2", projectID, title).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	_, err := pool.Exec(ctx, `
    INSERT INTO tasks (project_id, title, status, priority, assignee_id, reporter_id)
    VALUES ($1,$2,$3,'medium',NULLIF($4,'')::uuid,$5)
  `, projectID, title, status, assigneeID, reporterID)
	return err
}

func ensureLeaveType(ctx context.Context, pool *pgxpool.Pool, tenantID, name, code string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM leave_types WHERE tenant_id = $1 AND code = $2", tenantID, code).Scan(&id)
	if err == nil {
		return id, nil
	}

	err = pool.QueryRow(ctx, `
    INSERT INTO leave_types (tenant_id, name, code, is_paid)
    VALUES ($1,$2,$3,TRUE)
    RETURNING id
  `, tenantID, name, code).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureLeaveRequest(ctx context.Context, pool *pgxpool.Pool, tenantID, userID, leaveTypeID string) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM leave_requests WHERE tenant_id = $1 AND user_id = $2", tenantID, userID).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	start := nextMonday(time.Now().UTC())
	end := start.AddDate(0, 0, 4)
	_, err := pool.Exec(ctx, `
    INSERT INTO leave_requests (tenant_id, user_id, leave_type_id, start_date, end_date, days, reason, status)
    VALUES ($1,$2,$3,$4,$5,5,'Family trip','pending')
  `, tenantID, userID, leaveTypeID, start, end)
	return err
}

func ensureExpense(ctx context.Context, pool *pgxpool.Pool, tenantID, userID string) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM expenses WHERE tenant_id = $1 AND user_id = $2", tenantID, userID).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	_, err := pool.Exec(ctx, `
    INSERT INTO expenses (tenant_id, user_id, category, description, amount, currency, expense_date, status)
    VALUES ($1,$2,'travel','Client visit train tickets',86.40,'EUR',$3,'submitted')
  `, tenantID, userID, time.Now().UTC().AddDate(0, 0, -3))
	return err
}

func nextMonday(from time.Time) time.Time {
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(time.Monday) - int(day.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return day.AddDate(0, 0, offset)
}
