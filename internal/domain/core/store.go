package core

import (
	"context"

	"teamdesk/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const userColumns = `
    id, tenant_id, email, first_name, last_name, role,
    COALESCE(department_id::text, ''), is_active, last_login, created_at, updated_at`

func (s *Store) GetUser(ctx context.Context, tenantID, userID string) (User, error) {
	var u User
	err := s.DB.QueryRow(ctx, `
    SELECT`+userColumns+`
    FROM users
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, userID).Scan(
		&u.ID, &u.TenantID, &u.Email, &u.FirstName, &u.LastName, &u.Role,
		&u.DepartmentID, &u.Active, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

func (s *Store) ListUsers(ctx context.Context, tenantID, departmentID string, limit, offset int) ([]User, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT`+userColumns+`
    FROM users
    WHERE tenant_id = $1 AND ($2 = '' OR department_id::text = $2)
    ORDER BY last_name, first_name
    LIMIT $3 OFFSET $4
  `, tenantID, departmentID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.ID, &u.TenantID, &u.Email, &u.FirstName, &u.LastName, &u.Role,
			&u.DepartmentID, &u.Active, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) CreateUser(ctx context.Context, tenantID string, u User, passwordHash string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (tenant_id, email, first_name, last_name, role, department_id, is_active, password_hash)
    VALUES ($1,$2,$3,$4,$5,NULLIF($6,'')::uuid,$7,$8)
    RETURNING id
  `, tenantID, u.Email, u.FirstName, u.LastName, u.Role, u.DepartmentID, u.Active, passwordHash).Scan(&id)
	return id, err
}

func (s *Store) UpdateUserProfile(ctx context.Context, tenantID, userID, firstName, lastName string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE users
    SET first_name = $3, last_name = $4, updated_at = now()
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, userID, firstName, lastName)
	return err
}

func (s *Store) UpdateUserRole(ctx context.Context, tenantID, userID, role string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE users
    SET role = $3, updated_at = now()
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, userID, role)
	return err
}

func (s *Store) UpdateUserDepartment(ctx context.Context, tenantID, userID, departmentID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE users
    SET department_id = NULLIF($3,'')::uuid, updated_at = now()
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, userID, departmentID)
	return err
}

func (s *Store) SetUserActive(ctx context.Context, tenantID, userID string, active bool) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE users
    SET is_active = $3, updated_at = now()
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, userID, active)
	return err
}

func (s *Store) GetDepartment(ctx context.Context, tenantID, departmentID string) (Department, error) {
	var d Department
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, COALESCE(manager_id::text, ''), created_at
    FROM departments
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, departmentID).Scan(&d.ID, &d.Name, &d.ManagerID, &d.CreatedAt)
	return d, err
}

func (s *Store) ListDepartments(ctx context.Context, tenantID string) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, COALESCE(manager_id::text, ''), created_at
    FROM departments
    WHERE tenant_id = $1
    ORDER BY name
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.ManagerID, &d.CreatedAt); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

func (s *Store) CreateDepartment(ctx context.Context, tenantID, name, managerID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (tenant_id, name, manager_id)
    VALUES ($1,$2,NULLIF($3,'')::uuid)
    RETURNING id
  `, tenantID, name, managerID).Scan(&id)
	return id, err
}
