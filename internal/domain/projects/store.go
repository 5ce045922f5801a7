package projects

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

func (s *Store) GetProject(ctx context.Context, tenantID, projectID string) (Project, error) {
	var p Project
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, COALESCE(description, ''), COALESCE(department_id::text, ''),
           owner_id, status, created_at, updated_at
    FROM projects
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, projectID).Scan(
		&p.ID, &p.Name, &p.Description, &p.DepartmentID, &p.OwnerID, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (s *Store) ListProjects(ctx context.Context, tenantID, departmentID string) ([]Project, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, COALESCE(description, ''), COALESCE(department_id::text, ''),
           owner_id, status, created_at, updated_at
    FROM projects
    WHERE tenant_id = $1 AND ($2 = '' OR department_id::text = $2)
    ORDER BY name
  `, tenantID, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.DepartmentID, &p.OwnerID, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *Store) CreateProject(ctx context.Context, tenantID string, p Project) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO projects (tenant_id, name, description, department_id, owner_id, status)
    VALUES ($1,$2,$3,NULLIF($4,'')::uuid,$5,$6)
    RETURNING id
  `, tenantID, p.Name, p.Description, p.DepartmentID, p.OwnerID, ProjectActive).Scan(&id)
	return id, err
}

func (s *Store) ArchiveProject(ctx context.Context, tenantID, projectID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE projects
    SET status = $3, updated_at = now()
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, projectID, ProjectArchived)
	return err
}

func (s *Store) GetTask(ctx context.Context, tenantID, taskID string) (Task, error) {
	var t Task
	err := s.DB.QueryRow(ctx, `
    SELECT t.id, t.project_id, t.title, COALESCE(t.description, ''), t.status, t.priority,
           COALESCE(t.assignee_id::text, ''), t.reporter_id, t.due_date, t.created_at, t.updated_at
    FROM tasks t
    JOIN projects p ON t.project_id = p.id
    WHERE p.tenant_id = $1 AND t.id = $2
  `, tenantID, taskID).Scan(
		&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.AssigneeID, &t.ReporterID, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (s *Store) ListTasks(ctx context.Context, tenantID, projectID string) ([]Task, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT t.id, t.project_id, t.title, COALESCE(t.description, ''), t.status, t.priority,
           COALESCE(t.assignee_id::text, ''), t.reporter_id, t.due_date, t.created_at, t.updated_at
    FROM tasks t
    JOIN projects p ON t.project_id = p.id
    WHERE p.tenant_id = $1 AND t.project_id = $2
    ORDER BY t.created_at
  `, tenantID, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(
			&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority,
			&t.AssigneeID, &t.ReporterID, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) CreateTask(ctx context.Context, t Task) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO tasks (project_id, title, description, status, priority, assignee_id, reporter_id, due_date)
    VALUES ($1,$2,$3,$4,$5,NULLIF($6,'')::uuid,$7,$8)
    RETURNING id
  `, t.ProjectID, t.Title, t.Description, StatusTodo, t.Priority, t.AssigneeID, t.ReporterID, t.DueDate).Scan(&id)
	return id, err
}

func (s *Store) UpdateTask(ctx context.Context, taskID, title, description, priority, assigneeID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE tasks
    SET title = $2, description = $3, priority = $4, assignee_id = NULLIF($5,'')::uuid, updated_at = now()
    WHERE id = $1
  `, taskID, title, description, priority, assigneeID)
	return err
}

func (s *Store) UpdateTaskStatus(ctx context.Context, taskID, status string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE tasks
    SET status = $2, updated_at = now()
    WHERE id = $1
  `, taskID, status)
	return err
}
