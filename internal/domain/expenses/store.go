package expenses

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

const expenseColumns = `
    e.id, e.user_id, COALESCE(u.department_id::text, ''), e.category,
    COALESCE(e.description, ''), e.amount, e.currency, e.expense_date,
    e.status, COALESCE(e.decided_by::text, ''), e.created_at`

func (s *Store) Get(ctx context.Context, tenantID, expenseID string) (Expense, error) {
	var e Expense
	err := s.DB.QueryRow(ctx, `
    SELECT`+expenseColumns+`
    FROM expenses e
    JOIN users u ON e.user_id = u.id
    WHERE e.tenant_id = $1 AND e.id = $2
  `, tenantID, expenseID).Scan(
		&e.ID, &e.UserID, &e.DepartmentID, &e.Category, &e.Description,
		&e.Amount, &e.Currency, &e.ExpenseDate, &e.Status, &e.DecidedBy, &e.CreatedAt,
	)
	return e, err
}

func (s *Store) List(ctx context.Context, tenantID, userID, departmentID, status string, limit, offset int) ([]Expense, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT`+expenseColumns+`
    FROM expenses e
    JOIN users u ON e.user_id = u.id
    WHERE e.tenant_id = $1
      AND ($2 = '' OR e.user_id::text = $2)
      AND ($3 = '' OR u.department_id::text = $3)
      AND ($4 = '' OR e.status = $4)
    ORDER BY e.created_at DESC
    LIMIT $5 OFFSET $6
  `, tenantID, userID, departmentID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.DepartmentID, &e.Category, &e.Description,
			&e.Amount, &e.Currency, &e.ExpenseDate, &e.Status, &e.DecidedBy, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (s *Store) Create(ctx context.Context, tenantID string, e Expense) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO expenses (tenant_id, user_id, category, description, amount, currency, expense_date, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, tenantID, e.UserID, e.Category, e.Description, e.Amount, e.Currency, e.ExpenseDate, StatusDraft).Scan(&id)
	return id, err
}

func (s *Store) Update(ctx context.Context, tenantID string, e Expense) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE expenses
    SET category = $3, description = $4, amount = $5, currency = $6, expense_date = $7
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, e.ID, e.Category, e.Description, e.Amount, e.Currency, e.ExpenseDate)
	return err
}

func (s *Store) SetStatus(ctx context.Context, tenantID, expenseID, status, decidedBy string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE expenses
    SET status = $3, decided_by = NULLIF($4,'')::uuid, decided_at = now()
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, expenseID, status, decidedBy)
	return err
}
