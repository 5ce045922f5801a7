package leave

import (
	"context"
	"time"

	"teamdesk/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) ListTypes(ctx context.Context, tenantID string) ([]LeaveType, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, code, is_paid, created_at
    FROM leave_types
    WHERE tenant_id = $1
    ORDER BY name
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []LeaveType
	for rows.Next() {
		var t LeaveType
		if err := rows.Scan(&t.ID, &t.Name, &t.Code, &t.IsPaid, &t.CreatedAt); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (s *Store) CreateType(ctx context.Context, tenantID string, payload LeaveType) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_types (tenant_id, name, code, is_paid)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, tenantID, payload.Name, payload.Code, payload.IsPaid).Scan(&id)
	return id, err
}

const requestColumns = `
    r.id, r.user_id, COALESCE(u.department_id::text, ''), r.leave_type_id,
    r.start_date, r.end_date, r.start_half, r.end_half, r.days,
    COALESCE(r.reason, ''), r.status, COALESCE(r.decided_by::text, ''), r.created_at`

func (s *Store) GetRequest(ctx context.Context, tenantID, requestID string) (Request, error) {
	var req Request
	err := s.DB.QueryRow(ctx, `
    SELECT`+requestColumns+`
    FROM leave_requests r
    JOIN users u ON r.user_id = u.id
    WHERE r.tenant_id = $1 AND r.id = $2
  `, tenantID, requestID).Scan(
		&req.ID, &req.UserID, &req.DepartmentID, &req.LeaveTypeID,
		&req.StartDate, &req.EndDate, &req.StartHalf, &req.EndHalf, &req.Days,
		&req.Reason, &req.Status, &req.DecidedBy, &req.CreatedAt,
	)
	return req, err
}

func (s *Store) ListRequests(ctx context.Context, tenantID, userID, departmentID, status string, limit, offset int) ([]Request, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT`+requestColumns+`
    FROM leave_requests r
    JOIN users u ON r.user_id = u.id
    WHERE r.tenant_id = $1
      AND ($2 = '' OR r.user_id::text = $2)
      AND ($3 = '' OR u.department_id::text = $3)
      AND ($4 = '' OR r.status = $4)
    ORDER BY r.created_at DESC
    LIMIT $5 OFFSET $6
  `, tenantID, userID, departmentID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		var req Request
		if err := rows.Scan(
			&req.ID, &req.UserID, &req.DepartmentID, &req.LeaveTypeID,
			&req.StartDate, &req.EndDate, &req.StartHalf, &req.EndHalf, &req.Days,
			&req.Reason, &req.Status, &req.DecidedBy, &req.CreatedAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (s *Store) CreateRequest(ctx context.Context, tenantID string, req Request) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_requests (tenant_id, user_id, leave_type_id, start_date, end_date, start_half, end_half, days, reason, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    RETURNING id
  `, tenantID, req.UserID, req.LeaveTypeID, req.StartDate, req.EndDate,
		req.StartHalf, req.EndHalf, req.Days, req.Reason, StatusPending).Scan(&id)
	return id, err
}

func (s *Store) UpdateRequestDates(ctx context.Context, tenantID, requestID string, start, end time.Time, startHalf, endHalf bool, days float64, reason string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE leave_requests
    SET start_date = $3, end_date = $4, start_half = $5, end_half = $6, days = $7, reason = $8
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, requestID, start, end, startHalf, endHalf, days, reason)
	return err
}

func (s *Store) SetRequestStatus(ctx context.Context, tenantID, requestID, status, decidedBy string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE leave_requests
    SET status = $3, decided_by = NULLIF($4,'')::uuid, decided_at = now()
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, requestID, status, decidedBy)
	return err
}
