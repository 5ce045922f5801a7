package notifications

import (
	"context"
	"log/slog"
	"time"

	"teamdesk/internal/platform/querier"
)

const (
	TypeLeaveApproved    = "leave_approved"
	TypeLeaveRejected    = "leave_rejected"
	TypeExpenseApproved  = "expense_approved"
	TypeExpenseRejected  = "expense_rejected"
	TypeExpensePaid      = "expense_reimbursed"
	TypeTaskAssigned     = "task_assigned"
	TypeRoleChanged      = "role_changed"
	TypeAttendanceClosed = "attendance_auto_closed"
)

type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	DB     querier.Querier
	Mailer Mailer
	From   string
}

func New(db querier.Querier, mailer Mailer, from string) *Service {
	return &Service{DB: db, Mailer: mailer, From: from}
}

// Notify stores an in-app notification and best-effort mails the user. Mail
// failures are logged, never surfaced: the in-app copy is the durable one.
func (s *Service) Notify(ctx context.Context, tenantID, userID, ntype, title, body string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO notifications (tenant_id, user_id, type, title, body)
    VALUES ($1,$2,$3,$4,$5)
  `, tenantID, userID, ntype, title, body)
	if err != nil {
		return err
	}

	if s.Mailer == nil {
		return nil
	}
	var email string
	if err := s.DB.QueryRow(ctx, `
    SELECT email FROM users WHERE tenant_id = $1 AND id = $2
  `, tenantID, userID).Scan(&email); err != nil {
		slog.Warn("notification email lookup failed", "err", err)
		return nil
	}
	if email == "" {
		return nil
	}
	if err := s.Mailer.Send(ctx, s.From, email, title, body); err != nil {
		slog.Warn("notification email send failed", "err", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, tenantID, userID string, limit, offset int) ([]Notification, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, type, title, COALESCE(body, ''), read, created_at
    FROM notifications
    WHERE tenant_id = $1 AND user_id = $2
    ORDER BY created_at DESC
    LIMIT $3 OFFSET $4
  `, tenantID, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

func (s *Service) MarkRead(ctx context.Context, tenantID, userID, notificationID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE notifications
    SET read = TRUE
    WHERE tenant_id = $1 AND user_id = $2 AND id = $3
  `, tenantID, userID, notificationID)
	return err
}
