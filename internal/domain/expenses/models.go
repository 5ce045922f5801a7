package expenses

import (
	"time"

	"github.com/shopspring/decimal"

	"teamdesk/internal/domain/access"
)

type Expense struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	DepartmentID string          `json:"departmentId,omitempty"`
	Category     string          `json:"category"`
	Description  string          `json:"description,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	ExpenseDate  time.Time       `json:"expenseDate"`
	Status       string          `json:"status"`
	DecidedBy    string          `json:"decidedBy,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// RecordContext builds the authorization target for an expense.
func (e Expense) RecordContext(ownerRole access.Role) access.RecordContext {
	return access.RecordContext{
		OwnerID:      e.UserID,
		DepartmentID: e.DepartmentID,
		OwnerRole:    ownerRole,
	}
}

const (
	StatusDraft      = "draft"
	StatusSubmitted  = "submitted"
	StatusApproved   = "approved"
	StatusRejected   = "rejected"
	StatusReimbursed = "reimbursed"
)

var Categories = []string{"travel", "meals", "equipment", "software", "training", "other"}
