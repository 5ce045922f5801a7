package leave

import "time"

type LeaveType struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	IsPaid    bool      `json:"isPaid"`
	CreatedAt time.Time `json:"createdAt"`
}

type Request struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	DepartmentID string    `json:"departmentId,omitempty"`
	LeaveTypeID  string    `json:"leaveTypeId"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	StartHalf    bool      `json:"startHalf"`
	EndHalf      bool      `json:"endHalf"`
	Days         float64   `json:"days"`
	Reason       string    `json:"reason,omitempty"`
	Status       string    `json:"status"`
	DecidedBy    string    `json:"decidedBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)
