package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teamdesk/internal/domain/access"
)

var (
	ErrInvalidState = errors.New("leave request is not in a changeable state")
	ErrInvalidRange = errors.New("invalid leave date range")
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) Submit(ctx context.Context, tenantID, userID, leaveTypeID string, start, end time.Time, startHalf, endHalf bool, reason string) (string, error) {
	days, err := CalculateRequestDays(start, end, startHalf, endHalf)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	return s.Store.CreateRequest(ctx, tenantID, Request{
		UserID:      userID,
		LeaveTypeID: leaveTypeID,
		StartDate:   start,
		EndDate:     end,
		StartHalf:   startHalf,
		EndHalf:     endHalf,
		Days:        days,
		Reason:      reason,
	})
}

// Amend rewrites the dates of a still-pending request.
func (s *Service) Amend(ctx context.Context, tenantID string, req Request, start, end time.Time, startHalf, endHalf bool, reason string) error {
	if req.Status != StatusPending {
		return ErrInvalidState
	}
	days, err := CalculateRequestDays(start, end, startHalf, endHalf)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	return s.Store.UpdateRequestDates(ctx, tenantID, req.ID, start, end, startHalf, endHalf, days, reason)
}

func (s *Service) Decide(ctx context.Context, tenantID string, req Request, approve bool, decidedBy string) error {
	if req.Status != StatusPending {
		return ErrInvalidState
	}
	status := StatusRejected
	if approve {
		status = StatusApproved
	}
	return s.Store.SetRequestStatus(ctx, tenantID, req.ID, status, decidedBy)
}

func (s *Service) Cancel(ctx context.Context, tenantID string, req Request) error {
	if req.Status != StatusPending && req.Status != StatusApproved {
		return ErrInvalidState
	}
	return s.Store.SetRequestStatus(ctx, tenantID, req.ID, StatusCancelled, "")
}

// RecordContext builds the authorization target for a leave request. The
// owner's role is resolved by the caller, which already loads the owning
// user for department scoping.
func (req Request) RecordContext(ownerRole access.Role) access.RecordContext {
	return access.RecordContext{
		OwnerID:      req.UserID,
		DepartmentID: req.DepartmentID,
		OwnerRole:    ownerRole,
	}
}
