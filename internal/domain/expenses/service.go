package expenses

import (
	"context"
	"errors"
	"fmt"
)

var ErrInvalidState = errors.New("expense is not in a changeable state")

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) Create(ctx context.Context, tenantID string, e Expense) (string, error) {
	if err := ValidateAmount(e.Amount); err != nil {
		return "", err
	}
	if !ValidCategory(e.Category) {
		return "", fmt.Errorf("unknown expense category %q", e.Category)
	}
	return s.Store.Create(ctx, tenantID, e)
}

// UpdateDraft rewrites an expense while it is still editable by its owner.
func (s *Service) UpdateDraft(ctx context.Context, tenantID string, existing, updated Expense) error {
	if existing.Status != StatusDraft && existing.Status != StatusRejected {
		return ErrInvalidState
	}
	if err := ValidateAmount(updated.Amount); err != nil {
		return err
	}
	if !ValidCategory(updated.Category) {
		return fmt.Errorf("unknown expense category %q", updated.Category)
	}
	updated.ID = existing.ID
	return s.Store.Update(ctx, tenantID, updated)
}

func (s *Service) Transition(ctx context.Context, tenantID string, e Expense, toStatus, decidedBy string) error {
	if err := ValidateTransition(e.Status, toStatus); err != nil {
		return errors.Join(ErrInvalidState, err)
	}
	return s.Store.SetStatus(ctx, tenantID, e.ID, toStatus, decidedBy)
}
