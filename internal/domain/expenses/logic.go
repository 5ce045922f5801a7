package expenses

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("expense amount must be positive")

var statusTransitions = map[string][]string{
	StatusDraft:      {StatusSubmitted},
	StatusSubmitted:  {StatusApproved, StatusRejected, StatusDraft},
	StatusApproved:   {StatusReimbursed},
	StatusRejected:   {StatusDraft},
	StatusReimbursed: {},
}

// ValidateTransition checks an expense lifecycle change. A rejected expense
// may be reworked back to draft; a reimbursed one is final.
func ValidateTransition(from, to string) error {
	next, ok := statusTransitions[from]
	if !ok {
		return fmt.Errorf("unknown expense status %q", from)
	}
	for _, candidate := range next {
		if candidate == to {
			return nil
		}
	}
	return fmt.Errorf("cannot move expense from %q to %q", from, to)
}

func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return nil
}

func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Total sums expense amounts; callers filter by status/currency first.
func Total(items []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range items {
		total = total.Add(e.Amount)
	}
	return total
}
