package expenses

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr bool
	}{
		{name: "submit draft", from: StatusDraft, to: StatusSubmitted},
		{name: "approve", from: StatusSubmitted, to: StatusApproved},
		{name: "reject", from: StatusSubmitted, to: StatusRejected},
		{name: "withdraw", from: StatusSubmitted, to: StatusDraft},
		{name: "reimburse", from: StatusApproved, to: StatusReimbursed},
		{name: "rework rejected", from: StatusRejected, to: StatusDraft},
		{name: "reimburse draft", from: StatusDraft, to: StatusReimbursed, wantErr: true},
		{name: "approve draft", from: StatusDraft, to: StatusApproved, wantErr: true},
		{name: "reopen reimbursed", from: StatusReimbursed, to: StatusDraft, wantErr: true},
		{name: "unknown status", from: "pending", to: StatusApproved, wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTransition(tc.from, tc.to)
			if tc.wantErr && err == nil {
				t.Fatal("expected transition error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateAmount(t *testing.T) {
	if err := ValidateAmount(decimal.NewFromFloat(12.50)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateAmount(decimal.Zero); err == nil {
		t.Fatal("expected error for zero amount")
	}
	if err := ValidateAmount(decimal.NewFromInt(-5)); err == nil {
		t.Fatal("expected error for negative amount")
	}
}

func TestTotal(t *testing.T) {
	items := []Expense{
		{Amount: decimal.RequireFromString("10.10")},
		{Amount: decimal.RequireFromString("0.90")},
		{Amount: decimal.RequireFromString("5.00")},
	}
	if got := Total(items); !got.Equal(decimal.RequireFromString("16.00")) {
		t.Fatalf("expected 16.00, got %s", got)
	}
}
