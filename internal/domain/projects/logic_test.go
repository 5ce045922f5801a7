package projects

import "testing"

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr bool
	}{
		{name: "start work", from: StatusTodo, to: StatusInProgress},
		{name: "send to review", from: StatusInProgress, to: StatusReview},
		{name: "back to todo", from: StatusInProgress, to: StatusTodo},
		{name: "approve review", from: StatusReview, to: StatusDone},
		{name: "review rework", from: StatusReview, to: StatusInProgress},
		{name: "reopen done", from: StatusDone, to: StatusTodo},
		{name: "skip review", from: StatusInProgress, to: StatusDone, wantErr: true},
		{name: "skip progress", from: StatusTodo, to: StatusDone, wantErr: true},
		{name: "unknown from", from: "blocked", to: StatusTodo, wantErr: true},
		{name: "unknown to", from: StatusTodo, to: "blocked", wantErr: true},
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

func TestValidTaskStatus(t *testing.T) {
	for _, status := range BoardColumns {
		if !ValidTaskStatus(status) {
			t.Fatalf("expected %q to be a valid status", status)
		}
	}
	if ValidTaskStatus("archived") {
		t.Fatal("archived is not a task status")
	}
}

func TestValidPriority(t *testing.T) {
	for _, p := range []string{PriorityLow, PriorityMedium, PriorityHigh} {
		if !ValidPriority(p) {
			t.Fatalf("expected %q to be valid", p)
		}
	}
	if ValidPriority("urgent") {
		t.Fatal("urgent is not a priority")
	}
}
