package projects

import "fmt"

const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusReview     = "review"
	StatusDone       = "done"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

const (
	ProjectActive   = "active"
	ProjectArchived = "archived"
)

// BoardColumns lists the task statuses in board order.
var BoardColumns = []string{StatusTodo, StatusInProgress, StatusReview, StatusDone}

var taskTransitions = map[string][]string{
	StatusTodo:       {StatusInProgress},
	StatusInProgress: {StatusReview, StatusTodo},
	StatusReview:     {StatusDone, StatusInProgress},
	StatusDone:       {StatusTodo},
}

// ValidTaskStatus reports whether status is a known board column.
func ValidTaskStatus(status string) bool {
	_, ok := taskTransitions[status]
	return ok
}

// ValidateTransition checks a task status change against the board flow.
// Re-opening a done task moves it back to todo.
func ValidateTransition(from, to string) error {
	next, ok := taskTransitions[from]
	if !ok {
		return fmt.Errorf("unknown task status %q", from)
	}
	for _, candidate := range next {
		if candidate == to {
			return nil
		}
	}
	return fmt.Errorf("cannot move task from %q to %q", from, to)
}

func ValidPriority(priority string) bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
