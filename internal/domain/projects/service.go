package projects

import (
	"context"
	"errors"

	"teamdesk/internal/domain/access"
)

var (
	ErrInvalidStatus     = errors.New("invalid task status")
	ErrInvalidTransition = errors.New("invalid task transition")
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) Board(ctx context.Context, tenantID, projectID string) (Board, error) {
	tasks, err := s.Store.ListTasks(ctx, tenantID, projectID)
	if err != nil {
		return Board{}, err
	}

	board := Board{ProjectID: projectID, Columns: make(map[string][]Task, len(BoardColumns))}
	for _, column := range BoardColumns {
		board.Columns[column] = []Task{}
	}
	for _, t := range tasks {
		board.Columns[t.Status] = append(board.Columns[t.Status], t)
	}
	return board, nil
}

// MoveTask validates and applies a board transition.
func (s *Service) MoveTask(ctx context.Context, tenantID, taskID, toStatus string) (Task, error) {
	if !ValidTaskStatus(toStatus) {
		return Task{}, ErrInvalidStatus
	}
	task, err := s.Store.GetTask(ctx, tenantID, taskID)
	if err != nil {
		return Task{}, err
	}
	if err := ValidateTransition(task.Status, toStatus); err != nil {
		return Task{}, errors.Join(ErrInvalidTransition, err)
	}
	if err := s.Store.UpdateTaskStatus(ctx, taskID, toStatus); err != nil {
		return Task{}, err
	}
	task.Status = toStatus
	return task, nil
}

// TaskRecordContext builds the authorization target for a task. The task's
// assignee counts as its owner for self-service edits; an unassigned task
// falls back to the reporter.
func TaskRecordContext(task Task, project Project, assigneeRole access.Role) access.RecordContext {
	ownerID := task.AssigneeID
	if ownerID == "" {
		ownerID = task.ReporterID
	}
	return access.RecordContext{
		OwnerID:      ownerID,
		DepartmentID: project.DepartmentID,
		OwnerRole:    assigneeRole,
	}
}
