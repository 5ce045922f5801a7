package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) ClockIn(ctx context.Context, tenantID, userID, note string) (string, error) {
	_, err := s.Store.OpenRecord(ctx, tenantID, userID)
	if err == nil {
		return "", ErrAlreadyClockedIn
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}
	return s.Store.CreateRecord(ctx, tenantID, userID, time.Now().UTC(), note)
}

func (s *Service) ClockOut(ctx context.Context, tenantID, userID string) (Record, error) {
	rec, err := s.Store.OpenRecord(ctx, tenantID, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotClockedIn
	}
	if err != nil {
		return Record{}, err
	}

	now := time.Now().UTC()
	if err := ValidateClockOut(rec.ClockIn, now); err != nil {
		return Record{}, err
	}
	if err := s.Store.CloseRecord(ctx, rec.ID, now, false); err != nil {
		return Record{}, err
	}
	rec.ClockOut = &now
	return rec, nil
}

func (s *Service) Timesheet(ctx context.Context, tenantID, userID string, from, to time.Time) (Timesheet, error) {
	records, err := s.Store.ListRecords(ctx, tenantID, userID, from, to)
	if err != nil {
		return Timesheet{}, err
	}
	return BuildTimesheet(userID, from, to, records, time.UTC), nil
}

// AutoClose sweeps open records whose shift started more than maxOpen ago.
func (s *Service) AutoClose(ctx context.Context, maxOpen time.Duration) (int, error) {
	now := time.Now().UTC()
	return s.Store.CloseStaleRecords(ctx, now.Add(-maxOpen), now)
}
