package attendance

import (
	"context"
	"time"

	"teamdesk/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) OpenRecord(ctx context.Context, tenantID, userID string) (Record, error) {
	var rec Record
	err := s.DB.QueryRow(ctx, `
    SELECT id, user_id, clock_in, clock_out, COALESCE(note, ''), auto_closed, created_at
    FROM attendance_records
    WHERE tenant_id = $1 AND user_id = $2 AND clock_out IS NULL
  `, tenantID, userID).Scan(&rec.ID, &rec.UserID, &rec.ClockIn, &rec.ClockOut, &rec.Note, &rec.AutoClose, &rec.CreatedAt)
	return rec, err
}

func (s *Store) CreateRecord(ctx context.Context, tenantID, userID string, clockIn time.Time, note string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO attendance_records (tenant_id, user_id, clock_in, note)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, tenantID, userID, clockIn, note).Scan(&id)
	return id, err
}

func (s *Store) CloseRecord(ctx context.Context, recordID string, clockOut time.Time, autoClosed bool) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE attendance_records
    SET clock_out = $2, auto_closed = $3
    WHERE id = $1 AND clock_out IS NULL
  `, recordID, clockOut, autoClosed)
	return err
}

func (s *Store) ListRecords(ctx context.Context, tenantID, userID string, from, to time.Time) ([]Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, user_id, clock_in, clock_out, COALESCE(note, ''), auto_closed, created_at
    FROM attendance_records
    WHERE tenant_id = $1 AND user_id = $2 AND clock_in >= $3 AND clock_in < $4
    ORDER BY clock_in
  `, tenantID, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ClockIn, &rec.ClockOut, &rec.Note, &rec.AutoClose, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CloseStaleRecords closes every open record older than cutoff, marking it as
// auto-closed. Returns the number of records touched.
func (s *Store) CloseStaleRecords(ctx context.Context, cutoff, closeAt time.Time) (int, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE attendance_records
    SET clock_out = $2, auto_closed = TRUE
    WHERE clock_out IS NULL AND clock_in < $1
  `, cutoff, closeAt)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
