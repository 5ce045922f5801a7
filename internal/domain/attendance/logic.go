package attendance

import (
	"errors"
	"sort"
	"time"
)

var (
	ErrAlreadyClockedIn = errors.New("open attendance record exists")
	ErrNotClockedIn     = errors.New("no open attendance record")
	ErrClockOutBeforeIn = errors.New("clock-out before clock-in")
)

// ValidateClockOut checks a proposed clock-out time against the open record.
func ValidateClockOut(clockIn, clockOut time.Time) error {
	if clockOut.Before(clockIn) {
		return ErrClockOutBeforeIn
	}
	return nil
}

// BuildTimesheet folds closed records into per-day totals. Open records are
// skipped. Days are keyed in loc, which callers default to UTC.
func BuildTimesheet(userID string, from, to time.Time, records []Record, loc *time.Location) Timesheet {
	if loc == nil {
		loc = time.UTC
	}

	byDay := map[time.Time]*TimesheetRow{}
	for _, rec := range records {
		if rec.ClockOut == nil {
			continue
		}
		day := rec.ClockIn.In(loc)
		day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
		row, ok := byDay[day]
		if !ok {
			row = &TimesheetRow{Date: day}
			byDay[day] = row
		}
		row.Entries++
		row.TotalMinutes += rec.Minutes()
	}

	rows := make([]TimesheetRow, 0, len(byDay))
	for _, row := range byDay {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	return Timesheet{UserID: userID, From: from, To: to, Rows: rows}
}
