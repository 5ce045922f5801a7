package attendance

import (
	"testing"
	"time"
)

func TestValidateClockOut(t *testing.T) {
	in := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	if err := ValidateClockOut(in, in.Add(8*time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateClockOut(in, in); err != nil {
		t.Fatalf("zero-length shift should be allowed: %v", err)
	}
	if err := ValidateClockOut(in, in.Add(-time.Minute)); err == nil {
		t.Fatal("expected error for clock-out before clock-in")
	}
}

func TestRecordMinutes(t *testing.T) {
	in := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	out := in.Add(7*time.Hour + 30*time.Minute)

	rec := Record{ClockIn: in, ClockOut: &out}
	if got := rec.Minutes(); got != 450 {
		t.Fatalf("expected 450 minutes, got %d", got)
	}

	open := Record{ClockIn: in}
	if got := open.Minutes(); got != 0 {
		t.Fatalf("open record should report 0 minutes, got %d", got)
	}
}

func TestBuildTimesheet(t *testing.T) {
	day1 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	day1End := day1.Add(8 * time.Hour)
	day1Late := time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC)
	day1LateEnd := day1Late.Add(time.Hour)
	day2 := time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC)
	day2End := day2.Add(6 * time.Hour)

	records := []Record{
		{UserID: "u1", ClockIn: day1, ClockOut: &day1End},
		{UserID: "u1", ClockIn: day1Late, ClockOut: &day1LateEnd},
		{UserID: "u1", ClockIn: day2, ClockOut: &day2End},
		{UserID: "u1", ClockIn: day2.Add(24 * time.Hour)}, // open, skipped
	}

	sheet := BuildTimesheet("u1", day1, day2End, records, time.UTC)
	if len(sheet.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(sheet.Rows))
	}

	first := sheet.Rows[0]
	if first.Entries != 2 || first.TotalMinutes != 540 {
		t.Fatalf("unexpected first row: %+v", first)
	}

	second := sheet.Rows[1]
	if second.Entries != 1 || second.TotalMinutes != 360 {
		t.Fatalf("unexpected second row: %+v", second)
	}

	if !first.Date.Before(second.Date) {
		t.Fatal("rows must be sorted by date")
	}
}
