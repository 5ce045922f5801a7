package attendance

import "time"

type Record struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	ClockIn   time.Time  `json:"clockIn"`
	ClockOut  *time.Time `json:"clockOut,omitempty"`
	Note      string     `json:"note,omitempty"`
	AutoClose bool       `json:"autoClosed"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Minutes returns the worked duration, zero while the record is still open.
func (r Record) Minutes() int {
	if r.ClockOut == nil {
		return 0
	}
	return int(r.ClockOut.Sub(r.ClockIn).Minutes())
}

// TimesheetRow aggregates one day of a user's attendance.
type TimesheetRow struct {
	Date         time.Time `json:"date"`
	Entries      int       `json:"entries"`
	TotalMinutes int       `json:"totalMinutes"`
}

type Timesheet struct {
	UserID string         `json:"userId"`
	From   time.Time      `json:"from"`
	To     time.Time      `json:"to"`
	Rows   []TimesheetRow `json:"rows"`
}
