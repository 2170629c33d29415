package domain

import "time"

// CommuteStatus is a passenger's declared intent for one calendar day.
type CommuteStatus string

const (
	CommuteStatusComing CommuteStatus = "coming"
	CommuteStatusAbsent CommuteStatus = "absent"
)

// DailyStatus is the once-per-day commute declaration.
// Exactly one record may exist per (UserID, Date); it is never updated.
type DailyStatus struct {
	UserID    string
	Date      string // "YYYY-MM-DD"
	Status    CommuteStatus
	DriverID  string // driver in effect when declared
	UpdatedAt time.Time
}

// DateOf formats an instant as the calendar date key used for daily statuses.
func DateOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
