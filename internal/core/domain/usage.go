package domain

import "time"

// UsageDateLayout is the canonical key format for per-day usage records.
const UsageDateLayout = "2006-01-02"

// UsageRecord accumulates consumption for one user on one calendar day.
// Created lazily on first increment; values only grow within the day.
type UsageRecord struct {
	UserID          string
	Date            string
	DataUsedBytes   int64
	TimeUsedMinutes int64
	SessionCount    int
	UpdatedAt       time.Time
}

// UsageDate renders the instant as a ledger day key in its own location.
func UsageDate(t time.Time) string {
	return t.Format(UsageDateLayout)
}
