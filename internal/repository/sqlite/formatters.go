package sqlite

import (
	"time"
)

// dbTimeLayout is fixed width and always rendered in UTC, so stored values
// sort and compare lexically in the same order as the instants they encode.
const dbTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTimeForDB formats a time.Time value for consistent database storage
func FormatTimeForDB(t time.Time) string {
	return t.UTC().Format(dbTimeLayout)
}

// FormatTimePtrForDB formats a *time.Time value, returning nil if the pointer is nil
func FormatTimePtrForDB(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return FormatTimeForDB(*t)
}

// ParseTimeFromDB parses a stored timestamp. RFC3339 values written by
// other tools are accepted as well.
func ParseTimeFromDB(s string) (time.Time, error) {
	if t, err := time.Parse(dbTimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
