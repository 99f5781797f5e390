package delivery

import (
	"strings"
	"time"
)

const carrierTimeLayout = "02/01/2006 15:04:05"

// ParseStatusDate accepts the carrier's DD/MM/YYYY[ HH:mm:ss] format or an
// ISO-8601 timestamp, selected by which delimiter the value carries.
func ParseStatusDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	if strings.Contains(value, "/") {
		if t, err := time.Parse(carrierTimeLayout, value); err == nil {
			return t, true
		}
		if t, err := time.Parse("02/01/2006", value); err == nil {
			return t, true
		}
		return time.Time{}, false
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// IsStuck reports whether an order has sat in its current stage longer than
// stuckAfter, by wall-clock subtraction. Unparseable dates never flag: bad
// data must not page anyone. Callers skip delivered orders entirely.
func IsStuck(statusDate string, now time.Time, stuckAfter time.Duration) bool {
	t, ok := ParseStatusDate(statusDate)
	if !ok {
		return false
	}
	return now.Sub(t) > stuckAfter
}
