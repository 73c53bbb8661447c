package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// DateOf drops the time of day from t, keeping the calendar date as seen in t's location.
// The result is midnight UTC so dates compare and subtract exactly.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the calendar date of now in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(now.In(loc))
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	parsed, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return parsed, nil
}

func FormatDate(t time.Time) string {
	return DateOf(t).Format(DateLayout)
}

// DaysBetween counts whole calendar days from start to end; negative when end precedes start.
func DaysBetween(end, start time.Time) int {
	return int(DateOf(end).Sub(DateOf(start)).Hours() / 24)
}
