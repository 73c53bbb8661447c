package models

import (
	"strings"
	"time"
)

// Status is the stay lifecycle state of a booking.
type Status string

const (
	StatusUnconfirmed Status = "unconfirmed"
	StatusCheckedIn   Status = "checked-in"
	StatusCheckedOut  Status = "checked-out"
)

var allStatuses = []Status{StatusUnconfirmed, StatusCheckedIn, StatusCheckedOut}

// Statuses returns every lifecycle state in transition order.
func Statuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

func ParseStatus(raw string) (Status, bool) {
	candidate := Status(strings.ToLower(strings.TrimSpace(raw)))
	if candidate.Valid() {
		return candidate, true
	}
	return "", false
}

func (s Status) Valid() bool {
	switch s {
	case StatusUnconfirmed, StatusCheckedIn, StatusCheckedOut:
		return true
	}
	return false
}

// Confirmed reports whether the guest actually arrived.
func (s Status) Confirmed() bool {
	return s == StatusCheckedIn || s == StatusCheckedOut
}

func (s Status) String() string {
	return string(s)
}

// DeriveStatus computes the date-advisory status of a stay relative to today.
// All three arguments are compared as calendar dates.
//
// A persisted status set by check-in or check-out wins over this value; the
// status sync job only reports the disagreement unless configured to apply it.
func DeriveStatus(start, end, today time.Time) Status {
	start, end, today = DateOf(start), DateOf(end), DateOf(today)

	if end.Before(today) {
		return StatusCheckedOut
	}
	if !start.Before(today) {
		return StatusUnconfirmed
	}
	return StatusCheckedIn
}
