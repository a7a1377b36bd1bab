package domain

import (
	"fmt"
	"time"
)

type TimeRemaining struct {
	Expired bool
	Days    int64
	Hours   int64
	Minutes int64
}

// RemainingUntil splits the time left before end into whole days, hours and
// minutes. Any non-positive remainder counts as expired.
func RemainingUntil(end, now time.Time) TimeRemaining {
	left := end.Sub(now)
	if left <= 0 {
		return TimeRemaining{Expired: true}
	}
	mins := int64(left / time.Minute)
	return TimeRemaining{
		Days:    mins / (24 * 60),
		Hours:   (mins / 60) % 24,
		Minutes: mins % 60,
	}
}

func (t TimeRemaining) String() string {
	switch {
	case t.Expired:
		return "Rental expired"
	case t.Days > 0:
		return fmt.Sprintf("%dd %dh", t.Days, t.Hours)
	case t.Hours > 0:
		return fmt.Sprintf("%dh %dm", t.Hours, t.Minutes)
	default:
		return fmt.Sprintf("%dm", t.Minutes)
	}
}
