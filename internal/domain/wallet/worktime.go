package wallet

import "time"

// IsWorkHour reports whether the hour starting at t counts as worked for a
// daily window [startHour, endHour). Saturdays and Sundays never count.
// A window with startHour > endHour wraps over midnight. Granularity is
// whole hours; minutes within t are irrelevant.
func IsWorkHour(t time.Time, startHour, endHour int) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	h := t.Hour()
	if startHour <= endHour {
		return h >= startHour && h < endHour
	}
	// overnight shift, e.g. 22-6
	return h >= startHour || h < endHour
}
