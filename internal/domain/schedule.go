package domain

import "time"

// NextFire returns the first instant strictly after now that matches the
// slot's weekday and wall clock time in loc.
func NextFire(now time.Time, s Slot, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	days := (int(s.Weekday()) - int(local.Weekday()) + 7) % 7

	next := time.Date(local.Year(), local.Month(), local.Day()+days, s.Hour, s.Minute, 0, 0, loc)
	if !next.After(now) {
		// Same weekday, time already passed: next week.
		next = time.Date(local.Year(), local.Month(), local.Day()+days+7, s.Hour, s.Minute, 0, 0, loc)
	}
	return next
}

// LocalizeTime formats t in loc as "Mon 02 Jan 15:04 MST".
func LocalizeTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("Mon 02 Jan 15:04 MST")
}
