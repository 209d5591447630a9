package domain

import "time"

// NextDailyRun returns the first instant strictly after now at which the local
// wall clock in loc reads minuteOfDay. The result is in loc.
//
// If minuteOfDay falls into a DST gap, time.Date picks a neighbouring instant;
// the run is shifted rather than skipped.
func NextDailyRun(now time.Time, loc *time.Location, minuteOfDay int) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	if minuteOfDay < 0 || minuteOfDay > 1439 {
		minuteOfDay = 0
	}
	local := now.In(loc)
	h, m := minuteOfDay/60, minuteOfDay%60

	next := time.Date(local.Year(), local.Month(), local.Day(), h, m, 0, 0, loc)
	for !next.After(local) {
		// Rebuild from the calendar date so DST shifts keep the wall clock.
		next = time.Date(next.Year(), next.Month(), next.Day()+1, h, m, 0, 0, loc)
	}
	return next
}
