package service

import "time"

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// nextBusinessDay returns midnight of the first business day strictly
// after t. Bookings are never same-day: the earliest reservable moment
// is always the following weekday.
func nextBusinessDay(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
	for isWeekend(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// addBusinessDays returns t advanced by n business days, skipping
// weekends. t is assumed to be a business day.
func addBusinessDays(t time.Time, n int) time.Time {
	d := t
	for i := 0; i < n; i++ {
		d = d.AddDate(0, 0, 1)
		for isWeekend(d) {
			d = d.AddDate(0, 0, 1)
		}
	}
	return d
}

// businessDaysBetween counts the business days from a (exclusive of
// weekend days) up to b. Returns 0 when b is not after a.
func businessDaysBetween(a, b time.Time) int {
	if !b.After(a) {
		return 0
	}
	days := 0
	d := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, a.Location())
	end := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, b.Location())
	for d.Before(end) {
		d = d.AddDate(0, 0, 1)
		if !isWeekend(d) {
			days++
		}
	}
	return days
}
