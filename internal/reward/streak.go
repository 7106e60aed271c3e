package reward

import (
	"time"

	"byte-battle/internal/store"
)

// civilDate maps the calendar day of t in loc onto a UTC midnight so dates
// compare independently of the stored zone.
func civilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayStart(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// advanceStreak applies one day of activity to the actor's streak counters.
func advanceStreak(a *store.Actor, today time.Time) {
	switch {
	case a.LastActivityDate == nil:
		a.CurrentStreak = 1
	default:
		last := *a.LastActivityDate
		y, m, d := last.Date()
		last = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		switch {
		case last.Equal(today):
			if a.CurrentStreak == 0 {
				a.CurrentStreak = 1
			}
		case last.AddDate(0, 0, 1).Equal(today):
			a.CurrentStreak++
		default:
			a.CurrentStreak = 1
		}
	}
	if a.CurrentStreak > a.LongestStreak {
		a.LongestStreak = a.CurrentStreak
	}
	day := today
	a.LastActivityDate = &day
}

// liveStreak is the current streak as of today. A streak whose last active
// day is older than yesterday has lapsed and reads as zero.
func liveStreak(a store.Actor, today time.Time) int {
	if a.LastActivityDate == nil {
		return 0
	}
	y, m, d := a.LastActivityDate.Date()
	last := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if last.AddDate(0, 0, 1).Before(today) {
		return 0
	}
	return a.CurrentStreak
}
