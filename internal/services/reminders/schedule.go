package reminders

import (
	"fmt"
	"time"

	"github.com/j-veylop/leap-dashboard-tui/internal/services/settings"
)

var weekdays = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

// NextOccurrence returns the first instant strictly after now that falls on
// day at clock ("HH:MM") in now's location.
func NextOccurrence(now time.Time, day, clock string) (time.Time, error) {
	wd, ok := weekdays[day]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown weekday %q", day)
	}
	hm, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", clock, err)
	}

	offset := (int(wd) - int(now.Weekday()) + 7) % 7
	next := time.Date(now.Year(), now.Month(), now.Day()+offset, hm.Hour(), hm.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next, nil
}

// Upcoming holds the next automated sends.
type Upcoming struct {
	ContentRelease time.Time
	Nudge          time.Time
}

// NextRelease computes the next content release and accountability nudge.
func NextRelease(now time.Time, schedule settings.Schedule) (Upcoming, error) {
	release, err := NextOccurrence(now, schedule.ContentReleaseDay, schedule.ContentReleaseTime)
	if err != nil {
		return Upcoming{}, fmt.Errorf("content release: %w", err)
	}
	nudge, err := NextOccurrence(now, schedule.NudgeDay, schedule.NudgeTime)
	if err != nil {
		return Upcoming{}, fmt.Errorf("nudge: %w", err)
	}
	return Upcoming{ContentRelease: release, Nudge: nudge}, nil
}
