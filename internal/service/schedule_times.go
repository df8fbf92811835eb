package service

import (
	"time"

	"thermostat_automation/internal/models"
)

const (
	minPreheatMinutes = 5
	clockLayout       = "15:04"
)

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// clockOn places an HH:MM clock time on day's calendar date.
func clockOn(day time.Time, hhmm string) (time.Time, bool) {
	c, err := time.Parse(clockLayout, hhmm)
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, day.Location()), true
}

// HeatStart is the fixed clock time on the arrival date in absolute mode,
// otherwise check-in minus the preheat lead (never under five minutes).
func HeatStart(checkIn time.Time, sc models.HeatingScenario) time.Time {
	if sc.PreheatMode == models.PreheatAbsolute && sc.HeatStartTime != "" {
		if t, ok := clockOn(checkIn, sc.HeatStartTime); ok {
			return t
		}
	}
	minutes := max(sc.PreheatMinutes, minPreheatMinutes)
	return checkIn.Add(-time.Duration(minutes) * time.Minute)
}

// StopAt is the scenario stop time on the checkout date, 11:00 when unset or unparsable.
func StopAt(checkOut time.Time, sc models.HeatingScenario) time.Time {
	if t, ok := clockOn(checkOut, sc.StopTime); ok {
		return t
	}
	t, _ := clockOn(checkOut, models.DefaultStopTime)
	return t
}

// InWindow reports whether checkIn falls in [startOfDay(now), startOfDay(now)+days], both ends inclusive.
func InWindow(checkIn, now time.Time, days int) bool {
	from := StartOfDay(now)
	to := from.AddDate(0, 0, days)
	return !checkIn.Before(from) && !checkIn.After(to)
}
