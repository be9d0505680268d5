package availability

import (
	"context"
	"fmt"
	"time"
)

// DateSet holds the "YYYY-MM-DD" days of one month that have at least one
// free slot.
type DateSet map[string]struct{}

// Contains reports membership of a day formatted as "YYYY-MM-DD".
func (d DateSet) Contains(day string) bool {
	_, ok := d[day]
	return ok
}

// AvailableDates asks the scheduler which days of a month are bookable for
// the master (or "any") and total duration. Callers must re-query whenever
// the visible month, the chosen master or the chosen duration changes; the
// result carries no slot-level detail.
func (s *Service) AvailableDates(ctx context.Context, year, month int, master string, durationMinutes int) (DateSet, error) {
	if master == "" {
		master = "any"
	}
	days, err := s.source.GetAvailableDates(ctx, master, year, month, durationMinutes)
	if err != nil {
		return nil, fmt.Errorf("availability: month %d-%02d: %w", year, month, err)
	}
	set := make(DateSet, len(days))
	for _, day := range days {
		set[day] = struct{}{}
	}
	return set, nil
}

// DaySelectable reproduces the calendar enabling policy. A day is disabled
// when it is a declared holiday, when it lies strictly before today, or when
// it belongs to the currently displayed month while a non-empty availability
// set for that month omits it. Days outside the displayed month are never
// disabled by the set: their month's data has not been loaded yet, and
// blocking them would trap the user on the current month. That asymmetry is
// intentional.
func DaySelectable(day, today time.Time, displayedYear int, displayedMonth time.Month, holidays map[string]bool, available DateSet) bool {
	dayKey := day.Format("2006-01-02")

	if holidays[dayKey] {
		return false
	}

	dayStart := truncateToDay(day)
	todayStart := truncateToDay(today)
	if dayStart.Before(todayStart) {
		return false
	}

	inDisplayedMonth := day.Year() == displayedYear && day.Month() == displayedMonth
	if inDisplayedMonth && len(available) > 0 && !available.Contains(dayKey) {
		return false
	}

	return true
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
