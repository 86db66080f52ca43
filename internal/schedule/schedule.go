package schedule

import (
	"slices"
	"strconv"
	"time"
)

// maxRecent is the number of communications reported in Status.LastFive.
const maxRecent = 5

// day is the length added per periodicity day. Due dates keep the time of day of the
// last communication and are not normalized to midnight.
const day = 24 * time.Hour

// byRecency returns the indices of events ordered most recent first.
// Equal dates are ordered by insertion, later-inserted first.
func byRecency(events []Event) []int {
	order := make([]int, len(events))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		if c := events[b].Date.Compare(events[a].Date); c != 0 {
			return c
		}
		return b - a
	})
	return order
}

// Latest returns the most recent event. Among events with the same date the one inserted
// last wins. The second result is false when events is empty.
func Latest(events []Event) (Event, bool) {
	if len(events) == 0 {
		return Event{}, false
	}
	best := 0
	for i := 1; i < len(events); i++ {
		if !events[i].Date.Before(events[best].Date) {
			best = i
		}
	}
	return events[best], true
}

// LastFive returns up to five events ordered most recent first.
// The input slice is not modified.
func LastFive(events []Event) []Event {
	order := byRecency(events)
	if len(order) > maxRecent {
		order = order[:maxRecent]
	}
	recent := make([]Event, len(order))
	for i, idx := range order {
		recent[i] = events[idx]
	}
	return recent
}

// Validate checks that every event can be ordered.
func Validate(events []Event) error {
	for i, e := range events {
		if e.Date.IsZero() {
			return &InvalidEventError{Index: i, Reason: "missing date"}
		}
		if !e.Type.Valid() {
			return &InvalidEventError{Index: i, Reason: "unknown type " + strconv.Quote(string(e.Type))}
		}
	}
	return nil
}

// Compute derives the follow-up status from a company's communications.
//
// The next communication is due periodicityDays after the most recent one and is assumed to
// repeat its type. Overdue means the due instant is strictly before now. Due today means the
// due instant falls on now's calendar day in now's location. A non-positive periodicity uses
// DefaultPeriodicityDays and one above MaxPeriodicityDays is clamped to it.
func Compute(events []Event, periodicityDays int, now time.Time) (Status, error) {
	if err := Validate(events); err != nil {
		return Status{}, err
	}
	if periodicityDays <= 0 {
		periodicityDays = DefaultPeriodicityDays
	}
	periodicityDays = min(periodicityDays, MaxPeriodicityDays)

	status := Status{LastFive: LastFive(events)}

	last, ok := Latest(events)
	if !ok {
		return status, nil
	}

	dueAt := last.Date.Add(time.Duration(periodicityDays) * day)
	status.IsOverdue = dueAt.Before(now)
	status.IsDueToday = onSameDay(dueAt, now)
	status.NextScheduled = &Next{Type: last.Type, Date: dueAt}
	return status, nil
}

// ComputeFromString parses periodicity with ParsePeriodicityDays and calls Compute.
func ComputeFromString(events []Event, periodicity string, now time.Time) (Status, error) {
	return Compute(events, ParsePeriodicityDays(periodicity), now)
}

// onSameDay reports whether t lies within the calendar day containing now, using now's location.
func onSameDay(t, now time.Time) bool {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)
	return !t.Before(start) && t.Before(end)
}
