package schedule

import (
	"strconv"
	"strings"
)

// DefaultPeriodicityDays is used when a periodicity is missing or unparseable.
const DefaultPeriodicityDays = 14

// DefaultPeriodicity is the periodicity string given to new companies.
const DefaultPeriodicity = "14 days"

// MaxPeriodicityDays bounds the interval so due dates stay representable.
const MaxPeriodicityDays = 36500

// ParsePeriodicityDays returns the leading integer of a periodicity string as a number of days.
//
// Only the number is read; the unit word is ignored, so "2 weeks" is 2 days.
// Digits are taken up to the first non-digit ("30days" is 30, "2.5 weeks" is 2).
// Empty, non-numeric or non-positive values fall back to DefaultPeriodicityDays.
func ParsePeriodicityDays(periodicity string) int {
	days, ok := leadingDays(periodicity)
	if !ok {
		return DefaultPeriodicityDays
	}
	return days
}

// HasExplicitPeriodicity reports whether periodicity starts with a usable day count,
// that is whether ParsePeriodicityDays would not fall back to the default.
func HasExplicitPeriodicity(periodicity string) bool {
	days, ok := leadingDays(periodicity)
	return ok && days <= MaxPeriodicityDays
}

func leadingDays(periodicity string) (int, bool) {
	fields := strings.Fields(periodicity)
	if len(fields) == 0 {
		return 0, false
	}
	token := fields[0]

	end := 0
	if end < len(token) && (token[end] == '+' || token[end] == '-') {
		end++
	}
	for end < len(token) && token[end] >= '0' && token[end] <= '9' {
		end++
	}

	days, err := strconv.Atoi(token[:end])
	if err != nil || days <= 0 {
		return 0, false
	}
	return days, true
}
