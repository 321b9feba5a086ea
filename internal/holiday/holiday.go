/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package holiday turns holiday calendar entries into planner holiday sets.
//
// An entry is one of:
//   - a builtin calendar name, e.g. "cz"
//   - a full date "2006-01-02"
//   - a year-independent date "01-02"
//   - a recurrence rule "FREQ=YEARLY;BYMONTH=5;BYMONTHDAY=1", optionally
//     prefixed with "RRULE:", expanded over the requested years
package holiday

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/friendsincode/glada/internal/planner"
)

// carrierYear holds year-independent dates. It is a leap year so that
// February 29 is representable.
const carrierYear = 2000

var (
	// ErrInvalidEntry indicates a holiday entry that could not be parsed.
	ErrInvalidEntry = errors.New("invalid holiday entry")

	// ErrNoYears indicates a recurrence rule given without a year range.
	ErrNoYears = errors.New("recurring holiday requires at least one year")
)

var builtins = map[string][]time.Time{
	// Czech legal holidays, 2020 edition. Easter dates are fixed to that year.
	"cz": {
		date(2020, 1, 1), date(2020, 4, 7), date(2020, 4, 10), date(2020, 5, 1),
		date(2020, 5, 8), date(2020, 7, 5), date(2020, 7, 6), date(2020, 9, 28),
		date(2020, 10, 28), date(2020, 11, 17), date(2020, 12, 24),
		date(2020, 12, 25), date(2020, 12, 26),
	},
}

// Builtin returns the dates of a named calendar.
func Builtin(name string) ([]time.Time, bool) {
	dates, ok := builtins[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	out := make([]time.Time, len(dates))
	copy(out, dates)
	return out, true
}

// Parse expands a single entry into dates. Recurrence rules are expanded over
// years; other entries ignore it.
func Parse(entry string, years []int) ([]time.Time, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidEntry)
	}

	if dates, ok := Builtin(entry); ok {
		return dates, nil
	}

	upper := strings.ToUpper(entry)
	if strings.HasPrefix(upper, "RRULE:") || strings.HasPrefix(upper, "FREQ=") {
		return expandRule(entry, years)
	}

	switch strings.Count(entry, "-") {
	case 2:
		d, err := time.Parse("2006-01-02", entry)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidEntry, entry, err)
		}
		return []time.Time{d}, nil
	case 1:
		d, err := parseMonthDay(entry)
		if err != nil {
			return nil, err
		}
		return []time.Time{d}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidEntry, entry)
}

// Set builds a planner holiday set from entries.
func Set(entries []string, years []int) (*planner.HolidaySet, error) {
	set := planner.NewHolidaySet()
	for i, entry := range entries {
		dates, err := Parse(entry, years)
		if err != nil {
			return nil, fmt.Errorf("holiday %d: %w", i, err)
		}
		for _, d := range dates {
			set.Add(d)
		}
	}
	return set, nil
}

// Years returns the inclusive range of years from..to.
func Years(from, to int) []int {
	if to < from {
		return nil
	}
	out := make([]int, 0, to-from+1)
	for y := from; y <= to; y++ {
		out = append(out, y)
	}
	return out
}

func expandRule(entry string, years []int) ([]time.Time, error) {
	if len(years) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoYears, entry)
	}
	spec := entry
	if strings.HasPrefix(strings.ToUpper(spec), "RRULE:") {
		spec = spec[len("RRULE:"):]
	}

	rule, err := rrule.StrToRRule(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidEntry, entry, err)
	}

	lo, hi := years[0], years[0]
	for _, y := range years[1:] {
		if y < lo {
			lo = y
		}
		if y > hi {
			hi = y
		}
	}
	start := time.Date(lo, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(hi, 12, 31, 23, 59, 59, 0, time.UTC)
	rule.DTStart(start)

	return rule.Between(start, end, true), nil
}

func parseMonthDay(entry string) (time.Time, error) {
	parts := strings.SplitN(entry, "-", 2)
	month, errM := strconv.Atoi(parts[0])
	day, errD := strconv.Atoi(parts[1])
	if errM != nil || errD != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidEntry, entry)
	}
	d := date(carrierYear, time.Month(month), day)
	if month < 1 || month > 12 || d.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %q is not a calendar day", ErrInvalidEntry, entry)
	}
	return d, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
