/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package planner

import (
	"sort"
	"time"
)

type monthDay struct {
	month time.Month
	day   int
}

// HolidaySet holds legal holidays compared by month and day only, so a
// holiday recorded for one year applies to every year.
//
// A planner shares one set with all of its rules. Mutating the set while the
// planner is being evaluated concurrently is not supported.
type HolidaySet struct {
	days map[monthDay]struct{}
}

// NewHolidaySet returns a set containing the given dates.
func NewHolidaySet(dates ...time.Time) *HolidaySet {
	s := &HolidaySet{days: make(map[monthDay]struct{}, len(dates))}
	for _, d := range dates {
		s.Add(d)
	}
	return s
}

// Add records the month and day of date as a holiday.
func (s *HolidaySet) Add(date time.Time) {
	if s.days == nil {
		s.days = make(map[monthDay]struct{})
	}
	s.days[monthDay{month: date.Month(), day: date.Day()}] = struct{}{}
}

// Contains reports whether the month and day of t is a holiday. A nil set
// contains nothing.
func (s *HolidaySet) Contains(t time.Time) bool {
	if s == nil {
		return false
	}
	_, ok := s.days[monthDay{month: t.Month(), day: t.Day()}]
	return ok
}

// Len returns the number of distinct month/day holidays.
func (s *HolidaySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.days)
}

// Dates returns the holidays in calendar order. The year of the returned
// dates is the leap year 2000 so that February 29 survives.
func (s *HolidaySet) Dates() []time.Time {
	if s == nil {
		return nil
	}
	out := make([]time.Time, 0, len(s.days))
	for md := range s.days {
		out = append(out, time.Date(2000, md.month, md.day, 0, 0, 0, 0, time.UTC))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
