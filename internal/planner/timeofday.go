/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package planner

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time expressed as the offset from midnight.
type TimeOfDay time.Duration

const (
	// StartOfDay is midnight, the default lower bound of a rule window.
	StartOfDay TimeOfDay = 0

	// EndOfDay is the last representable instant of a day, the default
	// upper bound of a rule window.
	EndOfDay = TimeOfDay(24*time.Hour - time.Nanosecond)
)

// TimeOf returns the time of day for the given clock fields. It does not
// validate; rule construction rejects values outside a day.
func TimeOf(hour, minute, second int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour +
		time.Duration(minute)*time.Minute +
		time.Duration(second)*time.Second)
}

// TimeOfDayOf extracts the wall-clock time of t in t's own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOf(t.Hour(), t.Minute(), t.Second()) + TimeOfDay(t.Nanosecond())
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("parse time of day %q: want HH:MM or HH:MM:SS", s)
	}

	limits := []int{23, 59, 59}
	fields := make([]int, 3)
	for i, part := range parts {
		if len(part) != 2 || !isDigit(part[0]) || !isDigit(part[1]) {
			return 0, fmt.Errorf("parse time of day %q: invalid field %q", s, part)
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("parse time of day %q: invalid field %q", s, part)
		}
		if n < 0 || n > limits[i] {
			return 0, fmt.Errorf("parse time of day %q: field %q out of range 0..%d", s, part, limits[i])
		}
		fields[i] = n
	}
	return TimeOf(fields[0], fields[1], fields[2]), nil
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// Valid reports whether t lies within a single day.
func (t TimeOfDay) Valid() bool {
	return t >= StartOfDay && t <= EndOfDay
}

func (t TimeOfDay) String() string {
	d := time.Duration(t)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	ns := d - s*time.Second
	if ns != 0 {
		return fmt.Sprintf("%02d:%02d:%02d.%09d", h, m, s, ns)
	}
	if s != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}
