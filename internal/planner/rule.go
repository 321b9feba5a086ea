/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package planner

import (
	"fmt"
	"strings"
	"time"
)

// intSet is a small set of integers in 0..31 stored as a bitmask. The zero
// value is empty, which rules treat as a wildcard.
type intSet uint32

func (s intSet) has(n int) bool {
	return s&(1<<uint(n)) != 0
}

func (s intSet) with(n int) intSet {
	return s | 1<<uint(n)
}

func (s intSet) empty() bool {
	return s == 0
}

// matches reports whether n satisfies the set, treating the empty set as a
// wildcard.
func (s intSet) matches(n int) bool {
	return s.empty() || s.has(n)
}

func (s intSet) values() []int {
	var out []int
	for n := 0; n < 32; n++ {
		if s.has(n) {
			out = append(out, n)
		}
	}
	return out
}

// ConditionRule is one ordered decision line. It returns its action ID when
// every predicate holds for a timestamp and NoAction otherwise.
//
// Rules are immutable values built with NewRule. The zero value is not a
// usable rule.
type ConditionRule struct {
	actionID     int
	from         TimeOfDay
	to           TimeOfDay
	workdaysOnly bool
	weekdays     intSet
	monthDays    intSet
	months       intSet
}

// ActionID returns the action the rule yields when it matches.
func (r ConditionRule) ActionID() int { return r.actionID }

// From returns the exclusive lower bound of the time window.
func (r ConditionRule) From() TimeOfDay { return r.from }

// To returns the exclusive upper bound of the time window.
func (r ConditionRule) To() TimeOfDay { return r.to }

// WorkdaysOnly reports whether the rule carries the workday condition.
func (r ConditionRule) WorkdaysOnly() bool { return r.workdaysOnly }

// Weekdays returns the ISO weekdays (Monday=1) the rule is restricted to.
// Nil means any weekday.
func (r ConditionRule) Weekdays() []int { return r.weekdays.values() }

// MonthDays returns the days of month the rule is restricted to. Nil means
// any day.
func (r ConditionRule) MonthDays() []int { return r.monthDays.values() }

// Months returns the months (January=1) the rule is restricted to. Nil means
// any month.
func (r ConditionRule) Months() []int { return r.months.values() }

// Evaluate returns the rule's action ID if at satisfies the time window, the
// workday condition, and the weekday, month-day, and month sets. Otherwise it
// returns NoAction. Fields are read in at's own location.
func (r ConditionRule) Evaluate(at time.Time, holidays *HolidaySet) int {
	if r.inWindow(at) &&
		r.workdayCondition(at, holidays) &&
		r.weekdays.matches(isoWeekday(at)) &&
		r.monthDays.matches(at.Day()) &&
		r.months.matches(int(at.Month())) {
		return r.actionID
	}
	return NoAction
}

// Matches reports whether Evaluate would return the rule's action.
func (r ConditionRule) Matches(at time.Time, holidays *HolidaySet) bool {
	return r.Evaluate(at, holidays) > NoAction
}

// inWindow is exclusive on both ends.
func (r ConditionRule) inWindow(at time.Time) bool {
	tod := TimeOfDayOf(at)
	return r.from < tod && tod < r.to
}

// workdayCondition passes on Saturdays, Sundays and holidays when the rule
// is workdays-only, the inverse of what the flag name suggests.
func (r ConditionRule) workdayCondition(at time.Time, holidays *HolidaySet) bool {
	if !r.workdaysOnly {
		return true
	}
	switch at.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	return holidays.Contains(at)
}

// Equal reports whether both rules have identical predicates and action.
func (r ConditionRule) Equal(other ConditionRule) bool {
	return r == other
}

func (r ConditionRule) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ConditionRule(action=%d, from=%s, to=%s", r.actionID, r.from, r.to)
	if r.workdaysOnly {
		b.WriteString(", workdaysOnly")
	}
	if !r.weekdays.empty() {
		fmt.Fprintf(&b, ", weekdays=%v", r.weekdays.values())
	}
	if !r.monthDays.empty() {
		fmt.Fprintf(&b, ", monthDays=%v", r.monthDays.values())
	}
	if !r.months.empty() {
		fmt.Fprintf(&b, ", months=%v", r.months.values())
	}
	b.WriteString(")")
	return b.String()
}

// isoWeekday maps time.Weekday (Sunday=0) to ISO numbering (Monday=1..Sunday=7).
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
