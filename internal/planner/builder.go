/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package planner

import (
	"fmt"
	"time"
)

// RuleBuilder assembles a ConditionRule. Setters validate eagerly; the first
// failure is kept and returned by Build, and later setters become no-ops.
type RuleBuilder struct {
	rule ConditionRule
	err  error
}

// NewRule starts a rule that yields actionID when it matches. The window
// defaults to the whole day and every set to a wildcard.
func NewRule(actionID int) *RuleBuilder {
	return &RuleBuilder{
		rule: ConditionRule{
			actionID: actionID,
			from:     StartOfDay,
			to:       EndOfDay,
		},
	}
}

// From sets the exclusive lower bound of the time window.
func (b *RuleBuilder) From(t TimeOfDay) *RuleBuilder {
	if b.err == nil {
		b.err = checkTimeOfDay("from", t)
		b.rule.from = t
	}
	return b
}

// To sets the exclusive upper bound of the time window.
func (b *RuleBuilder) To(t TimeOfDay) *RuleBuilder {
	if b.err == nil {
		b.err = checkTimeOfDay("to", t)
		b.rule.to = t
	}
	return b
}

// WorkdaysOnly enables the workday condition. Despite its name, the condition
// passes only on Saturdays, Sundays and planner holidays.
func (b *RuleBuilder) WorkdaysOnly() *RuleBuilder {
	b.rule.workdaysOnly = true
	return b
}

// Weekdays restricts the rule to ISO weekdays 1 (Monday) through 7 (Sunday).
func (b *RuleBuilder) Weekdays(days ...int) *RuleBuilder {
	b.rule.weekdays = b.addAll("weekdays", b.rule.weekdays, days, 1, 7)
	return b
}

// MonthDays restricts the rule to days of month 1 through 31.
func (b *RuleBuilder) MonthDays(days ...int) *RuleBuilder {
	b.rule.monthDays = b.addAll("monthDays", b.rule.monthDays, days, 1, 31)
	return b
}

// Months restricts the rule to months 1 (January) through 12.
func (b *RuleBuilder) Months(months ...int) *RuleBuilder {
	b.rule.months = b.addAll("months", b.rule.months, months, 1, 12)
	return b
}

// Build validates the window and returns the rule.
func (b *RuleBuilder) Build() (ConditionRule, error) {
	if b.err != nil {
		return ConditionRule{}, b.err
	}
	if b.rule.from > b.rule.to {
		return ConditionRule{}, fmt.Errorf("%w: from %s, to %s", ErrInvertedInterval, b.rule.from, b.rule.to)
	}
	return b.rule, nil
}

// MustBuild is like Build but panics on error. It suits rule tables defined
// at package level.
func (b *RuleBuilder) MustBuild() ConditionRule {
	rule, err := b.Build()
	if err != nil {
		panic(err)
	}
	return rule
}

func (b *RuleBuilder) addAll(field string, set intSet, values []int, lo, hi int) intSet {
	if b.err != nil {
		return set
	}
	for _, v := range values {
		if v < lo || v > hi {
			b.err = &RangeError{Field: field, Value: v, Min: lo, Max: hi}
			return set
		}
	}
	for _, v := range values {
		set = set.with(v)
	}
	return set
}

func checkTimeOfDay(field string, t TimeOfDay) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %s time %v is not within a day", ErrOutOfRange, field, time.Duration(t))
	}
	return nil
}
