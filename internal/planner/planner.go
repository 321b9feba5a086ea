/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package planner selects an action identifier for a point in time.
//
// A Planner holds an ordered list of condition rules, a default action and a
// shared holiday set. For a given timestamp it returns the action of the first
// rule whose predicates all hold, or the default when none does. Rules are
// authored in priority order: overrides first, catch-alls last.
//
// The package never reads the wall clock; callers supply every timestamp.
package planner

import "time"

// NoAction is returned by ConditionRule.Evaluate when the rule does not
// match. It must not be used as an action ID.
const NoAction = -1

// Planner evaluates rules in insertion order; the first match wins.
//
// ActionID and ResolveRule are safe for concurrent use once all AddRule calls
// and holiday changes have completed.
type Planner struct {
	rules           []ConditionRule
	defaultActionID int
	holidays        *HolidaySet
}

// New creates a planner returning defaultActionID when no rule matches. A
// nil holiday set means no date is treated as a holiday.
func New(defaultActionID int, holidays *HolidaySet) *Planner {
	if holidays == nil {
		holidays = NewHolidaySet()
	}
	return &Planner{
		defaultActionID: defaultActionID,
		holidays:        holidays,
	}
}

// AddRule appends rule to the evaluation order. The rule is evaluated
// against the planner's holiday set.
func (p *Planner) AddRule(rule ConditionRule) {
	p.rules = append(p.rules, rule)
}

// DefaultActionID returns the action used when no rule matches.
func (p *Planner) DefaultActionID() int {
	return p.defaultActionID
}

// Holidays returns the set shared by every rule of the planner. Changes to
// it are seen by all rules.
func (p *Planner) Holidays() *HolidaySet {
	return p.holidays
}

// Rules returns the registered rules in evaluation order.
func (p *Planner) Rules() []ConditionRule {
	out := make([]ConditionRule, len(p.rules))
	copy(out, p.rules)
	return out
}

// Len returns the number of registered rules.
func (p *Planner) Len() int {
	return len(p.rules)
}

// Match returns the position of the first rule matching at, or -1.
// Evaluation stops at the first match.
func (p *Planner) Match(at time.Time) int {
	for i := range p.rules {
		if p.rules[i].Evaluate(at, p.holidays) > NoAction {
			return i
		}
	}
	return -1
}

// ResolveRule returns the first rule matching at. The boolean is false when
// no rule matches.
func (p *Planner) ResolveRule(at time.Time) (ConditionRule, bool) {
	i := p.Match(at)
	if i < 0 {
		return ConditionRule{}, false
	}
	return p.rules[i], true
}

// ActionID returns the action of the first rule matching at, or the default.
func (p *Planner) ActionID(at time.Time) int {
	if rule, ok := p.ResolveRule(at); ok {
		return rule.ActionID()
	}
	return p.defaultActionID
}
