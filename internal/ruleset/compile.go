/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package ruleset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/friendsincode/glada/internal/holiday"
	"github.com/friendsincode/glada/internal/planner"
)

// validationYear is the year recurring holidays are expanded over when a
// document is only validated.
const validationYear = 2000

var (
	// ErrInvalidDocument wraps every content error reported by Compile and
	// Validate, so callers can tell bad input from storage failures.
	ErrInvalidDocument = errors.New("invalid rule set document")

	// ErrReservedAction indicates a document using planner.NoAction as an action.
	ErrReservedAction = errors.New("action -1 is reserved")

	// ErrMissingName indicates a document without a name.
	ErrMissingName = errors.New("rule set name is required")
)

// RuleError locates a failure in a specific rule of a document.
type RuleError struct {
	Index int // zero-based position in Document.Rules
	Name  string
	Err   error
}

func (e *RuleError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("rule %d (%s): %v", e.Index, e.Name, e.Err)
	}
	return fmt.Sprintf("rule %d: %v", e.Index, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

// Compile builds a planner from doc. Recurring holidays are expanded for
// year only: the planner compares holidays by month and day, so dates from
// other years would leak into this one.
func Compile(doc *Document, year int) (*planner.Planner, error) {
	if doc.DefaultAction == planner.NoAction {
		return nil, invalid(fmt.Errorf("default_action: %w", ErrReservedAction))
	}

	holidays, err := holiday.Set(doc.Holidays, []int{year})
	if err != nil {
		return nil, invalid(err)
	}

	p := planner.New(doc.DefaultAction, holidays)
	for i, spec := range doc.Rules {
		rule, err := BuildRule(spec)
		if err != nil {
			return nil, invalid(&RuleError{Index: i, Name: spec.Name, Err: err})
		}
		p.AddRule(rule)
	}
	return p, nil
}

// Validate checks doc without keeping the planner.
func Validate(doc *Document) error {
	if strings.TrimSpace(doc.Name) == "" {
		return invalid(ErrMissingName)
	}
	_, err := Compile(doc, validationYear)
	return err
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
}

// BuildRule converts one spec into a planner rule.
func BuildRule(spec RuleSpec) (planner.ConditionRule, error) {
	if spec.Action == planner.NoAction {
		return planner.ConditionRule{}, ErrReservedAction
	}

	b := planner.NewRule(spec.Action)
	if spec.From != "" {
		from, err := planner.ParseTimeOfDay(spec.From)
		if err != nil {
			return planner.ConditionRule{}, fmt.Errorf("from: %w", err)
		}
		b.From(from)
	}
	if spec.To != "" {
		to, err := planner.ParseTimeOfDay(spec.To)
		if err != nil {
			return planner.ConditionRule{}, fmt.Errorf("to: %w", err)
		}
		b.To(to)
	}
	if spec.WorkdaysOnly {
		b.WorkdaysOnly()
	}
	return b.Weekdays(weekdayInts(spec.Weekdays)...).
		MonthDays(spec.MonthDays...).
		Months(spec.Months...).
		Build()
}
