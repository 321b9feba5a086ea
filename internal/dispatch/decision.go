/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package dispatch

import (
	"errors"
	"fmt"
	"time"

	"github.com/friendsincode/glada/internal/planner"
	"github.com/friendsincode/glada/internal/ruleset"
)

// ErrInvalidInstant is returned by ParseInstant for unrecognised input.
var ErrInvalidInstant = errors.New("invalid instant")

// Decision is the answer to "which action applies at this instant".
type Decision struct {
	RuleSetID string    `json:"rule_set_id,omitempty"`
	ActionID  int       `json:"action_id"`
	Matched   bool      `json:"matched"`
	RuleIndex int       `json:"rule_index"` // -1 when the default action applied
	RuleName  string    `json:"rule_name,omitempty"`
	Rule      string    `json:"rule,omitempty"`
	Default   bool      `json:"default"`
	At        time.Time `json:"at"`
}

// Evaluate runs p at the given instant. doc supplies rule names and may be nil.
func Evaluate(p *planner.Planner, doc *ruleset.Document, at time.Time) Decision {
	d := Decision{
		ActionID:  p.DefaultActionID(),
		RuleIndex: -1,
		Default:   true,
		At:        at,
	}

	idx := p.Match(at)
	if idx < 0 {
		return d
	}

	rule := p.Rules()[idx]
	d.ActionID = rule.ActionID()
	d.Matched = true
	d.Default = false
	d.RuleIndex = idx
	d.Rule = rule.String()
	if doc != nil && idx < len(doc.Rules) {
		d.RuleName = doc.Rules[idx].Name
	}
	return d
}

// EvaluateDocument compiles doc for the year of at and evaluates it.
func EvaluateDocument(doc *ruleset.Document, at time.Time) (Decision, error) {
	p, err := ruleset.Compile(doc, at.Year())
	if err != nil {
		return Decision{}, err
	}
	return Evaluate(p, doc, at), nil
}

var localLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseInstant parses an RFC 3339 timestamp or a zone-less local form such
// as "2023-06-01 14:00". Zone-less forms are read in loc.
func ParseInstant(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidInstant, s)
}
