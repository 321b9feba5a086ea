/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package ruleset loads, validates, stores and compiles declarative rule set
// documents into planners.
package ruleset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyDocument indicates a rule set source without content.
var ErrEmptyDocument = errors.New("empty rule set document")

// Document is the YAML/JSON form of a rule set.
type Document struct {
	Name          string     `yaml:"name" json:"name"`
	Description   string     `yaml:"description,omitempty" json:"description,omitempty"`
	DefaultAction int        `yaml:"default_action" json:"default_action"`
	Holidays      []string   `yaml:"holidays,omitempty" json:"holidays,omitempty"`
	Rules         []RuleSpec `yaml:"rules" json:"rules"`
}

// RuleSpec describes one condition line. Omitted fields keep the planner
// defaults: the whole day and wildcard sets.
type RuleSpec struct {
	Name         string    `yaml:"name,omitempty" json:"name,omitempty"`
	Action       int       `yaml:"action" json:"action"`
	From         string    `yaml:"from,omitempty" json:"from,omitempty"`
	To           string    `yaml:"to,omitempty" json:"to,omitempty"`
	WorkdaysOnly bool      `yaml:"workdays_only,omitempty" json:"workdays_only,omitempty"`
	Weekdays     []Weekday `yaml:"weekdays,omitempty" json:"weekdays,omitempty"`
	MonthDays    []int     `yaml:"month_days,omitempty" json:"month_days,omitempty"`
	Months       []int     `yaml:"months,omitempty" json:"months,omitempty"`
}

// Weekday is an ISO weekday number (Monday=1). Documents may spell it as a
// number or as an English name or three-letter abbreviation.
type Weekday int

var weekdayNames = map[string]Weekday{
	"mon": 1, "monday": 1,
	"tue": 2, "tuesday": 2,
	"wed": 3, "wednesday": 3,
	"thu": 4, "thursday": 4,
	"fri": 5, "friday": 5,
	"sat": 6, "saturday": 6,
	"sun": 7, "sunday": 7,
}

// ParseWeekday parses a weekday number or name. Numbers are not range
// checked here; rule compilation reports out-of-range values.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if wd, ok := weekdayNames[s]; ok {
		return wd, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("unknown weekday %q", s)
	}
	return Weekday(n), nil
}

// UnmarshalYAML accepts both scalar numbers and names.
func (w *Weekday) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: weekday must be a scalar", value.Line)
	}
	wd, err := ParseWeekday(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*w = wd
	return nil
}

// UnmarshalJSON accepts both numbers and strings.
func (w *Weekday) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*w = Weekday(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("weekday must be a number or a name")
	}
	wd, err := ParseWeekday(s)
	if err != nil {
		return err
	}
	*w = wd
	return nil
}

// Decode reads a YAML or JSON document. Unknown keys are rejected.
func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDocument
		}
		return nil, fmt.Errorf("decode rule set: %w", err)
	}
	return &doc, nil
}

// Encode writes doc as YAML.
func Encode(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode rule set: %w", err)
	}
	return enc.Close()
}

func weekdayInts(days []Weekday) []int {
	if len(days) == 0 {
		return nil
	}
	out := make([]int, len(days))
	for i, d := range days {
		out[i] = int(d)
	}
	return out
}

func intWeekdays(days []int) []Weekday {
	if len(days) == 0 {
		return nil
	}
	out := make([]Weekday, len(days))
	for i, d := range days {
		out[i] = Weekday(d)
	}
	return out
}
