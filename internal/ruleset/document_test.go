/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package ruleset

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/friendsincode/glada/internal/planner"
)

func loadReference(t *testing.T) *Document {
	t.Helper()

	f, err := os.Open("testdata/reference.yaml")
	if err != nil {
		t.Fatalf("open testdata: %v", err)
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return doc
}

func TestDecodeYAML(t *testing.T) {
	doc := loadReference(t)

	if doc.Name != "reference" {
		t.Fatalf("Name = %q, want reference", doc.Name)
	}
	if len(doc.Rules) != 6 {
		t.Fatalf("len(Rules) = %d, want 6", len(doc.Rules))
	}
	got := weekdayInts(doc.Rules[3].Weekdays)
	want := []int{1, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("Weekdays = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Weekdays = %v, want %v", got, want)
		}
	}
}

func TestDecodeJSON(t *testing.T) {
	src := `{"name":"json","default_action":9,"rules":[{"action":1,"weekdays":["sunday",6]}]}`
	doc, err := Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.DefaultAction != 9 {
		t.Fatalf("DefaultAction = %d, want 9", doc.DefaultAction)
	}
	if got := weekdayInts(doc.Rules[0].Weekdays); len(got) != 2 || got[0] != 7 || got[1] != 6 {
		t.Fatalf("Weekdays = %v, want [7 6]", got)
	}
}

func TestDecodeRejectsUnknownFieldsAndEmpty(t *testing.T) {
	if _, err := Decode(strings.NewReader("name: x\nrulez: []\n")); err == nil {
		t.Fatal("expected unknown field error")
	}
	if _, err := Decode(strings.NewReader("")); !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("Decode(empty) error = %v, want ErrEmptyDocument", err)
	}
	if _, err := Decode(strings.NewReader("name: x\nrules:\n  - action: 1\n    weekdays: [someday]\n")); err == nil {
		t.Fatal("expected weekday name error")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	doc := loadReference(t)

	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		t.Fatalf("encode: %v", err)
	}
	again, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode encoded: %v", err)
	}
	if len(again.Rules) != len(doc.Rules) || again.Rules[1].From != "11:00" {
		t.Fatalf("round trip lost rules: %+v", again.Rules)
	}
}

func TestCompileReference(t *testing.T) {
	doc := loadReference(t)

	tests := []struct {
		at   time.Time
		want int
	}{
		{time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC), 3},
		{time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC), 1},
		{time.Date(2023, 6, 1, 14, 0, 0, 0, time.UTC), 4},
		{time.Date(2023, 6, 1, 18, 0, 0, 0, time.UTC), 2},
		{time.Date(2023, 10, 8, 17, 0, 0, 0, time.UTC), 3},
		{time.Date(2023, 6, 6, 14, 0, 0, 0, time.UTC), 5},
		{time.Date(2023, 7, 25, 14, 0, 0, 0, time.UTC), 6},
	}
	for _, tt := range tests {
		p, err := Compile(doc, tt.at.Year())
		if err != nil {
			t.Fatalf("compile: %v", err)
		}
		if got := p.ActionID(tt.at); got != tt.want {
			t.Errorf("ActionID(%s) = %d, want %d", tt.at.Format(time.RFC3339), got, tt.want)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name      string
		doc       Document
		wantIndex int
		wantErr   error
	}{
		{
			name:      "month out of range",
			doc:       Document{Name: "x", Rules: []RuleSpec{{Action: 1}, {Action: 2, Months: []int{13}}}},
			wantIndex: 1,
			wantErr:   planner.ErrOutOfRange,
		},
		{
			name:      "inverted window",
			doc:       Document{Name: "x", Rules: []RuleSpec{{Name: "bad", Action: 1, From: "13:00", To: "11:00"}}},
			wantIndex: 0,
			wantErr:   planner.ErrInvertedInterval,
		},
		{
			name:      "reserved action",
			doc:       Document{Name: "x", Rules: []RuleSpec{{Action: planner.NoAction}}},
			wantIndex: 0,
			wantErr:   ErrReservedAction,
		},
		{
			name:      "weekday eight",
			doc:       Document{Name: "x", Rules: []RuleSpec{{Action: 1, Weekdays: []Weekday{8}}}},
			wantIndex: 0,
			wantErr:   planner.ErrOutOfRange,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(&tt.doc, 2024)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Compile error = %v, want %v", err, tt.wantErr)
			}
			var ruleErr *RuleError
			if !errors.As(err, &ruleErr) {
				t.Fatalf("error %v is not a *RuleError", err)
			}
			if ruleErr.Index != tt.wantIndex {
				t.Fatalf("Index = %d, want %d", ruleErr.Index, tt.wantIndex)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(&Document{}); !errors.Is(err, ErrMissingName) {
		t.Fatalf("Validate error = %v, want ErrMissingName", err)
	}
	if err := Validate(&Document{Name: "x", DefaultAction: -1}); !errors.Is(err, ErrReservedAction) {
		t.Fatalf("Validate error = %v, want ErrReservedAction", err)
	}
	if err := Validate(&Document{Name: "x", Holidays: []string{"FREQ=YEARLY;BYMONTH=1;BYMONTHDAY=6"}}); err != nil {
		t.Fatalf("Validate recurring holiday: %v", err)
	}
	if err := Validate(&Document{Name: "x", Holidays: []string{"31-31"}}); err == nil {
		t.Fatal("expected invalid holiday error")
	}
}

func TestCompileExpandsRecurringHolidaysForYear(t *testing.T) {
	doc := &Document{
		Name:     "memorial",
		Holidays: []string{"FREQ=YEARLY;BYMONTH=5;BYDAY=-1MO"},
		Rules:    []RuleSpec{{Action: 1, WorkdaysOnly: true}},
	}

	// Last Monday of May: 2023-05-29, 2024-05-27.
	p2024, err := Compile(doc, 2024)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if got := p2024.ActionID(time.Date(2024, 5, 27, 12, 0, 0, 0, time.UTC)); got != 1 {
		t.Fatalf("2024-05-27 ActionID = %d, want 1", got)
	}
	if got := p2024.ActionID(time.Date(2024, 5, 29, 12, 0, 0, 0, time.UTC)); got != 0 {
		t.Fatalf("2024-05-29 ActionID = %d, want 0", got)
	}
}
