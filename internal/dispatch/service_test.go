/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/friendsincode/glada/internal/clock"
	"github.com/friendsincode/glada/internal/db"
	"github.com/friendsincode/glada/internal/models"
	"github.com/friendsincode/glada/internal/ruleset"
)

const referenceYAML = `
name: reference
default_action: 0
holidays: [cz]
rules:
  - name: weekend or holiday
    action: 3
    workdays_only: true
  - name: lunch
    action: 1
    from: "11:00"
    to: "13:00"
  - name: evening
    action: 2
    from: "17:00"
  - name: long weekdays
    action: 4
    weekdays: [mon, thu, fri]
  - name: selected days
    action: 5
    month_days: [6, 8, 10]
  - name: summer and november
    action: 6
    months: [7, 11]
`

func decodeDoc(t *testing.T, src string) *ruleset.Document {
	t.Helper()
	doc, err := ruleset.Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return doc
}

func newTestStore(t *testing.T) *ruleset.Store {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Migrate(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return ruleset.NewStore(database, zerolog.Nop())
}

// countingSource serves one rule set and counts lookups.
type countingSource struct {
	rs    *models.RuleSet
	calls int
}

func (s *countingSource) Get(_ context.Context, id string) (*models.RuleSet, error) {
	s.calls++
	if s.rs == nil || s.rs.ID != id {
		return nil, ruleset.ErrRuleSetNotFound
	}
	return s.rs, nil
}

func storedReference(t *testing.T) *models.RuleSet {
	t.Helper()
	doc := decodeDoc(t, referenceYAML)
	rs := &models.RuleSet{
		ID:            "rs-ref",
		Name:          doc.Name,
		DefaultAction: doc.DefaultAction,
		Holidays:      doc.Holidays,
		UpdatedAt:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, spec := range doc.Rules {
		line := models.RuleLine{
			RuleSetID:    rs.ID,
			Position:     i,
			Name:         spec.Name,
			ActionID:     spec.Action,
			FromTime:     spec.From,
			ToTime:       spec.To,
			WorkdaysOnly: spec.WorkdaysOnly,
			MonthDays:    spec.MonthDays,
			Months:       spec.Months,
		}
		for _, wd := range spec.Weekdays {
			line.Weekdays = append(line.Weekdays, int(wd))
		}
		rs.Lines = append(rs.Lines, line)
	}
	return rs
}

func TestResolveReferenceScenario(t *testing.T) {
	svc := New(&countingSource{rs: storedReference(t)}, nil, time.UTC, zerolog.Nop())
	ctx := context.Background()

	tests := []struct {
		at        time.Time
		action    int
		ruleIndex int
		ruleName  string
	}{
		{time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC), 1, 1, "lunch"},
		{time.Date(2023, 6, 1, 14, 0, 0, 0, time.UTC), 4, 3, "long weekdays"},
		{time.Date(2023, 6, 1, 18, 0, 0, 0, time.UTC), 2, 2, "evening"},
		{time.Date(2023, 10, 8, 17, 0, 0, 0, time.UTC), 3, 0, "weekend or holiday"},
		{time.Date(2023, 7, 25, 14, 0, 0, 0, time.UTC), 6, 5, "summer and november"},
		{time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC), 3, 0, "weekend or holiday"},
		{time.Date(2023, 6, 6, 14, 0, 0, 0, time.UTC), 5, 4, "selected days"},
		{time.Date(2023, 6, 7, 14, 0, 0, 0, time.UTC), 0, -1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.at.Format("2006-01-02 15:04"), func(t *testing.T) {
			d, err := svc.Resolve(ctx, "rs-ref", tt.at)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if d.ActionID != tt.action || d.RuleIndex != tt.ruleIndex || d.RuleName != tt.ruleName {
				t.Fatalf("decision = %+v, want action %d rule %d (%q)", d, tt.action, tt.ruleIndex, tt.ruleName)
			}
			if d.Default != (tt.ruleIndex < 0) || d.Matched == d.Default {
				t.Fatalf("inconsistent flags: %+v", d)
			}
			if d.RuleSetID != "rs-ref" || !d.At.Equal(tt.at) {
				t.Fatalf("unexpected echo fields: %+v", d)
			}
		})
	}
}

func TestResolveUsesClockWhenAtIsZero(t *testing.T) {
	prague, err := time.LoadLocation("Europe/Prague")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 10:30 UTC is 12:30 in Prague during summer time: inside the lunch window.
	clk := clock.NewFixed(time.Date(2023, 6, 1, 10, 30, 0, 0, time.UTC))
	svc := New(&countingSource{rs: storedReference(t)}, clk, prague, zerolog.Nop())

	d, err := svc.Resolve(context.Background(), "rs-ref", time.Time{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if d.ActionID != 1 {
		t.Fatalf("action = %d, want 1", d.ActionID)
	}
	if d.At.Location() != prague {
		t.Fatalf("decision time not in service location: %v", d.At.Location())
	}
}

func TestResolveMemoizesPlannersPerRevisionAndYear(t *testing.T) {
	src := &countingSource{rs: storedReference(t)}
	svc := New(src, nil, time.UTC, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Resolve(ctx, "rs-ref", time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)); err != nil {
			t.Fatalf("resolve: %v", err)
		}
	}
	first := svc.compiled["rs-ref"].byYear[2023]
	if len(svc.compiled["rs-ref"].byYear) != 1 {
		t.Fatalf("expected one planner, got %d", len(svc.compiled["rs-ref"].byYear))
	}

	if _, err := svc.Resolve(ctx, "rs-ref", time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(svc.compiled["rs-ref"].byYear) != 2 {
		t.Fatalf("expected a planner per year, got %d", len(svc.compiled["rs-ref"].byYear))
	}

	// A new revision discards planners compiled from the old one.
	src.rs.UpdatedAt = src.rs.UpdatedAt.Add(time.Minute)
	if _, err := svc.Resolve(ctx, "rs-ref", time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	entry := svc.compiled["rs-ref"]
	if len(entry.byYear) != 1 || entry.byYear[2023] == first {
		t.Fatal("expected recompilation after revision change")
	}

	svc.Invalidate(ctx, "rs-ref")
	if _, ok := svc.compiled["rs-ref"]; ok {
		t.Fatal("expected invalidate to drop compiled planners")
	}
}

func TestResolveBoundsPlannersPerRuleSet(t *testing.T) {
	src := &countingSource{rs: storedReference(t)}
	svc := New(src, nil, time.UTC, zerolog.Nop())
	ctx := context.Background()

	resolve := func(year int) {
		t.Helper()
		if _, err := svc.Resolve(ctx, "rs-ref", time.Date(year, 6, 1, 12, 0, 0, 0, time.UTC)); err != nil {
			t.Fatalf("resolve %d: %v", year, err)
		}
	}

	for year := 1; year <= 500; year++ {
		resolve(year)
	}
	if n := svc.plannerCountLocked(); n != maxYearsPerRuleSet {
		t.Fatalf("planners = %d, want %d", n, maxYearsPerRuleSet)
	}

	// 498 is touched again, so 499 is evicted next instead.
	resolve(498)
	resolve(2024)
	entry := svc.compiled["rs-ref"]
	for _, year := range []int{498, 500, 2024} {
		if _, ok := entry.byYear[year]; !ok {
			t.Fatalf("expected year %d to be kept, have %v", year, entry.years)
		}
	}
	if _, ok := entry.byYear[499]; ok {
		t.Fatal("expected least recently used year 499 to be evicted")
	}
}

func TestResolveUnknownRuleSet(t *testing.T) {
	svc := New(&countingSource{}, nil, nil, zerolog.Nop())
	_, err := svc.Resolve(context.Background(), "missing", time.Now())
	if !errors.Is(err, ruleset.ErrRuleSetNotFound) {
		t.Fatalf("expected ErrRuleSetNotFound, got %v", err)
	}
}

func TestResolveAgainstStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, decodeDoc(t, referenceYAML))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	svc := New(store, nil, time.UTC, zerolog.Nop())
	at := time.Date(2023, 6, 1, 14, 0, 0, 0, time.UTC)

	d, err := svc.Resolve(ctx, created.ID, at)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if d.ActionID != 4 {
		t.Fatalf("action = %d, want 4", d.ActionID)
	}

	// Drop the weekday rule; Thursday afternoon now falls through to the default.
	replacement := decodeDoc(t, referenceYAML)
	replacement.Rules = append(replacement.Rules[:3], replacement.Rules[4:]...)
	if _, err := store.Replace(ctx, created.ID, replacement); err != nil {
		t.Fatalf("replace: %v", err)
	}
	svc.Invalidate(ctx, created.ID)

	d, err = svc.Resolve(ctx, created.ID, at)
	if err != nil {
		t.Fatalf("resolve after replace: %v", err)
	}
	if d.ActionID != 0 || !d.Default {
		t.Fatalf("decision after replace = %+v, want default 0", d)
	}
}

func TestEvaluateDocumentReportsCompileErrors(t *testing.T) {
	doc := decodeDoc(t, referenceYAML)
	doc.Rules[1].From = "25:00"

	_, err := EvaluateDocument(doc, time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC))
	var ruleErr *ruleset.RuleError
	if !errors.As(err, &ruleErr) || ruleErr.Index != 1 {
		t.Fatalf("expected RuleError for rule 1, got %v", err)
	}
}
