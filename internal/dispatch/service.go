/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package dispatch answers which action applies to a stored rule set at a
// given instant.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/friendsincode/glada/internal/cache"
	"github.com/friendsincode/glada/internal/clock"
	"github.com/friendsincode/glada/internal/models"
	"github.com/friendsincode/glada/internal/planner"
	"github.com/friendsincode/glada/internal/ruleset"
	"github.com/friendsincode/glada/internal/telemetry"
	"github.com/rs/zerolog"
)

// RuleSetSource loads persisted rule sets. *ruleset.Store implements it.
type RuleSetSource interface {
	Get(ctx context.Context, id string) (*models.RuleSet, error)
}

// maxYearsPerRuleSet bounds the planners kept for one rule set. Callers pick
// the year through the instant they ask about.
const maxYearsPerRuleSet = 3

// compiled holds the planners built from one revision of a rule set.
// Recurring holidays depend on the year, so there is one planner per year.
// years lists the keys of byYear from least to most recently used.
type compiled struct {
	updatedAt time.Time
	doc       *ruleset.Document
	byYear    map[int]*planner.Planner
	years     []int
}

// touch marks year as most recently used.
func (c *compiled) touch(year int) {
	for i, y := range c.years {
		if y == year {
			c.years = append(c.years[:i], c.years[i+1:]...)
			break
		}
	}
	c.years = append(c.years, year)
}

// store keeps p for year, evicting the least recently used year when full.
func (c *compiled) store(year int, p *planner.Planner) {
	if len(c.years) >= maxYearsPerRuleSet {
		delete(c.byYear, c.years[0])
		c.years = c.years[1:]
	}
	c.byYear[year] = p
	c.years = append(c.years, year)
}

// Service resolves decisions for stored rule sets.
type Service struct {
	source   RuleSetSource
	cache    *cache.Cache
	clock    clock.Clock
	location *time.Location
	logger   zerolog.Logger

	mu       sync.Mutex
	compiled map[string]*compiled
}

// New constructs the dispatch service. A nil clock means the system clock
// and a nil location means UTC.
func New(source RuleSetSource, clk clock.Clock, loc *time.Location, logger zerolog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if clk == nil {
		clk = clock.System{Location: loc}
	}
	return &Service{
		source:   source,
		clock:    clk,
		location: loc,
		logger:   logger.With().Str("component", "dispatch").Logger(),
		compiled: make(map[string]*compiled),
	}
}

// SetCache sets the document cache consulted before the database.
func (s *Service) SetCache(c *cache.Cache) {
	s.cache = c
}

// Location returns the zone used for "now" and zone-less instants.
func (s *Service) Location() *time.Location {
	return s.location
}

// Now returns the service clock reading in the configured location.
func (s *Service) Now() time.Time {
	return s.clock.Now().In(s.location)
}

// Resolve returns the decision of rule set ruleSetID at the given instant.
// A zero at means now. The instant is evaluated on its own wall clock.
func (s *Service) Resolve(ctx context.Context, ruleSetID string, at time.Time) (*Decision, error) {
	start := time.Now()
	if at.IsZero() {
		at = s.Now()
	}

	ctx, span := telemetry.StartSpan(ctx, "dispatch.Resolve", telemetry.AttrRuleSetID.String(ruleSetID))
	defer span.End()

	p, doc, err := s.planner(ctx, ruleSetID, at.Year())
	if err != nil {
		reason := "internal"
		if errors.Is(err, ruleset.ErrRuleSetNotFound) {
			reason = "not_found"
		}
		telemetry.DecisionErrorsTotal.WithLabelValues(reason).Inc()
		telemetry.RecordError(span, err)
		return nil, err
	}

	d := Evaluate(p, doc, at)
	d.RuleSetID = ruleSetID

	outcome := "matched"
	if d.Default {
		outcome = "default"
	}
	telemetry.DecisionsTotal.WithLabelValues(ruleSetID, outcome).Inc()
	telemetry.DecisionDuration.Observe(time.Since(start).Seconds())
	span.SetAttributes(
		telemetry.AttrActionID.Int(d.ActionID),
		telemetry.AttrRuleIndex.Int(d.RuleIndex),
		telemetry.AttrDefault.Bool(d.Default),
	)

	s.logger.Debug().
		Str("rule_set_id", ruleSetID).
		Time("at", at).
		Int("action_id", d.ActionID).
		Int("rule_index", d.RuleIndex).
		Msg("decision resolved")

	return &d, nil
}

// Invalidate drops everything held for ruleSetID. Call it after the rule set
// is replaced or deleted.
func (s *Service) Invalidate(ctx context.Context, ruleSetID string) {
	s.mu.Lock()
	delete(s.compiled, ruleSetID)
	telemetry.PlannersCached.Set(float64(s.plannerCountLocked()))
	s.mu.Unlock()

	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateRuleSet(ctx, ruleSetID); err != nil {
		s.logger.Debug().Err(err).Str("rule_set_id", ruleSetID).Msg("cache invalidation failed")
	}
}

// planner returns the planner for ruleSetID and year, compiling it when the
// stored revision or the year has not been seen yet.
func (s *Service) planner(ctx context.Context, ruleSetID string, year int) (*planner.Planner, *ruleset.Document, error) {
	doc, updatedAt, err := s.load(ctx, ruleSetID)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.compiled[ruleSetID]
	if !ok || !entry.updatedAt.Equal(updatedAt) {
		entry = &compiled{
			updatedAt: updatedAt,
			doc:       doc,
			byYear:    make(map[int]*planner.Planner),
		}
		s.compiled[ruleSetID] = entry
	}

	if p, ok := entry.byYear[year]; ok {
		entry.touch(year)
		return p, entry.doc, nil
	}

	p, err := ruleset.Compile(entry.doc, year)
	if err != nil {
		telemetry.PlannerCompilationsTotal.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Str("rule_set_id", ruleSetID).Int("year", year).Msg("stored rule set does not compile")
		return nil, nil, fmt.Errorf("compile rule set %s: %w", ruleSetID, err)
	}
	telemetry.PlannerCompilationsTotal.WithLabelValues("ok").Inc()

	entry.store(year, p)
	telemetry.PlannersCached.Set(float64(s.plannerCountLocked()))
	return p, entry.doc, nil
}

// load fetches the document from the cache, falling back to the source.
func (s *Service) load(ctx context.Context, ruleSetID string) (*ruleset.Document, time.Time, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetRuleSet(ctx, ruleSetID); ok {
			return &cached.Document, cached.UpdatedAt, nil
		}
	}

	rs, err := s.source.Get(ctx, ruleSetID)
	if err != nil {
		return nil, time.Time{}, err
	}
	doc := ruleset.ToDocument(rs)
	if s.cache == nil {
		return doc, rs.UpdatedAt, nil
	}

	if err := s.cache.SetRuleSet(ctx, &cache.CachedRuleSet{
		ID:        rs.ID,
		UpdatedAt: rs.UpdatedAt,
		Document:  *doc,
	}); err != nil {
		s.logger.Debug().Err(err).Str("rule_set_id", ruleSetID).Msg("failed to cache rule set")
	}
	return doc, rs.UpdatedAt, nil
}

func (s *Service) plannerCountLocked() int {
	n := 0
	for _, entry := range s.compiled {
		n += len(entry.byYear)
	}
	return n
}
