/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package ruleset

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/glada/internal/models"
)

var (
	// ErrRuleSetNotFound indicates the requested rule set does not exist.
	ErrRuleSetNotFound = errors.New("rule set not found")

	// ErrDuplicateName indicates another rule set already uses the name.
	ErrDuplicateName = errors.New("rule set name already exists")
)

// Store persists rule set documents with GORM.
type Store struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewStore creates a rule set store.
func NewStore(db *gorm.DB, logger zerolog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.With().Str("component", "ruleset-store").Logger(),
	}
}

// Create validates and stores doc.
func (s *Store) Create(ctx context.Context, doc *Document) (*models.RuleSet, error) {
	if err := Validate(doc); err != nil {
		return nil, err
	}

	rs := fromDocument(uuid.NewString(), doc)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUniqueName(tx, doc.Name, ""); err != nil {
			return err
		}
		return tx.Create(rs).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create rule set: %w", err)
	}

	s.logger.Info().
		Str("rule_set_id", rs.ID).
		Str("name", rs.Name).
		Int("rules", len(rs.Lines)).
		Msg("rule set created")
	return rs, nil
}

// Get loads a rule set with its lines in evaluation order.
func (s *Store) Get(ctx context.Context, id string) (*models.RuleSet, error) {
	var rs models.RuleSet
	err := s.db.WithContext(ctx).
		Preload("Lines", orderLines).
		Where("id = ?", id).
		First(&rs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRuleSetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query rule set: %w", err)
	}
	return &rs, nil
}

// List returns all rule sets ordered by name.
func (s *Store) List(ctx context.Context) ([]models.RuleSet, error) {
	var sets []models.RuleSet
	err := s.db.WithContext(ctx).
		Preload("Lines", orderLines).
		Order("name ASC").
		Find(&sets).Error
	if err != nil {
		return nil, fmt.Errorf("list rule sets: %w", err)
	}
	return sets, nil
}

// Replace swaps the content of an existing rule set for doc.
func (s *Store) Replace(ctx context.Context, id string, doc *Document) (*models.RuleSet, error) {
	if err := Validate(doc); err != nil {
		return nil, err
	}

	var updated *models.RuleSet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.RuleSet
		if err := tx.Where("id = ?", id).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRuleSetNotFound
			}
			return err
		}
		if err := ensureUniqueName(tx, doc.Name, id); err != nil {
			return err
		}

		if err := tx.Where("rule_set_id = ?", id).Delete(&models.RuleLine{}).Error; err != nil {
			return fmt.Errorf("delete lines: %w", err)
		}

		rs := fromDocument(id, doc)
		rs.CreatedAt = existing.CreatedAt
		if err := tx.Save(rs).Error; err != nil {
			return fmt.Errorf("save rule set: %w", err)
		}
		updated = rs
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrRuleSetNotFound) || errors.Is(err, ErrDuplicateName) {
			return nil, err
		}
		return nil, fmt.Errorf("replace rule set: %w", err)
	}

	s.logger.Info().Str("rule_set_id", id).Int("rules", len(updated.Lines)).Msg("rule set replaced")
	return updated, nil
}

// Delete removes a rule set and its lines.
func (s *Store) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("rule_set_id = ?", id).Delete(&models.RuleLine{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.RuleSet{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRuleSetNotFound
		}
		return nil
	})
	if errors.Is(err, ErrRuleSetNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("delete rule set: %w", err)
	}

	s.logger.Info().Str("rule_set_id", id).Msg("rule set deleted")
	return nil
}

// ToDocument converts a stored rule set back into its document form.
func ToDocument(rs *models.RuleSet) *Document {
	doc := &Document{
		Name:          rs.Name,
		Description:   rs.Description,
		DefaultAction: rs.DefaultAction,
		Holidays:      append([]string(nil), rs.Holidays...),
		Rules:         make([]RuleSpec, 0, len(rs.Lines)),
	}
	for _, line := range rs.Lines {
		doc.Rules = append(doc.Rules, RuleSpec{
			Name:         line.Name,
			Action:       line.ActionID,
			From:         line.FromTime,
			To:           line.ToTime,
			WorkdaysOnly: line.WorkdaysOnly,
			Weekdays:     intWeekdays(line.Weekdays),
			MonthDays:    line.MonthDays,
			Months:       line.Months,
		})
	}
	return doc
}

func fromDocument(id string, doc *Document) *models.RuleSet {
	rs := &models.RuleSet{
		ID:            id,
		Name:          doc.Name,
		Description:   doc.Description,
		DefaultAction: doc.DefaultAction,
		Holidays:      doc.Holidays,
		Lines:         make([]models.RuleLine, 0, len(doc.Rules)),
	}
	for i, spec := range doc.Rules {
		rs.Lines = append(rs.Lines, models.RuleLine{
			ID:           uuid.NewString(),
			RuleSetID:    id,
			Position:     i,
			Name:         spec.Name,
			ActionID:     spec.Action,
			FromTime:     spec.From,
			ToTime:       spec.To,
			WorkdaysOnly: spec.WorkdaysOnly,
			Weekdays:     weekdayInts(spec.Weekdays),
			MonthDays:    spec.MonthDays,
			Months:       spec.Months,
		})
	}
	return rs
}

func ensureUniqueName(tx *gorm.DB, name, exceptID string) error {
	q := tx.Model(&models.RuleSet{}).Where("name = ?", name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateName
	}
	return nil
}

func orderLines(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
