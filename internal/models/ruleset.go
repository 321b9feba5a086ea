/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package models holds the persisted rule set schema.
package models

import "time"

// RuleSet is a stored, named planner definition.
type RuleSet struct {
	ID            string   `gorm:"type:uuid;primaryKey"`
	Name          string   `gorm:"type:varchar(255);uniqueIndex;not null"`
	Description   string   `gorm:"type:text"`
	DefaultAction int      `gorm:"not null;default:0"`
	Holidays      []string `gorm:"type:text;serializer:json"` // Holiday calendar entries

	// Lines in evaluation order (see RuleLine.Position).
	Lines []RuleLine `gorm:"foreignKey:RuleSetID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM.
func (RuleSet) TableName() string {
	return "rule_sets"
}

// RuleLine is one condition line of a rule set.
type RuleLine struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	RuleSetID    string `gorm:"type:uuid;index:idx_rule_lines_set_position,priority:1;not null"`
	Position     int    `gorm:"index:idx_rule_lines_set_position,priority:2;not null"`
	Name         string `gorm:"type:varchar(255)"`
	ActionID     int    `gorm:"not null"`
	FromTime     string `gorm:"type:varchar(8)"` // "HH:MM[:SS]", empty = start of day
	ToTime       string `gorm:"type:varchar(8)"` // "HH:MM[:SS]", empty = end of day
	WorkdaysOnly bool   `gorm:"not null;default:false"`
	Weekdays     []int  `gorm:"type:text;serializer:json"` // ISO 1..7
	MonthDays    []int  `gorm:"type:text;serializer:json"` // 1..31
	Months       []int  `gorm:"type:text;serializer:json"` // 1..12

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM.
func (RuleLine) TableName() string {
	return "rule_lines"
}
