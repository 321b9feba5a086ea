/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package db

import (
	"fmt"

	"github.com/friendsincode/glada/internal/models"
	"gorm.io/gorm"
)

// Migrate applies database schema migrations using GORM auto-migrate.
func Migrate(database *gorm.DB) error {
	if err := database.AutoMigrate(
		&models.RuleSet{},
		&models.RuleLine{},
	); err != nil {
		return err
	}

	if err := applyPostgresRuleLineGuard(database); err != nil {
		return err
	}

	return nil
}

// applyPostgresRuleLineGuard rejects rows that could never be produced by a
// validated rule set document. Other backends rely on application validation.
func applyPostgresRuleLineGuard(database *gorm.DB) error {
	if database.Dialector.Name() != "postgres" {
		return nil
	}

	stmt := `
ALTER TABLE rule_lines DROP CONSTRAINT IF EXISTS chk_rule_lines_action;
ALTER TABLE rule_lines ADD CONSTRAINT chk_rule_lines_action CHECK (action_id >= 0);
CREATE UNIQUE INDEX IF NOT EXISTS uq_rule_lines_set_position ON rule_lines (rule_set_id, position);
`
	if err := database.Exec(stmt).Error; err != nil {
		return fmt.Errorf("apply postgres rule line guard: %w", err)
	}

	return nil
}
