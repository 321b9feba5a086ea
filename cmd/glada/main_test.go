/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/friendsincode/glada/internal/config"
	"github.com/friendsincode/glada/internal/db"
	"github.com/friendsincode/glada/internal/dispatch"
	"github.com/friendsincode/glada/internal/ruleset"
)

const officeYAML = `name: office
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
`

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		resolveAt, resolveExplain, resolveJSON = "", false, false
		validateYear = 0
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestResolveCommand(t *testing.T) {
	path := writeRules(t, officeYAML)

	out, err := runCLI(t, "resolve", "--rules", path, "--at", "2023-06-01 12:00", "--explain")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if lines[0] != "1" {
		t.Fatalf("action line = %q, want 1", lines[0])
	}
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "rule 1 (lunch): ConditionRule(action=1") {
		t.Fatalf("unexpected explanation: %q", out)
	}
}

func TestResolveCommandRejectsBadInstant(t *testing.T) {
	path := writeRules(t, officeYAML)
	if _, err := runCLI(t, "resolve", "--rules", path, "--at", "noonish"); err == nil {
		t.Fatal("expected error for unparseable --at")
	}
}

func TestValidateCommand(t *testing.T) {
	out, err := runCLI(t, "validate", "--rules", writeRules(t, officeYAML), "--year", "2023")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.HasPrefix(out, "ok: office (2 rules") {
		t.Fatalf("unexpected output: %q", out)
	}
	if !strings.Contains(out, "holidays 2023: 01-01 04-07 04-10 05-01") {
		t.Fatalf("holiday calendar missing: %q", out)
	}

	bad := strings.Replace(officeYAML, `"13:00"`, `"10:00"`, 1)
	if _, err := runCLI(t, "validate", "--rules", writeRules(t, bad)); err == nil {
		t.Fatal("expected inverted window to fail validation")
	}
}

func TestPrintDecision(t *testing.T) {
	at := time.Date(2023, 6, 7, 14, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	d := dispatch.Decision{ActionID: 0, RuleIndex: -1, Default: true, At: at}
	if err := printDecision(&buf, d, true, false); err != nil {
		t.Fatalf("print: %v", err)
	}
	if buf.String() != "0\nno rule matched at 2023-06-07T14:00:00Z; default action\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}

	buf.Reset()
	d = dispatch.Decision{ActionID: 4, Matched: true, RuleIndex: 3, Rule: "ConditionRule(action=4)", At: at}
	if err := printDecision(&buf, d, false, true); err != nil {
		t.Fatalf("print json: %v", err)
	}
	if !strings.Contains(buf.String(), `"action_id": 4`) {
		t.Fatalf("unexpected json: %q", buf.String())
	}
}

type recordingInvalidator struct {
	ids []string
}

func (r *recordingInvalidator) InvalidateRuleSet(_ context.Context, ruleSetID string) error {
	r.ids = append(r.ids, ruleSetID)
	return nil
}

func TestImportAndExportDocument(t *testing.T) {
	cfg = &config.Config{}
	ctx := context.Background()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
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
	store := ruleset.NewStore(database, zerolog.Nop())

	doc, err := loadDocument(ctx, writeRules(t, officeYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	invalidated := &recordingInvalidator{}
	first, err := importDocument(ctx, store, doc, false, invalidated)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if _, err := importDocument(ctx, store, doc, false, invalidated); err == nil {
		t.Fatal("expected duplicate name to fail without --replace")
	}

	doc.DefaultAction = 8
	if len(invalidated.ids) != 0 {
		t.Fatalf("create must not invalidate, got %v", invalidated.ids)
	}
	second, err := importDocument(ctx, store, doc, true, invalidated)
	if err != nil {
		t.Fatalf("import --replace: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("replace created a new rule set: %s != %s", second.ID, first.ID)
	}
	if len(invalidated.ids) != 1 || invalidated.ids[0] != first.ID {
		t.Fatalf("invalidated = %v, want [%s]", invalidated.ids, first.ID)
	}

	stored, err := store.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	out := filepath.Join(t.TempDir(), "export", "office.yaml")
	if err := writeDocument(ctx, out, ruleset.ToDocument(stored)); err != nil {
		t.Fatalf("export: %v", err)
	}

	exported, err := loadDocument(ctx, out)
	if err != nil {
		t.Fatalf("reload export: %v", err)
	}
	if exported.DefaultAction != 8 || len(exported.Rules) != 2 || exported.Rules[1].Name != "lunch" {
		t.Fatalf("unexpected exported document: %+v", exported)
	}
}
