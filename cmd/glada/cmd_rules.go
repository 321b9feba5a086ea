/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/friendsincode/glada/internal/dispatch"
	"github.com/friendsincode/glada/internal/ruleset"
	"github.com/friendsincode/glada/internal/storage"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print the action a rule set document yields at an instant",
	Long:  "Load a rule set document from a file or s3:// location and print the action for the given instant (now by default)",
	RunE:  runResolve,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a rule set document",
	RunE:  runValidate,
}

// Rule document flags
var (
	rulesLocation  string
	resolveAt      string
	resolveExplain bool
	resolveJSON    bool
	validateYear   int
)

func init() {
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(validateCmd)

	resolveCmd.Flags().StringVar(&rulesLocation, "rules", "", "Rule set document path or s3://bucket/key (required)")
	resolveCmd.Flags().StringVar(&resolveAt, "at", "", `Instant as RFC 3339 or "2006-01-02 15:04" in GLADA_TIMEZONE (default now)`)
	resolveCmd.Flags().BoolVar(&resolveExplain, "explain", false, "Also print which rule matched")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "Print the decision as JSON")
	resolveCmd.MarkFlagRequired("rules")

	validateCmd.Flags().StringVar(&rulesLocation, "rules", "", "Rule set document path or s3://bucket/key (required)")
	validateCmd.Flags().IntVar(&validateYear, "year", 0, "Year to expand recurring holidays for (default current year)")
	validateCmd.MarkFlagRequired("rules")
}

func runResolve(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	doc, err := loadDocument(cmd.Context(), rulesLocation)
	if err != nil {
		return err
	}

	loc := cfg.Location()
	at := time.Now().In(loc)
	if resolveAt != "" {
		at, err = dispatch.ParseInstant(resolveAt, loc)
		if err != nil {
			return err
		}
	}

	decision, err := dispatch.EvaluateDocument(doc, at)
	if err != nil {
		return err
	}
	return printDecision(cmd.OutOrStdout(), decision, resolveExplain, resolveJSON)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	doc, err := loadDocument(cmd.Context(), rulesLocation)
	if err != nil {
		return err
	}
	if err := ruleset.Validate(doc); err != nil {
		return err
	}

	year := validateYear
	if year == 0 {
		year = time.Now().In(cfg.Location()).Year()
	}
	p, err := ruleset.Compile(doc, year)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ok: %s (%d rules, default action %d)\n", doc.Name, len(doc.Rules), doc.DefaultAction)
	if dates := p.Holidays().Dates(); len(dates) > 0 {
		days := make([]string, len(dates))
		for i, d := range dates {
			days[i] = d.Format("01-02")
		}
		fmt.Fprintf(out, "holidays %d: %s\n", year, strings.Join(days, " "))
	}
	return nil
}

// loadDocument reads and decodes a rule set document from location.
func loadDocument(ctx context.Context, location string) (*ruleset.Document, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	data, err := storage.Read(ctx, location, s3Config(cfg))
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	doc, err := ruleset.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	return doc, nil
}

func printDecision(w io.Writer, d dispatch.Decision, explain, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}

	fmt.Fprintln(w, d.ActionID)
	if !explain {
		return nil
	}
	if d.Default {
		fmt.Fprintf(w, "no rule matched at %s; default action\n", d.At.Format(time.RFC3339))
		return nil
	}
	if d.RuleName != "" {
		fmt.Fprintf(w, "rule %d (%s): %s\n", d.RuleIndex, d.RuleName, d.Rule)
	} else {
		fmt.Fprintf(w, "rule %d: %s\n", d.RuleIndex, d.Rule)
	}
	return nil
}
