/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/friendsincode/glada/internal/cache"
	"github.com/friendsincode/glada/internal/db"
	"github.com/friendsincode/glada/internal/models"
	"github.com/friendsincode/glada/internal/ruleset"
	"github.com/friendsincode/glada/internal/storage"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Store a rule set document in the database",
	Long:  "Read a rule set document from a file or s3:// location, validate it and store it. Prints the rule set ID. With --replace and GLADA_CACHE_ENABLED the cached copy is dropped so running servers pick up the change.",
	RunE:  runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a stored rule set as a YAML document",
	RunE:  runExport,
}

// Import/export flags
var (
	importReplace bool
	exportID      string
	exportOut     string
)

// ruleSetInvalidator drops cached copies of a rule set. *cache.Cache
// implements it.
type ruleSetInvalidator interface {
	InvalidateRuleSet(ctx context.Context, ruleSetID string) error
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)

	importCmd.Flags().StringVar(&rulesLocation, "rules", "", "Rule set document path or s3://bucket/key (required)")
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "Replace an existing rule set with the same name")
	importCmd.MarkFlagRequired("rules")

	exportCmd.Flags().StringVar(&exportID, "id", "", "Rule set ID (required)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Destination path or s3://bucket/key (default stdout)")
	exportCmd.MarkFlagRequired("id")
}

func runImport(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	doc, err := loadDocument(cmd.Context(), rulesLocation)
	if err != nil {
		return err
	}

	database, err := initDatabase()
	if err != nil {
		return err
	}
	defer db.Close(database)

	var invalidator ruleSetInvalidator
	if importReplace && cfg.CacheEnabled {
		docCache, err := openCache()
		if err != nil {
			return err
		}
		defer docCache.Close()
		invalidator = docCache
	}

	rs, err := importDocument(cmd.Context(), ruleset.NewStore(database, logger), doc, importReplace, invalidator)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), rs.ID)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	database, err := initDatabase()
	if err != nil {
		return err
	}
	defer db.Close(database)

	rs, err := ruleset.NewStore(database, logger).Get(cmd.Context(), exportID)
	if err != nil {
		return err
	}

	if exportOut == "" {
		return ruleset.Encode(cmd.OutOrStdout(), ruleset.ToDocument(rs))
	}
	return writeDocument(cmd.Context(), exportOut, ruleset.ToDocument(rs))
}

// importDocument creates the rule set, or replaces the one with the same
// name when replace is set. A replaced rule set is dropped from invalidator,
// which may be nil.
func importDocument(ctx context.Context, store *ruleset.Store, doc *ruleset.Document, replace bool, invalidator ruleSetInvalidator) (*models.RuleSet, error) {
	if replace {
		sets, err := store.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, existing := range sets {
			if existing.Name != doc.Name {
				continue
			}
			rs, err := store.Replace(ctx, existing.ID, doc)
			if err != nil {
				return nil, err
			}
			if invalidator != nil {
				if err := invalidator.InvalidateRuleSet(ctx, rs.ID); err != nil {
					logger.Warn().Err(err).Str("rule_set_id", rs.ID).Msg("cache invalidation failed")
				}
			}
			return rs, nil
		}
	}
	return store.Create(ctx, doc)
}

// openCache connects the document cache configured for serve.
func openCache() (*cache.Cache, error) {
	cacheCfg := cache.DefaultConfig()
	cacheCfg.RedisAddr = cfg.RedisAddr
	cacheCfg.RedisPassword = cfg.RedisPassword
	cacheCfg.RedisDB = cfg.RedisDB
	cacheCfg.RuleSetTTL = cfg.CacheTTL
	docCache, err := cache.New(cacheCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return docCache, nil
}

func writeDocument(ctx context.Context, location string, doc *ruleset.Document) error {
	var buf bytes.Buffer
	if err := ruleset.Encode(&buf, doc); err != nil {
		return err
	}
	if err := storage.Write(ctx, location, buf.Bytes(), s3Config(cfg)); err != nil {
		return fmt.Errorf("write rules: %w", err)
	}
	return nil
}
