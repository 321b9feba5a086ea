/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package db

import (
	"context"
	"errors"
	"time"

	"github.com/friendsincode/glada/internal/telemetry"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const startedAtKey = "glada:started_at"

// SlowStatementThreshold is the duration above which a statement is logged
// as slow. Rule set reads should stay far below it.
var SlowStatementThreshold = 250 * time.Millisecond

// RegisterCallbacks times every statement gorm runs and records it in the
// database metrics.
func RegisterCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	for _, err := range []error{
		cb.Query().Before("gorm:query").Register("glada:before_query", markStart),
		cb.Query().After("gorm:query").Register("glada:after_query", observe("query")),
		cb.Create().Before("gorm:create").Register("glada:before_create", markStart),
		cb.Create().After("gorm:create").Register("glada:after_create", observe("create")),
		cb.Update().Before("gorm:update").Register("glada:before_update", markStart),
		cb.Update().After("gorm:update").Register("glada:after_update", observe("update")),
		cb.Delete().Before("gorm:delete").Register("glada:before_delete", markStart),
		cb.Delete().After("gorm:delete").Register("glada:after_delete", observe("delete")),
		cb.Raw().Before("gorm:raw").Register("glada:before_raw", markStart),
		cb.Raw().After("gorm:raw").Register("glada:after_raw", observe("exec")),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func markStart(db *gorm.DB) {
	db.InstanceSet(startedAtKey, time.Now())
}

func observe(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(startedAtKey)
		if !ok {
			return
		}
		started, ok := v.(time.Time)
		if !ok {
			return
		}
		elapsed := time.Since(started)

		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		telemetry.DatabaseQueryDuration.WithLabelValues(operation, table).Observe(elapsed.Seconds())

		if kind := errorType(db.Error); kind != "" {
			telemetry.DatabaseErrorsTotal.WithLabelValues(operation, kind).Inc()
		}

		if elapsed > SlowStatementThreshold {
			log.Warn().
				Str("operation", operation).
				Str("table", table).
				Dur("duration", elapsed).
				Msg("slow database statement")
		}
	}
}

// errorType labels a statement error for metrics. Missing rows are an
// expected outcome and yield "".
func errorType(err error) string {
	switch {
	case err == nil, errors.Is(err, gorm.ErrRecordNotFound):
		return ""
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return "duplicate_key"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "query_error"
	}
}

// UpdateConnectionMetrics publishes connection pool statistics.
func UpdateConnectionMetrics(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	telemetry.DatabaseConnectionsActive.Set(float64(sqlDB.Stats().OpenConnections))
}
