// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/covid19db/internal/logging"
	"github.com/tomtom215/covid19db/internal/metrics"
)

// Checkpoint forces a WAL checkpoint
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, "CHECKPOINT")
	if err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// Housekeeping compacts the database after a full reload and refreshes
// optimizer statistics. Statements run outside any transaction.
func (db *DB) Housekeeping(ctx context.Context) error {
	log := logging.CtxComponent(ctx, "database")

	for _, stmt := range []string{"CHECKPOINT", "VACUUM", "ANALYZE"} {
		start := time.Now()
		_, err := db.conn.ExecContext(ctx, stmt)
		op := strings.ToLower(stmt)
		metrics.RecordDBStatement(op, time.Since(start), err)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		log.Debug().Str("statement", stmt).Dur("duration", time.Since(start)).Msg("Housekeeping step done")
	}

	log.Info().Msg("Database housekeeping complete")
	return nil
}
