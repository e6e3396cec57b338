// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package sources

import (
	"context"
	"time"

	"github.com/tomtom215/covid19db/internal/database"
	"github.com/tomtom215/covid19db/internal/logging"
	"github.com/tomtom215/covid19db/internal/metrics"
)

// Store opens per-table insert transactions. *database.DB implements it.
type Store interface {
	BeginTable(ctx context.Context, table string) (*database.TableWriter, error)
}

// Inserter is the part of database.TableWriter a loader body uses.
type Inserter interface {
	Insert(ctx context.Context, args ...any) error
}

// loadTable runs body inside one table transaction, committing on success
// and rolling back otherwise. It records the outcome in metrics and logs.
func loadTable(ctx context.Context, store Store, source, table string, body func(Inserter) error) (rows int64, err error) {
	start := time.Now()
	logger := logging.CtxComponent(ctx, "sources")

	defer func() {
		metrics.RecordSourceLoad(source, rows, time.Since(start), err)
		if err != nil {
			logger.Error().Err(err).Str("source", source).Msg("Source load failed")
			return
		}
		logger.Info().
			Str("source", source).
			Str("table", table).
			Int64("rows", rows).
			Dur("duration", time.Since(start)).
			Msg("Source loaded")
	}()

	w, err := store.BeginTable(ctx, table)
	if err != nil {
		return 0, err
	}

	if err := body(w); err != nil {
		if rbErr := w.Rollback(); rbErr != nil {
			logger.Warn().Err(rbErr).Str("table", table).Msg("Rollback failed")
		}
		return 0, err
	}

	if err := w.Commit(); err != nil {
		return 0, err
	}
	return w.Rows(), nil
}
