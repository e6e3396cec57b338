// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomtom215/covid19db/internal/models"
)

// LoadTx is the single transaction a combined dataset load writes through.
// Nothing is visible to other connections until Commit.
type LoadTx struct {
	tx        *sql.Tx
	dailyStmt *sql.Stmt
	locStmt   *sql.Stmt
	done      bool
}

// BeginLoad opens the load transaction and prepares its two insert statements.
func (db *DB) BeginLoad(ctx context.Context) (*LoadTx, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin load transaction: %w", err)
	}

	dailyStmt, err := tx.PrepareContext(ctx, tablesByName[TableDaily].insertSQL())
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("prepare %s insert: %w", TableDaily, err)
	}

	locStmt, err := tx.PrepareContext(ctx, tablesByName[TableLocations].insertSQL())
	if err != nil {
		closeQuietly(dailyStmt)
		_ = tx.Rollback()
		return nil, fmt.Errorf("prepare %s insert: %w", TableLocations, err)
	}

	return &LoadTx{tx: tx, dailyStmt: dailyStmt, locStmt: locStmt}, nil
}

// InsertDaily writes one cdataset row.
func (l *LoadTx) InsertDaily(ctx context.Context, r *models.DailyRecord) error {
	if l.done {
		return ErrTxDone
	}
	if _, err := l.dailyStmt.ExecContext(ctx, dailyArgs(r)...); err != nil {
		return fmt.Errorf("insert %s (%s, %d, %d): %w", TableDaily, r.Dataset, r.LocationID, r.DateJulian, err)
	}
	return nil
}

// InsertLocation writes one cdataset_loc row.
func (l *LoadTx) InsertLocation(ctx context.Context, a *models.LocationAttributes) error {
	if l.done {
		return ErrTxDone
	}
	if _, err := l.locStmt.ExecContext(ctx, locationArgs(a)...); err != nil {
		return fmt.Errorf("insert %s %d: %w", TableLocations, a.ID, err)
	}
	return nil
}

// Commit commits the load.
func (l *LoadTx) Commit() error {
	if l.done {
		return ErrTxDone
	}
	l.done = true
	l.closeStatements()
	if err := l.tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}
	return nil
}

// Rollback discards everything written through l. Calling it after Commit
// is a no-op, so it is safe to defer.
func (l *LoadTx) Rollback() error {
	if l.done {
		return nil
	}
	l.done = true
	l.closeStatements()
	if err := l.tx.Rollback(); err != nil {
		return fmt.Errorf("rollback load: %w", err)
	}
	return nil
}

func (l *LoadTx) closeStatements() {
	closeWithLog(l.dailyStmt, "cdataset statement")
	closeWithLog(l.locStmt, "cdataset_loc statement")
}

// dailyArgs flattens r in cdataset column order.
func dailyArgs(r *models.DailyRecord) []any {
	return []any{
		r.Dataset,
		r.LocationID,
		nullable(r.Latitude),
		nullable(r.Longitude),
		r.Date,
		r.DateJulian,
		r.Year,
		r.Month,
		r.Day,
		r.DayIndex0,
		r.DayIndex1,
		nullable(r.DayIndex10),
		nullable(r.DayIndex100),
		nullable(r.DayIndex1k),
		nullable(r.DayIndex10k),
		nullable(r.DayIndexPeak),
		nullable(r.DayIndexPeakConfirmed),
		nullable(r.DayIndexPeakDeaths),
		r.AbsoluteConfirmed,
		r.AbsoluteDeaths,
		r.AbsoluteRecovered,
		r.AbsoluteInfected,
		nullable(r.AbsolutePop100kConfirmed),
		nullable(r.AbsolutePop100kDeaths),
		nullable(r.AbsolutePop100kRecovered),
		nullable(r.AbsolutePop100kInfected),
		nullable(r.RelativeDeaths),
		nullable(r.RelativeRecovered),
		nullable(r.RelativeInfected),
		r.DeltaConfirmed,
		r.DeltaDeaths,
		r.DeltaRecovered,
		r.DeltaInfected,
		nullable(r.DeltaPctConfirmed),
		nullable(r.DeltaPctDeaths),
		nullable(r.DeltaPctRecovered),
		nullable(r.DeltaPctInfected),
		nullable(r.DeltaPop100kConfirmed),
		nullable(r.DeltaPop100kDeaths),
		nullable(r.DeltaPop100kRecovered),
		nullable(r.DeltaPop100kInfected),
		nullable(r.PeakPctConfirmed),
		nullable(r.PeakPctDeaths),
		nullable(r.PeakPctRecovered),
		nullable(r.PeakPctInfected),
		nullable(r.FactbookArea),
		nullable(r.FactbookPopulation),
		nullable(r.FactbookDeathRate),
		nullable(r.FactbookMedianAge),
	}
}

func locationArgs(a *models.LocationAttributes) []any {
	return []any{
		a.ID,
		a.Type,
		a.Label,
		a.CountryCode,
		a.Country,
		a.Province,
		a.Administrative,
		a.Region,
		a.Subregion,
		a.USStateCode,
		a.USStateName,
		nullable(a.USCountyFIPS),
	}
}

// nullable turns a nil pointer into a SQL NULL and dereferences otherwise.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// MaxLocationID returns the highest locid in cdataset_loc, 0 when empty.
func (db *DB) MaxLocationID(ctx context.Context) (int64, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var maxID int64
	err := db.conn.QueryRowContext(ctx, "SELECT COALESCE(MAX(locid), 0) FROM "+TableLocations).Scan(&maxID)
	if err != nil {
		return 0, fmt.Errorf("query max locid: %w", err)
	}
	return maxID, nil
}
