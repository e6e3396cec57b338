// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package database

import (
	"context"
	"database/sql"
	"fmt"
)

// TableWriter inserts rows into one auxiliary table inside its own
// transaction. Arguments to Insert follow Columns(table).
type TableWriter struct {
	table string
	width int
	tx    *sql.Tx
	stmt  *sql.Stmt
	rows  int64
	done  bool
}

// BeginTable opens a transaction for bulk inserts into table.
func (db *DB) BeginTable(ctx context.Context, table string) (*TableWriter, error) {
	spec, ok := tablesByName[table]
	if !ok || table == TableDaily {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin %s transaction: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, spec.insertSQL())
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("prepare %s insert: %w", table, err)
	}

	return &TableWriter{
		table: table,
		width: len(spec.columns),
		tx:    tx,
		stmt:  stmt,
	}, nil
}

// Insert writes one row. Pointer arguments are stored as NULL when nil.
func (w *TableWriter) Insert(ctx context.Context, args ...any) error {
	if w.done {
		return ErrTxDone
	}
	if len(args) != w.width {
		return fmt.Errorf("insert %s: got %d values, want %d", w.table, len(args), w.width)
	}
	for i, a := range args {
		args[i] = deref(a)
	}
	if _, err := w.stmt.ExecContext(ctx, args...); err != nil {
		return fmt.Errorf("insert %s row %d: %w", w.table, w.rows+1, err)
	}
	w.rows++
	return nil
}

// Rows returns the number of rows inserted so far.
func (w *TableWriter) Rows() int64 {
	return w.rows
}

// Commit commits every inserted row.
func (w *TableWriter) Commit() error {
	if w.done {
		return ErrTxDone
	}
	w.done = true
	closeWithLog(w.stmt, w.table+" statement")
	if err := w.tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", w.table, err)
	}
	return nil
}

// Rollback discards every inserted row; a no-op after Commit.
func (w *TableWriter) Rollback() error {
	if w.done {
		return nil
	}
	w.done = true
	closeWithLog(w.stmt, w.table+" statement")
	return w.tx.Rollback()
}

func deref(v any) any {
	switch p := v.(type) {
	case *int:
		return nullable(p)
	case *int64:
		return nullable(p)
	case *float64:
		return nullable(p)
	case *string:
		return nullable(p)
	default:
		return v
	}
}

// CountRows returns the row count of table.
func (db *DB) CountRows(ctx context.Context, table string) (int64, error) {
	if _, ok := tablesByName[table]; !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var n int64
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
