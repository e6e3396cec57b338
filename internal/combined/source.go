// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package combined

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	// DuckDB driver, used with the sqlite_scanner extension to read the combined SQLite file
	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/covid19db/internal/dateutil"
	"github.com/tomtom215/covid19db/internal/logging"
)

// Source is the combined dataset the Loader reads.
type Source interface {
	// Count returns the number of input rows.
	Count(ctx context.Context) (int64, error)
	// MaxDate returns the latest date in the input as a Julian day.
	MaxDate(ctx context.Context) (int, error)
	// Open returns a cursor over all rows ordered by dataset, location_key, date.
	Open(ctx context.Context) (Cursor, error)
}

// Cursor iterates input rows. Row is valid until the next call to Next.
type Cursor interface {
	Next() bool
	Row() Row
	Err() error
	Close() error
}

const (
	attachedName = "combined"
	datasetTable = attachedName + ".dataset"
)

// SQLiteSource reads the combined dataset's SQLite file through an
// in-memory DuckDB connection with the sqlite_scanner extension.
type SQLiteSource struct {
	db     *sql.DB
	dbPath string
}

// OpenSQLiteSource attaches the SQLite file at dbPath read-only and checks
// that it has a dataset table.
func OpenSQLiteSource(ctx context.Context, dbPath string) (*SQLiteSource, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	// One connection, so the ATTACH is visible to every query.
	db.SetMaxOpenConns(1)

	if err := loadSQLiteExtension(ctx, db); err != nil {
		db.Close() //nolint:errcheck // best-effort cleanup on error path
		return nil, fmt.Errorf("load sqlite extension: %w", err)
	}

	if err := attachSQLiteDatabase(ctx, db, dbPath); err != nil {
		db.Close() //nolint:errcheck // best-effort cleanup on error path
		return nil, fmt.Errorf("attach database: %w", err)
	}

	if err := verifyDatasetTable(ctx, db); err != nil {
		detachSQLiteDatabase(db)
		db.Close() //nolint:errcheck // best-effort cleanup on error path
		return nil, fmt.Errorf("verify tables: %w", err)
	}

	return &SQLiteSource{db: db, dbPath: dbPath}, nil
}

// loadSQLiteExtension installs and loads sqlite_scanner, falling back to a
// plain LOAD and then FORCE INSTALL.
func loadSQLiteExtension(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "INSTALL sqlite_scanner;"); err != nil {
		if _, loadErr := db.ExecContext(ctx, "LOAD sqlite_scanner;"); loadErr == nil {
			return nil
		} else if _, forceErr := db.ExecContext(ctx, "FORCE INSTALL sqlite_scanner;"); forceErr != nil {
			return fmt.Errorf("install error: %w, load error: %w, force install error: %w", err, loadErr, forceErr)
		}
	}

	_, err := db.ExecContext(ctx, "LOAD sqlite_scanner;")
	return err
}

func attachSQLiteDatabase(ctx context.Context, db *sql.DB, dbPath string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	stmt := fmt.Sprintf("ATTACH '%s' AS %s (TYPE SQLITE, READ_ONLY)",
		strings.ReplaceAll(dbPath, "'", "''"), attachedName)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("attach %s: %w", dbPath, err)
	}
	return nil
}

func detachSQLiteDatabase(db *sql.DB) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db.ExecContext(ctx, "DETACH DATABASE IF EXISTS "+attachedName) //nolint:errcheck // best-effort detach, errors not actionable
}

func verifyDatasetTable(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM information_schema.tables WHERE table_catalog = ? AND table_name = 'dataset'",
		attachedName,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("check table dataset: %w", err)
	}
	if count == 0 {
		return errors.New("table dataset not found in attached database")
	}
	return nil
}

// Close detaches the SQLite file and closes the DuckDB connection.
func (s *SQLiteSource) Close() error {
	detachSQLiteDatabase(s.db)
	return s.db.Close()
}

// Path returns the attached SQLite file path.
func (s *SQLiteSource) Path() string {
	return s.dbPath
}

// Count returns the number of rows in the dataset table.
func (s *SQLiteSource) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+datasetTable).Scan(&count); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

// MaxDate returns MAX(date) of the dataset table as a Julian day.
// The column may be stored as TEXT or DATE; both render as YYYY-MM-DD.
func (s *SQLiteSource) MaxDate(ctx context.Context) (int, error) {
	var maxDate sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT CAST(MAX(date) AS VARCHAR) FROM "+datasetTable,
	).Scan(&maxDate)
	if err != nil {
		return 0, fmt.Errorf("max date: %w", err)
	}
	if !maxDate.Valid {
		return 0, ErrEmptyDataset
	}
	value := maxDate.String
	if len(value) > len(dateutil.Layout) {
		value = value[:len(dateutil.Layout)]
	}
	jd, err := dateutil.Parse(value)
	if err != nil {
		return 0, fmt.Errorf("max date: %w: %v", ErrMalformedDate, err)
	}
	return jd, nil
}

// Open starts the ordered scan of the dataset table.
func (s *SQLiteSource) Open(ctx context.Context) (Cursor, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT * FROM "+datasetTable+" ORDER BY dataset, location_key, date")
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	columns, err := rows.Columns()
	if err != nil {
		rows.Close() //nolint:errcheck // best-effort cleanup on error path
		return nil, fmt.Errorf("read columns: %w", err)
	}
	logging.CtxComponent(ctx, "combined").Debug().
		Int("columns", len(columns)).
		Str("path", s.dbPath).
		Msg("Opened combined dataset cursor")
	return newSQLCursor(rows, columns), nil
}

// sqlCursor adapts *sql.Rows to Cursor, scanning each row into a MapRow.
type sqlCursor struct {
	rows    *sql.Rows
	columns []string
	values  []any
	ptrs    []any
	row     MapRow
	err     error
}

func newSQLCursor(rows *sql.Rows, columns []string) *sqlCursor {
	c := &sqlCursor{
		rows:    rows,
		columns: columns,
		values:  make([]any, len(columns)),
		ptrs:    make([]any, len(columns)),
		row:     make(MapRow, len(columns)),
	}
	for i := range c.values {
		c.ptrs[i] = &c.values[i]
	}
	return c
}

func (c *sqlCursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}
	if err := c.rows.Scan(c.ptrs...); err != nil {
		c.err = fmt.Errorf("scan record: %w", err)
		return false
	}
	for i, name := range c.columns {
		c.row[name] = c.values[i]
	}
	return true
}

func (c *sqlCursor) Row() Row {
	return c.row
}

func (c *sqlCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	if err := c.rows.Err(); err != nil {
		return fmt.Errorf("iterate records: %w", err)
	}
	return nil
}

func (c *sqlCursor) Close() error {
	return c.rows.Close()
}
