// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tomtom215/covid19db/internal/validation"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := validation.Check(c); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateLoad(); err != nil {
		return err
	}

	return c.validateLedger()
}

// validateDatabase rejects in-memory and SQLite-looking targets; the loader
// writes a DuckDB file that must survive the process.
func (c *Config) validateDatabase() error {
	if c.Database.Path == ":memory:" {
		return fmt.Errorf("DUCKDB_PATH must be a file path, not :memory:")
	}
	if strings.Contains(c.Database.Path, "?") {
		return fmt.Errorf("DUCKDB_PATH must not contain connection options: %s", c.Database.Path)
	}
	return nil
}

func (c *Config) validateLoad() error {
	if c.Load.KeepDownloads && c.Load.WorkDir == "" {
		return fmt.Errorf("LOAD_KEEP_DOWNLOADS requires LOAD_WORK_DIR")
	}
	return nil
}

func (c *Config) validateLedger() error {
	if c.Ledger.Path == "" {
		return nil
	}
	if filepath.Clean(c.Ledger.Path) == filepath.Clean(c.Database.Path) {
		return fmt.Errorf("LEDGER_PATH must differ from DUCKDB_PATH")
	}
	return nil
}
