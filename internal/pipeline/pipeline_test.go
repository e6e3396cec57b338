// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/covid19db/internal/combined"
	"github.com/tomtom215/covid19db/internal/config"
	"github.com/tomtom215/covid19db/internal/database"
	"github.com/tomtom215/covid19db/internal/sources"
)

const locLookupCSV = `UID,iso2,iso3,code3,FIPS,Admin2,Province_State,Country_Region,Lat,Long_,Combined_Key,Population
84020079,US,USA,840,20079,Harvey,Kansas,US,38.04243,-97.42733,"Harvey, Kansas, US",34429
`

const locationsTSV = "key\tkey_original\ttype\tlabel\tcountry_code\tcountry_different\tcountry_normalized\tcountry_original\tprovince_different\tprovince_normalized\tprovince_original\tadministrative_different\tadministrative_normalized\tadministrative_original\tregion\tsubregion\tus_state_code\tus_state_name\tus_county_fips\n" +
	"A\tA\tadministrative\tHarvey, Kansas\tUS\t\tUnited States\tUS\t\tKansas\tKansas\t\tHarvey\tHarvey\tAmericas\tNorthern America\tKS\tKansas\t20079\n"

const nytCSV = "date,county,state,fips,cases,deaths\n2020-03-01,Harvey,Kansas,20079,1,0\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

// writeCombinedSQLite builds a combined dataset with two series: A on
// 03-01 and 03-03, B on 03-02. The test is skipped when sqlite_scanner
// cannot be loaded offline.
func writeCombinedSQLite(t *testing.T, dir string) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(dir, "values-sqlite.db")

	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("open duckdb: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "INSTALL sqlite"); err != nil {
		t.Skipf("sqlite_scanner unavailable: %v", err)
	}
	if _, err := db.ExecContext(ctx, "LOAD sqlite"); err != nil {
		t.Skipf("sqlite_scanner unavailable: %v", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("ATTACH '%s' AS src (TYPE SQLITE)", path)); err != nil {
		t.Fatalf("attach: %v", err)
	}
	stmts := []string{
		`CREATE TABLE src.dataset (
			dataset TEXT, location_key TEXT, location_type TEXT, location_label TEXT,
			date TEXT, date_year BIGINT, date_month BIGINT, date_day BIGINT,
			day_index_0 BIGINT, day_index_1 BIGINT, absolute_confirmed BIGINT)`,
		`INSERT INTO src.dataset VALUES
			('jhu', 'A', 'administrative', 'Harvey, Kansas', '2020-03-01', 2020, 3, 1, 0, 0, 1),
			('jhu', 'A', 'administrative', 'Harvey, Kansas', '2020-03-03', 2020, 3, 3, 2, 2, 4),
			('jhu', 'B', 'country', 'Somewhere', '2020-03-02', 2020, 3, 2, 0, 0, 7)`,
		"DETACH src",
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("exec: %v", err)
		}
	}
	return path
}

func testConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.DatabaseConfig{
			Path:                   filepath.Join(dir, "covid19.db"),
			MaxMemory:              "512MB",
			Threads:                1,
			PreserveInsertionOrder: true,
		},
		Sources: config.SourcesConfig{
			LocLookup:   writeFile(t, dir, "loc_lookup.csv", locLookupCSV),
			NYTCounties: writeFile(t, dir, "us-counties.csv", nytCSV),
			Locations:   writeFile(t, dir, "locations-diff.tsv", locationsTSV),
			Combined:    writeCombinedSQLite(t, dir),
		},
		Load: config.LoadConfig{
			ProgressInterval: 1,
			WorkDir:          filepath.Join(dir, "work"),
		},
		Fetch: config.FetchConfig{
			Timeout:                 time.Minute,
			UserAgent:               "covid19db-test",
			RequestsPerSecond:       100,
			BreakerFailureThreshold: 3,
			BreakerTimeout:          time.Second,
		},
		Metrics: config.MetricsConfig{JobName: "covid19db-test"},
		Ledger:  config.LedgerConfig{Path: filepath.Join(dir, "ledger")},
	}
}

func countRows(t *testing.T, dbPath string) map[string]int64 {
	t.Helper()
	db, err := database.Open(&config.DatabaseConfig{Path: dbPath, MaxMemory: "512MB", Threads: 1})
	if err != nil {
		t.Fatalf("reopen database: %v", err)
	}
	defer db.Close()

	counts := make(map[string]int64)
	for _, table := range []string{database.TableLocLookup, database.TableLocations, database.TableDaily, database.TableNYTCounties, database.TableOWID} {
		n, err := db.CountRows(context.Background(), table)
		if err != nil {
			t.Fatalf("CountRows(%s): %v", table, err)
		}
		counts[table] = n
	}
	return counts
}

func lastRun(t *testing.T, path string) *combined.LoadStats {
	t.Helper()
	l, err := combined.OpenBadgerLedger(path)
	if err != nil {
		t.Fatalf("OpenBadgerLedger: %v", err)
	}
	defer l.Close()
	last, err := l.Last(context.Background())
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	return last
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)

	r := New(cfg)
	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !stats.Committed {
		t.Error("load not committed")
	}
	if stats.Processed != 3 || stats.FillRows != 2 || stats.LocationsAdded != 1 {
		t.Errorf("stats = processed %d, fill %d, added %d; want 3, 2, 1", stats.Processed, stats.FillRows, stats.LocationsAdded)
	}

	counts := countRows(t, cfg.Database.Path)
	want := map[string]int64{
		database.TableLocLookup:   1,
		database.TableLocations:   2,
		database.TableDaily:       5,
		database.TableNYTCounties: 1,
		database.TableOWID:        0,
	}
	for table, n := range want {
		if counts[table] != n {
			t.Errorf("%s rows = %d, want %d", table, counts[table], n)
		}
	}

	last := lastRun(t, cfg.Ledger.Path)
	if last == nil || last.RunID != stats.RunID || !last.Committed {
		t.Errorf("ledger last = %+v, want committed run %s", last, stats.RunID)
	}

	p, ok := r.Progress().(Progress)
	if !ok {
		t.Fatalf("Progress() type = %T", r.Progress())
	}
	if p.Phase != PhaseDone || p.Load == nil || p.Load.Status != "committed" {
		t.Errorf("progress = %+v, want done/committed", p)
	}

	if _, err := os.Stat(cfg.Load.WorkDir); err != nil {
		t.Errorf("configured work dir removed: %v", err)
	}
}

func TestRun_DryRun(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.Load.DryRun = true

	stats, err := New(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Committed || !stats.DryRun {
		t.Errorf("stats committed=%v dry_run=%v, want false/true", stats.Committed, stats.DryRun)
	}
	if stats.Processed != 3 {
		t.Errorf("processed = %d, want 3", stats.Processed)
	}

	counts := countRows(t, cfg.Database.Path)
	if counts[database.TableDaily] != 0 {
		t.Errorf("cdataset rows = %d after dry run, want 0", counts[database.TableDaily])
	}
	if counts[database.TableLocations] != 1 {
		t.Errorf("cdataset_loc rows = %d after dry run, want 1 (TSV only)", counts[database.TableLocations])
	}
}

func TestRun_SourceFailureRecorded(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.Sources.NYTCounties = writeFile(t, dir, "bad-counties.csv", "date,county,state\n")

	_, err := New(cfg).Run(context.Background())
	if !errors.Is(err, sources.ErrHeaderMismatch) {
		t.Fatalf("Run() error = %v, want ErrHeaderMismatch", err)
	}

	last := lastRun(t, cfg.Ledger.Path)
	if last == nil || last.Error == "" || last.Committed {
		t.Errorf("ledger last = %+v, want a failed run", last)
	}
}

func TestRun_MissingRequiredSource(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.Sources.Locations = filepath.Join(dir, "missing.tsv")
	cfg.Ledger.Path = ""

	if _, err := New(cfg).Run(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Run() error = %v, want ErrNotExist", err)
	}
}

func TestRun_Canceled(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.Ledger.Path = ""

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(cfg).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
}

func TestProgress_BeforeRun(t *testing.T) {
	p, ok := New(&config.Config{}).Progress().(Progress)
	if !ok {
		t.Fatal("Progress() did not return a Progress")
	}
	if p.Phase != PhaseStarting || p.Load != nil {
		t.Errorf("progress = %+v, want starting with no load", p)
	}
}
