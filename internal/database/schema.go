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

// Schema version written to covid19schema.
const (
	SchemaVersion      = 1
	SchemaMinorVersion = 0
)

// Table names.
const (
	TableSchema        = "covid19schema"
	TableLocLookup     = "loc_lookup"
	TableLocations     = "cdataset_loc"
	TableDaily         = "cdataset"
	TableCovidTracking = "covidtracking"
	TableRTLive        = "rtlive"
	TableOWID          = "owid"
	TableNYTCounties   = "nytcounties_raw"
	TableHarveyCo      = "harveycodata_raw"
)

type column struct {
	name    string
	sqlType string
}

// tableSpec describes one output table. DDL and INSERT statements are both
// generated from it so column order cannot drift between them.
type tableSpec struct {
	name    string
	columns []column
	// indexes are full CREATE INDEX statements run after the table exists.
	indexes []string
	// indexNames are dropped before the table on reinitialization.
	indexNames []string
}

func cols(sqlType string, names ...string) []column {
	out := make([]column, len(names))
	for i, n := range names {
		out[i] = column{name: n, sqlType: sqlType}
	}
	return out
}

func concat(groups ...[]column) []column {
	var out []column
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// tables lists every table in creation order.
var tables = []tableSpec{
	{
		name: TableSchema,
		columns: concat(
			cols("INTEGER NOT NULL", "version", "minorversion"),
		),
	},
	{
		// Johns Hopkins UID_ISO_FIPS_LookUp_Table.csv
		name: TableLocLookup,
		columns: concat(
			cols("BIGINT NOT NULL PRIMARY KEY", "uid"),
			cols("TEXT NOT NULL", "iso2", "iso3"),
			cols("INTEGER", "code3"),
			cols("BIGINT", "fips"),
			cols("TEXT", "admin2", "province_state"),
			cols("TEXT NOT NULL", "country_region"),
			cols("DOUBLE", "latitude", "longitude"),
			cols("TEXT NOT NULL", "combined_key"),
			cols("BIGINT", "population"),
		),
		indexes:    []string{"CREATE INDEX loc_lookup_fips ON loc_lookup (fips)"},
		indexNames: []string{"loc_lookup_fips"},
	},
	{
		name: TableLocations,
		columns: concat(
			cols("BIGINT NOT NULL PRIMARY KEY", "locid"),
			cols("TEXT NOT NULL", "type", "label", "country_code", "country", "province",
				"administrative", "region", "subregion", "us_state_code", "us_state_name"),
			cols("BIGINT", "us_county_fips"),
		),
	},
	{
		name: TableDaily,
		columns: concat(
			cols("TEXT NOT NULL", "dataset"),
			cols("BIGINT NOT NULL", "locid"),
			cols("DOUBLE", "location_lat", "location_long"),
			cols("TEXT NOT NULL", "date"),
			cols("INTEGER NOT NULL", "date_julian", "date_year", "date_month", "date_day",
				"day_index_0", "day_index_1"),
			cols("INTEGER", "day_index_10", "day_index_100", "day_index_1k", "day_index_10k",
				"day_index_peak", "day_index_peak_confirmed", "day_index_peak_deaths"),
			cols("BIGINT NOT NULL", "absolute_confirmed", "absolute_deaths", "absolute_recovered", "absolute_infected"),
			cols("DOUBLE", "absolute_pop100k_confirmed", "absolute_pop100k_deaths",
				"absolute_pop100k_recovered", "absolute_pop100k_infected",
				"relative_deaths", "relative_recovered", "relative_infected"),
			cols("BIGINT NOT NULL", "delta_confirmed", "delta_deaths", "delta_recovered", "delta_infected"),
			cols("DOUBLE", "delta_pct_confirmed", "delta_pct_deaths", "delta_pct_recovered", "delta_pct_infected",
				"delta_pop100k_confirmed", "delta_pop100k_deaths", "delta_pop100k_recovered", "delta_pop100k_infected",
				"peak_pct_confirmed", "peak_pct_deaths", "peak_pct_recovered", "peak_pct_infected",
				"factbook_area"),
			cols("BIGINT", "factbook_population"),
			cols("DOUBLE", "factbook_death_rate", "factbook_median_age"),
		),
		indexes:    []string{"CREATE UNIQUE INDEX cdataset_uniq_idx ON cdataset (dataset, locid, date_julian)"},
		indexNames: []string{"cdataset_uniq_idx"},
	},
	{
		// covidtracking.com states daily
		name: TableCovidTracking,
		columns: concat(
			cols("INTEGER NOT NULL", "date_julian"),
			cols("TEXT NOT NULL", "state"),
			cols("BIGINT NOT NULL", "fips"),
			cols("BIGINT", "positive", "probable_cases", "negative", "pending",
				"total_test_results", "hospitalized_currently", "hospitalized_cumulative",
				"in_icu_currently", "in_icu_cumulative", "on_ventilator_currently",
				"on_ventilator_cumulative", "recovered", "death", "hospitalized",
				"hospitalized_discharged", "total_tests_viral", "positive_tests_viral",
				"negative_tests_viral", "positive_cases_viral", "death_confirmed",
				"death_probable", "positive_increase", "negative_increase",
				"total_test_results_increase", "death_increase", "hospitalized_increase"),
			cols("TEXT", "total_test_results_source", "data_quality_grade"),
		),
		indexes:    []string{"CREATE INDEX covidtracking_state_date ON covidtracking (state, date_julian)"},
		indexNames: []string{"covidtracking_state_date"},
	},
	{
		// rt.live effective reproduction number estimates
		name: TableRTLive,
		columns: concat(
			cols("TEXT NOT NULL", "date"),
			cols("INTEGER NOT NULL", "date_julian", "date_year", "date_month", "date_day"),
			cols("TEXT NOT NULL", "state"),
			cols("BIGINT NOT NULL", "index"),
			cols("DOUBLE", "mean", "median", "lower_80", "upper_80", "infections",
				"test_adjusted_positive", "test_adjusted_positive_raw"),
			cols("BIGINT", "positive", "tests", "new_tests", "new_cases", "new_deaths"),
		),
	},
	{
		// Our World In Data
		name: TableOWID,
		columns: concat(
			cols("TEXT", "iso_code", "continent"),
			cols("TEXT NOT NULL", "location"),
			cols("INTEGER NOT NULL", "date_julian"),
			cols("DOUBLE", "total_cases", "new_cases", "total_deaths", "new_deaths",
				"total_cases_per_million", "new_cases_per_million",
				"total_deaths_per_million", "new_deaths_per_million",
				"total_tests", "new_tests", "new_tests_smoothed",
				"total_tests_per_thousand", "new_tests_per_thousand",
				"new_tests_smoothed_per_thousand", "tests_per_case", "positive_rate"),
			cols("TEXT", "tests_units"),
			cols("DOUBLE", "stringency_index", "population", "population_density",
				"median_age", "aged_65_older", "aged_70_older", "gdp_per_capita",
				"extreme_poverty", "cardiovasc_death_rate", "diabetes_prevalence",
				"female_smokers", "male_smokers", "handwashing_facilities",
				"hospital_beds_per_thousand", "life_expectancy"),
		),
	},
	{
		// New York Times county-level cases and deaths
		name: TableNYTCounties,
		columns: concat(
			cols("INTEGER NOT NULL", "date_julian"),
			cols("TEXT NOT NULL", "county", "state"),
			cols("BIGINT", "fips"),
			cols("BIGINT NOT NULL", "cases"),
			cols("BIGINT", "deaths"),
		),
		indexes:    []string{"CREATE INDEX nytcounties_fips ON nytcounties_raw (fips)"},
		indexNames: []string{"nytcounties_fips"},
	},
	{
		// Harvey County, Kansas local dataset
		name: TableHarveyCo,
		columns: concat(
			cols("INTEGER NOT NULL", "date_julian"),
			cols("BIGINT", "kdhe_neg_results", "kdhe_pos_results", "harveyco_tot_results",
				"harveyco_pos_results", "harveyco_confirmed", "harveyco_recovered"),
		),
	},
}

var tablesByName = func() map[string]*tableSpec {
	m := make(map[string]*tableSpec, len(tables))
	for i := range tables {
		m[tables[i].name] = &tables[i]
	}
	return m
}()

// Columns returns the column names of table in insert order.
func Columns(table string) ([]string, error) {
	spec, ok := tablesByName[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	names := make([]string, len(spec.columns))
	for i, c := range spec.columns {
		names[i] = c.name
	}
	return names, nil
}

func (t *tableSpec) createSQL() string {
	defs := make([]string, len(t.columns))
	for i, c := range t.columns {
		defs[i] = quoteIdent(c.name) + " " + c.sqlType
	}
	return fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", t.name, strings.Join(defs, ",\n\t"))
}

func (t *tableSpec) insertSQL() string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = quoteIdent(c.name)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.name, strings.Join(names, ", "), placeholders)
}

// quoteIdent quotes a column name; rtlive has a column called "index".
func quoteIdent(name string) string {
	return `"` + name + `"`
}

// schemaStatements returns the drop-and-recreate statement sequence.
func schemaStatements() []string {
	var stmts []string

	// Drop in reverse creation order, indexes before their tables.
	for i := len(tables) - 1; i >= 0; i-- {
		for _, idx := range tables[i].indexNames {
			stmts = append(stmts, "DROP INDEX IF EXISTS "+idx)
		}
		stmts = append(stmts, "DROP TABLE IF EXISTS "+tables[i].name)
	}

	for i := range tables {
		stmts = append(stmts, tables[i].createSQL())
		stmts = append(stmts, tables[i].indexes...)
		if tables[i].name == TableSchema {
			stmts = append(stmts, fmt.Sprintf("INSERT INTO %s VALUES (%d, %d)", TableSchema, SchemaVersion, SchemaMinorVersion))
		}
	}
	return stmts
}

// InitSchema drops every table this loader owns and recreates it empty.
// Each run is a full reload, so there are no migrations.
func (db *DB) InitSchema(ctx context.Context) error {
	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}

	for _, stmt := range schemaStatements() {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			metrics.RecordDBStatement("init_schema", time.Since(start), err)
			return fmt.Errorf("execute %q: %w", firstLine(stmt), err)
		}
	}

	if err := tx.Commit(); err != nil {
		metrics.RecordDBStatement("init_schema", time.Since(start), err)
		return fmt.Errorf("commit schema: %w", err)
	}

	metrics.RecordDBStatement("init_schema", time.Since(start), nil)
	logging.CtxComponent(ctx, "database").Info().
		Int("tables", len(tables)).
		Dur("duration", time.Since(start)).
		Msg("Schema initialized")
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
