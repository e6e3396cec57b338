// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

/*
Package database is the DuckDB output store of the loader.

Every run rebuilds the store from scratch: InitSchema drops and recreates
all tables, the auxiliary loaders each write one table through a
TableWriter, and the combined dataset is written through a single LoadTx so
a failed load leaves cdataset and cdataset_loc exactly as they were.

# Tables

  - covid19schema: schema version (1, 0)
  - loc_lookup: Johns Hopkins UID/ISO/FIPS lookup, indexed on fips
  - cdataset_loc: one row per location id
  - cdataset: one row per (dataset, locid, date_julian), unique index
    cdataset_uniq_idx
  - covidtracking, rtlive, owid, nytcounties_raw, harveycodata_raw:
    straight copies of the auxiliary sources

DDL and INSERT statements are generated from one table description, so
Columns(table) is always the order Insert expects.

# Usage

	db, err := database.Open(&cfg.Database)
	if err != nil {
	    return err
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
	    return err
	}

	tx, err := db.BeginLoad(ctx)
	if err != nil {
	    return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit
	...
	return tx.Commit()
*/
package database
