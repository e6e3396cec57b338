// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

// Command covid19db rebuilds a DuckDB database of COVID-19 time series.
//
// Every run drops and recreates all tables, then loads in order:
//
//  1. Johns Hopkins UID/ISO/FIPS lookup table (FIPS to population map)
//  2. COVID Tracking Project, rt.live, Our World In Data, New York Times
//     counties and Harvey County datasets, each into its own table
//  3. The combined dataset's locations TSV into cdataset_loc
//  4. The combined dataset's values database into cdataset, gap-filling
//     every location series through the latest date in one transaction
//
// followed by CHECKPOINT, VACUUM and ANALYZE.
//
// # Configuration
//
// Settings come from built-in defaults, then a YAML file (covid19db.yaml,
// covid19db.yml, /etc/covid19db/config.yaml, $CONFIG_PATH or -config),
// then environment variables. Sources accept http(s), file, s3 and gs URLs
// or local paths; .gz and .zst files are decompressed.
//
// # Usage
//
//	covid19db [-config path] [-dry-run] [-version]
//
// -dry-run fetches and parses everything and rolls the combined load back.
// SIGINT and SIGTERM cancel the run before commit. The exit code is 1 on
// any failure.
package main
