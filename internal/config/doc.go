// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

/*
Package config provides layered configuration for the covid19db loader.

Configuration is assembled with Koanf from three layers, later layers
overriding earlier ones:

 1. Built-in defaults (defaultConfig), pointing at the upstream datasets
 2. An optional YAML file: $CONFIG_PATH, covid19db.yaml, covid19db.yml,
    /etc/covid19db/config.yaml or /etc/covid19db/config.yml
 3. Environment variables listed in envMappings

# Sections

  - database: DuckDB output file and engine tuning
  - sources: URL or path of every dataset (empty optional sources are skipped)
  - load: progress interval, download directory, dry-run
  - fetch: HTTP timeout, pacing and circuit breaker
  - metrics: Pushgateway and status listener
  - ledger: badger directory for the run ledger
  - logging: zerolog level and format

# Environment Variables

Database:
  - DUCKDB_PATH: Output database file (default: covid19.db)
  - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 2GB)
  - DUCKDB_THREADS: Worker threads, 0 for NumCPU (default: 0)

Sources:
  - SOURCE_LOC_LOOKUP, SOURCE_COVIDTRACKING, SOURCE_RTLIVE, SOURCE_OWID,
    SOURCE_NYTCOUNTIES, SOURCE_HARVEYCO, SOURCE_LOCATIONS, SOURCE_COMBINED

Load:
  - LOAD_PROGRESS_INTERVAL: Rows between progress lines (default: 10000)
  - LOAD_WORK_DIR: Download directory (default: temp dir)
  - LOAD_KEEP_DOWNLOADS: Keep downloaded files (default: false)
  - LOAD_DRY_RUN: Roll back the combined load (default: false)

Fetch:
  - FETCH_TIMEOUT (default: 5m), FETCH_USER_AGENT,
    FETCH_REQUESTS_PER_SECOND (default: 2),
    FETCH_BREAKER_FAILURE_THRESHOLD (default: 3),
    FETCH_BREAKER_TIMEOUT (default: 30s)

Metrics and ledger:
  - PUSHGATEWAY_URL, METRICS_JOB_NAME, METRICS_LISTEN_ADDR, LEDGER_PATH

Logging:
  - LOG_LEVEL (default: info), LOG_FORMAT (default: console), LOG_CALLER

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
*/
package config
