// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

/*
Package metrics provides Prometheus instrumentation for loader runs.

Metrics are registered on the default registry with promauto and updated
through RecordX helpers so callers never touch label plumbing.

# Exposure

A loader run is a batch job, so metrics leave the process two ways:

  - Push sends the registry to a Pushgateway at the end of a run,
    grouped by run id (metrics.pushgateway_url).
  - StatusServer serves /metrics, /healthz and /progress with chi while the
    run executes (metrics.listen_addr).

# Available Metrics

Combined load:
  - covid19db_load_rows_processed_total (counter)
  - covid19db_load_fill_rows_total (counter)
  - covid19db_load_locations_added_total (counter)
  - covid19db_load_total_records (gauge)
  - covid19db_load_duration_seconds (histogram)
  - covid19db_load_last_success_timestamp (gauge)
  - covid19db_load_errors_total (counter, labels: error_type)

Auxiliary sources:
  - covid19db_source_rows_loaded_total (counter, labels: source)
  - covid19db_source_load_duration_seconds (histogram, labels: source)
  - covid19db_source_load_errors_total (counter, labels: source)

Fetch:
  - covid19db_fetch_bytes_total (counter, labels: source)
  - covid19db_fetch_duration_seconds (histogram, labels: source, scheme)
  - covid19db_fetch_errors_total (counter, labels: source, error_type)
  - covid19db_circuit_breaker_state (gauge, labels: name)
  - covid19db_circuit_breaker_transitions_total (counter, labels: name, from, to)

DuckDB:
  - covid19db_duckdb_statement_duration_seconds (histogram, labels: operation)
  - covid19db_duckdb_statement_errors_total (counter, labels: operation)

# Usage

	start := time.Now()
	err := loader.Run(ctx, sink)
	metrics.RecordLoad(time.Since(start), err, combined.ClassifyError)

	if err := metrics.Push(ctx, nil, cfg.Metrics.PushgatewayURL, cfg.Metrics.JobName, runID); err != nil {
	    logging.Warn().Err(err).Msg("Metrics push failed")
	}
*/
package metrics
