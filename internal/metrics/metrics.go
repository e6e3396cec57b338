// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for a loader run:
// - Combined dataset load (rows, gap fill, registry growth)
// - Auxiliary source loads
// - Source acquisition (bytes, errors, breaker state)
// - DuckDB statements

var (
	// Combined Load Metrics
	LoadRowsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "covid19db_load_rows_processed_total",
			Help: "Total number of combined dataset input rows processed",
		},
	)

	LoadFillRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "covid19db_load_fill_rows_total",
			Help: "Total number of synthesized gap-fill rows written",
		},
	)

	LoadLocationsAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "covid19db_load_locations_added_total",
			Help: "Total number of locations created by the registry during the load",
		},
	)

	LoadTotalRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "covid19db_load_total_records",
			Help: "Number of input rows in the combined dataset",
		},
	)

	LoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "covid19db_load_duration_seconds",
			Help:    "Duration of the combined dataset load in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 2400},
		},
	)

	LoadLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "covid19db_load_last_success_timestamp",
			Help: "Unix timestamp of the last committed combined load",
		},
	)

	LoadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "covid19db_load_errors_total",
			Help: "Total number of failed combined loads",
		},
		[]string{"error_type"}, // "malformed_date", "missing_column", "canceled", "database", "other"
	)

	// Auxiliary Source Metrics
	SourceRowsLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "covid19db_source_rows_loaded_total",
			Help: "Total number of rows loaded per auxiliary source",
		},
		[]string{"source"}, // "loc_lookup", "covidtracking", "rtlive", "owid", "nytcounties", "harveyco", "locations"
	)

	SourceLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "covid19db_source_load_duration_seconds",
			Help:    "Duration of auxiliary source loads in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	SourceLoadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "covid19db_source_load_errors_total",
			Help: "Total number of failed auxiliary source loads",
		},
		[]string{"source"},
	)

	// Fetch Metrics
	FetchBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "covid19db_fetch_bytes_total",
			Help: "Total bytes written to the work directory per source",
		},
		[]string{"source"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "covid19db_fetch_duration_seconds",
			Help:    "Duration of source downloads in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"source", "scheme"},
	)

	FetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "covid19db_fetch_errors_total",
			Help: "Total number of failed source downloads",
		},
		[]string{"source", "error_type"}, // error_type: "status", "breaker_open", "scheme", "io"
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "covid19db_circuit_breaker_state",
			Help: "Circuit breaker state per upstream host (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "covid19db_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Database Metrics
	DBStatementDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "covid19db_duckdb_statement_duration_seconds",
			Help:    "Duration of DuckDB maintenance and schema statements in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBStatementErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "covid19db_duckdb_statement_errors_total",
			Help: "Total number of failed DuckDB maintenance and schema statements",
		},
		[]string{"operation"},
	)
)

// ErrorClassifier maps an error to a low-cardinality label value.
// An empty result means "other".
type ErrorClassifier func(error) string

// RecordLoad records the outcome of a combined dataset load.
// classify may be nil.
func RecordLoad(duration time.Duration, err error, classify ErrorClassifier) {
	LoadDuration.Observe(duration.Seconds())
	if err == nil {
		LoadLastSuccess.Set(float64(time.Now().Unix()))
		return
	}

	errorType := "other"
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		errorType = "canceled"
	case classify != nil:
		if t := classify(err); t != "" {
			errorType = t
		}
	}
	LoadErrors.WithLabelValues(errorType).Inc()
}

// RecordLoadProgress adds processed input rows, fill rows and new locations
// since the previous call.
func RecordLoadProgress(rows, fillRows, locationsAdded int64) {
	LoadRowsProcessed.Add(float64(rows))
	LoadFillRows.Add(float64(fillRows))
	LoadLocationsAdded.Add(float64(locationsAdded))
}

// RecordSourceLoad records an auxiliary source load.
func RecordSourceLoad(source string, rows int64, duration time.Duration, err error) {
	SourceLoadDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err != nil {
		SourceLoadErrors.WithLabelValues(source).Inc()
		return
	}
	SourceRowsLoaded.WithLabelValues(source).Add(float64(rows))
}

// RecordFetch records a source download.
func RecordFetch(source, scheme string, bytes int64, duration time.Duration) {
	FetchDuration.WithLabelValues(source, scheme).Observe(duration.Seconds())
	FetchBytes.WithLabelValues(source).Add(float64(bytes))
}

// RecordFetchError records a failed source download.
func RecordFetchError(source, errorType string) {
	FetchErrors.WithLabelValues(source, errorType).Inc()
}

// RecordBreakerTransition records a circuit breaker state change.
// States use gobreaker's numbering: 0 closed, 1 half-open, 2 open.
func RecordBreakerTransition(name, from, to string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// RecordDBStatement records a DuckDB schema or maintenance statement.
func RecordDBStatement(operation string, duration time.Duration, err error) {
	DBStatementDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBStatementErrors.WithLabelValues(operation).Inc()
	}
}
