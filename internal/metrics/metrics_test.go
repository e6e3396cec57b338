// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordLoadProgress(t *testing.T) {
	rows := testutil.ToFloat64(LoadRowsProcessed)
	fills := testutil.ToFloat64(LoadFillRows)
	locs := testutil.ToFloat64(LoadLocationsAdded)

	RecordLoadProgress(100, 7, 2)
	RecordLoadProgress(50, 0, 1)

	if got := testutil.ToFloat64(LoadRowsProcessed) - rows; got != 150 {
		t.Errorf("rows processed delta = %v, want 150", got)
	}
	if got := testutil.ToFloat64(LoadFillRows) - fills; got != 7 {
		t.Errorf("fill rows delta = %v, want 7", got)
	}
	if got := testutil.ToFloat64(LoadLocationsAdded) - locs; got != 3 {
		t.Errorf("locations added delta = %v, want 3", got)
	}
}

func TestRecordLoad(t *testing.T) {
	errMalformed := errors.New("malformed date")
	classify := func(err error) string {
		if errors.Is(err, errMalformed) {
			return "malformed_date"
		}
		return ""
	}

	tests := []struct {
		name      string
		err       error
		classify  ErrorClassifier
		wantLabel string
	}{
		{"canceled", fmt.Errorf("load: %w", context.Canceled), classify, "canceled"},
		{"deadline", context.DeadlineExceeded, nil, "canceled"},
		{"classified", fmt.Errorf("row 3: %w", errMalformed), classify, "malformed_date"},
		{"unclassified", errors.New("boom"), classify, "other"},
		{"no classifier", errors.New("boom"), nil, "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(LoadErrors.WithLabelValues(tt.wantLabel))
			RecordLoad(time.Second, tt.err, tt.classify)
			after := testutil.ToFloat64(LoadErrors.WithLabelValues(tt.wantLabel))
			if after-before != 1 {
				t.Errorf("LoadErrors{%s} delta = %v, want 1", tt.wantLabel, after-before)
			}
		})
	}
}

func TestRecordLoadSuccessSetsTimestamp(t *testing.T) {
	before := time.Now().Unix()
	RecordLoad(2*time.Second, nil, nil)
	if got := testutil.ToFloat64(LoadLastSuccess); got < float64(before) {
		t.Errorf("LoadLastSuccess = %v, want >= %d", got, before)
	}
}

func TestRecordSourceLoad(t *testing.T) {
	rows := testutil.ToFloat64(SourceRowsLoaded.WithLabelValues("rtlive"))
	errs := testutil.ToFloat64(SourceLoadErrors.WithLabelValues("rtlive"))

	RecordSourceLoad("rtlive", 42, time.Millisecond, nil)
	RecordSourceLoad("rtlive", 0, time.Millisecond, errors.New("header mismatch"))

	if got := testutil.ToFloat64(SourceRowsLoaded.WithLabelValues("rtlive")) - rows; got != 42 {
		t.Errorf("rows delta = %v, want 42", got)
	}
	if got := testutil.ToFloat64(SourceLoadErrors.WithLabelValues("rtlive")) - errs; got != 1 {
		t.Errorf("errors delta = %v, want 1", got)
	}
}

func TestRecordFetch(t *testing.T) {
	before := testutil.ToFloat64(FetchBytes.WithLabelValues("combined"))
	RecordFetch("combined", "https", 2048, time.Second)
	if got := testutil.ToFloat64(FetchBytes.WithLabelValues("combined")) - before; got != 2048 {
		t.Errorf("bytes delta = %v, want 2048", got)
	}

	errBefore := testutil.ToFloat64(FetchErrors.WithLabelValues("combined", "status"))
	RecordFetchError("combined", "status")
	if got := testutil.ToFloat64(FetchErrors.WithLabelValues("combined", "status")) - errBefore; got != 1 {
		t.Errorf("fetch errors delta = %v, want 1", got)
	}
}

func TestRecordBreakerTransition(t *testing.T) {
	RecordBreakerTransition("github.com", "closed", "open", 2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("github.com")); got != 2 {
		t.Errorf("breaker state = %v, want 2", got)
	}
	RecordBreakerTransition("github.com", "open", "half-open", 1)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("github.com")); got != 1 {
		t.Errorf("breaker state = %v, want 1", got)
	}
}

func TestRecordDBStatement(t *testing.T) {
	before := testutil.ToFloat64(DBStatementErrors.WithLabelValues("vacuum"))
	RecordDBStatement("vacuum", time.Millisecond, nil)
	RecordDBStatement("vacuum", time.Millisecond, errors.New("locked"))
	if got := testutil.ToFloat64(DBStatementErrors.WithLabelValues("vacuum")) - before; got != 1 {
		t.Errorf("statement errors delta = %v, want 1", got)
	}
}

// TestMetricsLint checks every registered metric against Prometheus naming rules.
func TestMetricsLint(t *testing.T) {
	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("GatherAndLint: %v", err)
	}
	for _, p := range problems {
		t.Errorf("metric %s: %s", p.Metric, p.Text)
	}
}
