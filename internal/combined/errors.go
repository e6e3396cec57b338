// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package combined

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn is returned when a mandatory identity column
	// (dataset, location_key, date_year, date_month, date_day) is absent or null.
	ErrMissingColumn = errors.New("missing mandatory column")

	// ErrMalformedDate is returned when a row's date parts do not form a valid calendar date.
	ErrMalformedDate = errors.New("malformed date")

	// ErrOutOfOrder is returned when rows of one series do not arrive in
	// strictly increasing date order.
	ErrOutOfOrder = errors.New("rows out of order")

	// ErrEmptyDataset is returned by MaxDate when the input has no rows.
	ErrEmptyDataset = errors.New("combined dataset is empty")

	// ErrLoadRunning is returned when Run is called on a Loader that is already running.
	ErrLoadRunning = errors.New("load already in progress")
)

// RowError reports a fatal failure on one input row.
type RowError struct {
	// Index is the 1-based position of the row in the input cursor.
	Index int64
	// Key is the row's location key, if it could be read.
	Key string
	Err error
}

func (e *RowError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("row %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("row %d (%s): %v", e.Index, e.Key, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ClassifyError maps a load error to the error_type label used in metrics.
func ClassifyError(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, ErrMissingColumn):
		return "missing_column"
	case errors.Is(err, ErrMalformedDate):
		return "malformed_date"
	case errors.Is(err, ErrOutOfOrder):
		return "out_of_order"
	case errors.Is(err, ErrEmptyDataset):
		return "empty_dataset"
	}
	var rowErr *RowError
	if errors.As(err, &rowErr) {
		return "sink_write"
	}
	return "other"
}
