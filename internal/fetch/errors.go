// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package fetch

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"
)

var (
	// ErrUnsupportedScheme is returned for URL schemes other than http,
	// https, file, s3 and gs.
	ErrUnsupportedScheme = errors.New("unsupported source scheme")

	// ErrBadStatus is returned when an HTTP server answers with a non-2xx status.
	ErrBadStatus = errors.New("unexpected HTTP status")
)

// StatusError carries the HTTP status of a failed download.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: GET %s returned %d", ErrBadStatus, e.URL, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return ErrBadStatus }

// classify maps a fetch error to a metrics label.
func classify(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case errors.Is(err, ErrBadStatus):
		return "bad_status"
	case errors.Is(err, ErrUnsupportedScheme):
		return "unsupported_scheme"
	case errors.Is(err, errDecompress):
		return "decompress"
	default:
		return "io"
	}
}
