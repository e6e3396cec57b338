// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package sources

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/tomtom215/covid19db/internal/validation"
)

// ErrHeaderMismatch is returned when a file's header differs from the
// columns the loader expects.
var ErrHeaderMismatch = errors.New("header mismatch")

// headerMode selects how strictly a header is compared.
type headerMode int

const (
	// headerExact requires the same columns in the same order.
	headerExact headerMode = iota
	// headerSubset requires every expected column to be present.
	headerSubset
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// newCSVReader returns a lenient reader: quotes may appear inside fields
// and records may have varying field counts. A leading BOM is dropped.
func newCSVReader(r io.Reader, comma rune) *csv.Reader {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	cr := csv.NewReader(br)
	cr.Comma = comma
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr
}

func checkHeader(source string, got, want []string, mode headerMode) error {
	if mode == headerExact {
		if len(got) != len(want) {
			return fmt.Errorf("%w: %s has %d columns, want %d", ErrHeaderMismatch, source, len(got), len(want))
		}
		for i := range want {
			if strings.TrimSpace(got[i]) != want[i] {
				return fmt.Errorf("%w: %s column %d is %q, want %q", ErrHeaderMismatch, source, i+1, got[i], want[i])
			}
		}
		return nil
	}

	present := make(map[string]bool, len(got))
	for _, h := range got {
		present[strings.TrimSpace(h)] = true
	}
	var missing []string
	for _, w := range want {
		if !present[w] {
			missing = append(missing, w)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s is missing columns %s", ErrHeaderMismatch, source, strings.Join(missing, ", "))
	}
	return nil
}

// newDecoder reads the header from cr, checks it, and returns a decoder
// positioned on the first data row.
func newDecoder(source string, cr *csv.Reader, want []string, mode headerMode) (*csvutil.Decoder, error) {
	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s is empty", ErrHeaderMismatch, source)
		}
		return nil, fmt.Errorf("read %s header: %w", source, err)
	}
	if err := checkHeader(source, dec.Header(), want, mode); err != nil {
		return nil, err
	}
	return dec, nil
}

// decodeEach decodes and validates every remaining row into a T and hands
// it to fn. Line numbers in errors count the header as line 1.
func decodeEach[T any](ctx context.Context, source string, dec *csvutil.Decoder, fn func(*T) error) error {
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var rec T
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("decode %s line %d: %w", source, line, err)
		}
		if err := validation.Check(&rec); err != nil {
			return fmt.Errorf("validate %s line %d: %w", source, line, err)
		}
		if err := fn(&rec); err != nil {
			return fmt.Errorf("%s line %d: %w", source, line, err)
		}
	}
}

// fixedWidthReader pads short records and truncates long ones to width so
// positional files with ragged rows decode against an explicit header.
type fixedWidthReader struct {
	r     *csv.Reader
	width int
}

func (f *fixedWidthReader) Read() ([]string, error) {
	rec, err := f.r.Read()
	if err != nil {
		return nil, err
	}
	switch {
	case len(rec) > f.width:
		rec = rec[:f.width]
	case len(rec) < f.width:
		padded := make([]string, f.width)
		copy(padded, rec)
		rec = padded
	}
	return rec, nil
}

// nullString maps "" to nil.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
