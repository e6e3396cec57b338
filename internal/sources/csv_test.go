// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package sources

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCheckHeader(t *testing.T) {
	want := []string{"date", "state", "fips"}

	tests := []struct {
		name    string
		got     []string
		mode    headerMode
		wantErr bool
	}{
		{"exact match", []string{"date", "state", "fips"}, headerExact, false},
		{"exact with padding", []string{" date", "state ", "fips"}, headerExact, false},
		{"exact reordered", []string{"state", "date", "fips"}, headerExact, true},
		{"exact extra column", []string{"date", "state", "fips", "hash"}, headerExact, true},
		{"exact missing column", []string{"date", "state"}, headerExact, true},
		{"subset reordered", []string{"fips", "state", "date"}, headerSubset, false},
		{"subset extra column", []string{"hash", "date", "state", "fips"}, headerSubset, false},
		{"subset missing column", []string{"date", "fips"}, headerSubset, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkHeader("test", tt.got, want, tt.mode)
			if tt.wantErr {
				if !errors.Is(err, ErrHeaderMismatch) {
					t.Errorf("checkHeader() error = %v, want ErrHeaderMismatch", err)
				}
				return
			}
			if err != nil {
				t.Errorf("checkHeader() unexpected error: %v", err)
			}
		})
	}
}

func TestCheckHeader_MissingColumnsNamed(t *testing.T) {
	err := checkHeader("owid", []string{"location"}, []string{"location", "date", "iso_code"}, headerSubset)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "date, iso_code") {
		t.Errorf("error %q does not name the missing columns", err)
	}
}

func TestNewCSVReader_StripsBOM(t *testing.T) {
	cr := newCSVReader(strings.NewReader("\xEF\xBB\xBFdate,state\n2020-03-01,KS\n"), ',')
	rec, err := cr.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if rec[0] != "date" {
		t.Errorf("first field = %q, want %q", rec[0], "date")
	}
}

func TestNewCSVReader_Lenient(t *testing.T) {
	cr := newCSVReader(strings.NewReader("a\tb\tc\nx\ty \"quoted\" z\n"), '\t')
	if _, err := cr.Read(); err != nil {
		t.Fatalf("Read header: %v", err)
	}
	rec, err := cr.Read()
	if err != nil {
		t.Fatalf("Read ragged row: %v", err)
	}
	if len(rec) != 2 {
		t.Errorf("len(rec) = %d, want 2", len(rec))
	}
	if rec[1] != `y "quoted" z` {
		t.Errorf("rec[1] = %q", rec[1])
	}
}

func TestFixedWidthReader(t *testing.T) {
	cr := newCSVReader(strings.NewReader("a\nb,c,d,e\n"), ',')
	fw := &fixedWidthReader{r: cr, width: 3}

	short, err := fw.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(short) != 3 || short[0] != "a" || short[2] != "" {
		t.Errorf("short record = %q, want [a  ]", short)
	}

	long, err := fw.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(long) != 3 || long[2] != "d" {
		t.Errorf("long record = %q, want [b c d]", long)
	}
}

type testRow struct {
	Name  string `csv:"name" validate:"required"`
	Count *int64 `csv:"count" validate:"omitempty,gte=0"`
}

func TestDecodeEach(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantRows int
		wantErr  string
	}{
		{"valid", "name,count\na,1\nb,\n", 2, ""},
		{"header only", "name,count\n", 0, ""},
		{"bad integer", "name,count\na,1\nb,x\n", 0, "line 3"},
		{"validation failure", "name,count\na,-4\n", 0, "validate test line 2"},
		{"required missing", "name,count\n,1\n", 0, "validate test line 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, err := newDecoder("test", newCSVReader(strings.NewReader(tt.input), ','), []string{"name", "count"}, headerExact)
			if err != nil {
				t.Fatalf("newDecoder: %v", err)
			}

			var rows []testRow
			err = decodeEach(context.Background(), "test", dec, func(r *testRow) error {
				rows = append(rows, *r)
				return nil
			})
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("decodeEach() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeEach() unexpected error: %v", err)
			}
			if len(rows) != tt.wantRows {
				t.Errorf("decoded %d rows, want %d", len(rows), tt.wantRows)
			}
		})
	}
}

func TestDecodeEach_EmptyPointerIsNil(t *testing.T) {
	dec, err := newDecoder("test", newCSVReader(strings.NewReader("name,count\na,\n"), ','), []string{"name", "count"}, headerExact)
	if err != nil {
		t.Fatalf("newDecoder: %v", err)
	}
	err = decodeEach(context.Background(), "test", dec, func(r *testRow) error {
		if r.Count != nil {
			t.Errorf("Count = %d, want nil", *r.Count)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("decodeEach: %v", err)
	}
}

func TestDecodeEach_Canceled(t *testing.T) {
	dec, err := newDecoder("test", newCSVReader(strings.NewReader("name,count\na,1\n"), ','), []string{"name", "count"}, headerExact)
	if err != nil {
		t.Fatalf("newDecoder: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = decodeEach(ctx, "test", dec, func(*testRow) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("decodeEach() error = %v, want context.Canceled", err)
	}
}

func TestNewDecoder_EmptyInput(t *testing.T) {
	_, err := newDecoder("test", newCSVReader(strings.NewReader(""), ','), []string{"name"}, headerExact)
	if !errors.Is(err, ErrHeaderMismatch) {
		t.Errorf("newDecoder() error = %v, want ErrHeaderMismatch", err)
	}
}

func TestNullString(t *testing.T) {
	if nullString("") != nil {
		t.Error(`nullString("") should be nil`)
	}
	if p := nullString("Harvey"); p == nil || *p != "Harvey" {
		t.Errorf(`nullString("Harvey") = %v`, p)
	}
}
