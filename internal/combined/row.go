// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package combined

import (
	"math"
	"strconv"
	"strings"
)

// Row is one input row addressed by column name. Each getter reports false
// when the column is absent, NULL, or cannot be converted to the requested type.
type Row interface {
	String(name string) (string, bool)
	Int(name string) (int64, bool)
	Float(name string) (float64, bool)
}

// MapRow is a Row backed by driver values keyed by column name.
type MapRow map[string]any

// String returns the column as text.
func (r MapRow) String(name string) (string, bool) {
	switch v := r[name].(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	}
	return "", false
}

// Int returns the column as an integer. Floats are accepted only when integral.
func (r MapRow) Int(name string) (int64, bool) {
	switch v := r[name].(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	case int16:
		return int64(v), true
	case int8:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint8:
		return int64(v), true
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return int64(v), true
		}
	case float32:
		return MapRow{name: float64(v)}.Int(name)
	case string:
		return parseInt(v)
	case []byte:
		return parseInt(string(v))
	}
	return 0, false
}

// Float returns the column as a float.
func (r MapRow) Float(name string) (float64, bool) {
	switch v := r[name].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case int:
		return float64(v), true
	case string:
		return parseFloat(v)
	case []byte:
		return parseFloat(string(v))
	}
	return 0, false
}

func parseInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, ok := parseFloat(s)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Helpers applying the absent-value policy: optional fields become nil,
// non-null counters default to zero, text defaults to "".

func optInt(r Row, name string) *int {
	v, ok := r.Int(name)
	if !ok {
		return nil
	}
	n := int(v)
	return &n
}

func optInt64(r Row, name string) *int64 {
	v, ok := r.Int(name)
	if !ok {
		return nil
	}
	return &v
}

func optFloat(r Row, name string) *float64 {
	v, ok := r.Float(name)
	if !ok {
		return nil
	}
	return &v
}

func intOrZero(r Row, name string) int64 {
	v, _ := r.Int(name)
	return v
}

func stringOrEmpty(r Row, name string) string {
	v, _ := r.String(name)
	return v
}
