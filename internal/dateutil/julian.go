// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

// Package dateutil converts between calendar dates and Julian day numbers.
//
// A Julian day number is the integer count of days since noon UTC on
// 1 January 4713 BC (proleptic Julian calendar). All loaders store dates
// as Julian day numbers so that consecutive days differ by exactly one:
//
//	jd, _ := dateutil.FromYMD(2015, 3, 14) // 2457096
//	dateutil.Format(jd + 1)                 // "2015-03-15"
package dateutil

import (
	"errors"
	"fmt"
	"time"
)

const (
	// Layout is the ISO date layout used by every dataset ("%Y-%m-%d").
	Layout = "2006-01-02"

	// CompactLayout is the covidtracking date layout ("%Y%m%d").
	CompactLayout = "20060102"

	// unixEpochJulian is the Julian day number of 1970-01-01.
	unixEpochJulian = 2440588

	secondsPerDay = 24 * 60 * 60
)

// ErrInvalidDate is returned when a year/month/day triple or a date string
// does not name a real calendar day.
var ErrInvalidDate = errors.New("invalid calendar date")

// FromTime returns the Julian day number of t's calendar day in UTC.
func FromTime(t time.Time) int {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(midnight.Unix()/secondsPerDay) + unixEpochJulian
}

// ToTime returns midnight UTC of the given Julian day.
func ToTime(jd int) time.Time {
	return time.Unix(int64(jd-unixEpochJulian)*secondsPerDay, 0).UTC()
}

// FromYMD converts a calendar date to its Julian day number.
// Out-of-range components (month 13, February 30) are rejected rather
// than normalized.
func FromYMD(year, month, day int) (int, error) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return 0, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, month, day)
	}
	return FromTime(t), nil
}

// ToYMD splits a Julian day number into year, month and day.
func ToYMD(jd int) (year, month, day int) {
	t := ToTime(jd)
	return t.Year(), int(t.Month()), t.Day()
}

// Format renders a Julian day number with Layout.
func Format(jd int) string {
	return ToTime(jd).Format(Layout)
}

// Parse converts a "YYYY-MM-DD" string to a Julian day number.
func Parse(s string) (int, error) {
	return parseLayout(Layout, s)
}

// ParseCompact converts a "YYYYMMDD" string to a Julian day number.
func ParseCompact(s string) (int, error) {
	return parseLayout(CompactLayout, s)
}

func parseLayout(layout, s string) (int, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidDate, s, err)
	}
	return FromTime(t), nil
}
