// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package models

import (
	"github.com/tomtom215/covid19db/internal/dateutil"
)

// DailyRecord is one row of the cdataset table.
type DailyRecord struct {
	// Identity
	Dataset    string
	LocationID int64
	Latitude   *float64
	Longitude  *float64

	// Date fields, all derived from DateJulian
	Date       string
	DateJulian int
	Year       int
	Month      int
	Day        int

	// Day-index counters
	DayIndex0             int
	DayIndex1             int
	DayIndex10            *int
	DayIndex100           *int
	DayIndex1k            *int
	DayIndex10k           *int
	DayIndexPeak          *int
	DayIndexPeakConfirmed *int
	DayIndexPeakDeaths    *int

	// Cumulative counts
	AbsoluteConfirmed int64
	AbsoluteDeaths    int64
	AbsoluteRecovered int64
	AbsoluteInfected  int64

	AbsolutePop100kConfirmed *float64
	AbsolutePop100kDeaths    *float64
	AbsolutePop100kRecovered *float64
	AbsolutePop100kInfected  *float64

	RelativeDeaths    *float64
	RelativeRecovered *float64
	RelativeInfected  *float64

	// Day-over-day deltas
	DeltaConfirmed int64
	DeltaDeaths    int64
	DeltaRecovered int64
	DeltaInfected  int64

	DeltaPctConfirmed *float64
	DeltaPctDeaths    *float64
	DeltaPctRecovered *float64
	DeltaPctInfected  *float64

	DeltaPop100kConfirmed *float64
	DeltaPop100kDeaths    *float64
	DeltaPop100kRecovered *float64
	DeltaPop100kInfected  *float64

	PeakPctConfirmed *float64
	PeakPctDeaths    *float64
	PeakPctRecovered *float64
	PeakPctInfected  *float64

	// Population context
	FactbookArea       *float64
	FactbookPopulation *int64
	FactbookDeathRate  *float64
	FactbookMedianAge  *float64
}

// SeriesKey identifies the time series a record belongs to.
type SeriesKey struct {
	Dataset    string
	LocationID int64
}

// Series returns the record's series key.
func (r *DailyRecord) Series() SeriesKey {
	return SeriesKey{Dataset: r.Dataset, LocationID: r.LocationID}
}

// SetDate moves the record to the given Julian day, recomputing the
// string and calendar component fields.
func (r *DailyRecord) SetDate(jd int) {
	r.DateJulian = jd
	r.Date = dateutil.Format(jd)
	r.Year, r.Month, r.Day = dateutil.ToYMD(jd)
}

// DuplicateDay returns a copy of r representing a day with no change:
// absolute deltas are zero and percentage and per-100k deltas are nil.
// Pointer fields are shared with r; callers replace rather than mutate them.
func (r *DailyRecord) DuplicateDay() *DailyRecord {
	dup := *r

	dup.DeltaConfirmed = 0
	dup.DeltaDeaths = 0
	dup.DeltaRecovered = 0
	dup.DeltaInfected = 0

	dup.DeltaPctConfirmed = nil
	dup.DeltaPctDeaths = nil
	dup.DeltaPctRecovered = nil
	dup.DeltaPctInfected = nil

	dup.DeltaPop100kConfirmed = nil
	dup.DeltaPop100kDeaths = nil
	dup.DeltaPop100kRecovered = nil
	dup.DeltaPop100kInfected = nil

	return &dup
}

// AdvanceDayIndexes adds days to DayIndex0, DayIndex1 and every threshold
// or peak index that is set. Unset indexes stay nil.
func (r *DailyRecord) AdvanceDayIndexes(days int) {
	r.DayIndex0 += days
	r.DayIndex1 += days
	r.DayIndex10 = shiftIndex(r.DayIndex10, days)
	r.DayIndex100 = shiftIndex(r.DayIndex100, days)
	r.DayIndex1k = shiftIndex(r.DayIndex1k, days)
	r.DayIndex10k = shiftIndex(r.DayIndex10k, days)
	r.DayIndexPeak = shiftIndex(r.DayIndexPeak, days)
	r.DayIndexPeakConfirmed = shiftIndex(r.DayIndexPeakConfirmed, days)
	r.DayIndexPeakDeaths = shiftIndex(r.DayIndexPeakDeaths, days)
}

func shiftIndex(idx *int, days int) *int {
	if idx == nil {
		return nil
	}
	v := *idx + days
	return &v
}
