// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package models

import (
	"testing"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func sampleRecord() *DailyRecord {
	r := &DailyRecord{
		Dataset:               "jhu",
		LocationID:            7,
		DayIndex0:             10,
		DayIndex1:             9,
		DayIndex100:           intPtr(3),
		DayIndexPeak:          intPtr(1),
		AbsoluteConfirmed:     500,
		DeltaConfirmed:        25,
		DeltaDeaths:           2,
		DeltaRecovered:        1,
		DeltaInfected:         22,
		DeltaPctConfirmed:     floatPtr(5.2),
		DeltaPop100kConfirmed: floatPtr(1.5),
		DeltaPop100kDeaths:    floatPtr(0.1),
	}
	r.SetDate(2458940)
	return r
}

func TestDuplicateDayZeroesDeltas(t *testing.T) {
	orig := sampleRecord()
	dup := orig.DuplicateDay()

	if dup.DeltaConfirmed != 0 || dup.DeltaDeaths != 0 || dup.DeltaRecovered != 0 || dup.DeltaInfected != 0 {
		t.Errorf("absolute deltas not zeroed: %+v", dup)
	}
	if dup.DeltaPctConfirmed != nil || dup.DeltaPop100kConfirmed != nil || dup.DeltaPop100kDeaths != nil {
		t.Error("percentage and per-100k deltas should be nil")
	}
	if dup.AbsoluteConfirmed != 500 {
		t.Errorf("AbsoluteConfirmed = %d, want 500", dup.AbsoluteConfirmed)
	}
	if orig.DeltaConfirmed != 25 || orig.DeltaPctConfirmed == nil {
		t.Error("DuplicateDay modified the original record")
	}
}

func TestSetDate(t *testing.T) {
	r := sampleRecord()
	r.SetDate(2457096)

	if r.Date != "2015-03-14" || r.Year != 2015 || r.Month != 3 || r.Day != 14 {
		t.Errorf("SetDate() = %s %d-%d-%d", r.Date, r.Year, r.Month, r.Day)
	}
	if r.DateJulian != 2457096 {
		t.Errorf("DateJulian = %d", r.DateJulian)
	}
}

func TestAdvanceDayIndexes(t *testing.T) {
	orig := sampleRecord()
	dup := orig.DuplicateDay()
	dup.AdvanceDayIndexes(2)

	if dup.DayIndex0 != 12 || dup.DayIndex1 != 11 {
		t.Errorf("DayIndex0/1 = %d/%d, want 12/11", dup.DayIndex0, dup.DayIndex1)
	}
	if dup.DayIndex100 == nil || *dup.DayIndex100 != 5 {
		t.Errorf("DayIndex100 = %v, want 5", dup.DayIndex100)
	}
	if dup.DayIndexPeak == nil || *dup.DayIndexPeak != 3 {
		t.Errorf("DayIndexPeak = %v, want 3", dup.DayIndexPeak)
	}
	if dup.DayIndex10 != nil || dup.DayIndex1k != nil || dup.DayIndexPeakDeaths != nil {
		t.Error("unset indexes must stay nil")
	}
	if *orig.DayIndex100 != 3 || orig.DayIndex0 != 10 {
		t.Error("advancing the duplicate changed the original")
	}
}

func TestSeries(t *testing.T) {
	a := sampleRecord()
	b := sampleRecord()
	b.SetDate(a.DateJulian + 4)
	if a.Series() != b.Series() {
		t.Error("same dataset and location should share a series")
	}
	b.Dataset = "nyt"
	if a.Series() == b.Series() {
		t.Error("different datasets should not share a series")
	}
}
