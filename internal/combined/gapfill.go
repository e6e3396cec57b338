// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package combined

import (
	"context"
	"fmt"

	"github.com/tomtom215/covid19db/internal/models"
)

// RecordWriter persists one cdataset record.
type RecordWriter interface {
	InsertDaily(ctx context.Context, r *models.DailyRecord) error
}

// GapFiller keeps every (dataset, location) series dense. Records must be
// pushed in (dataset, location, date) order.
type GapFiller struct {
	maxDate int
	last    *models.DailyRecord
	filled  int64
}

// NewGapFiller creates a GapFiller that extends each finished series to
// maxDate, a Julian day.
func NewGapFiller(maxDate int) *GapFiller {
	return &GapFiller{maxDate: maxDate}
}

// Push writes the synthetic days between the previous record and next,
// then writes next itself.
func (g *GapFiller) Push(ctx context.Context, w RecordWriter, next *models.DailyRecord) error {
	if g.last != nil && g.last.Series() == next.Series() && next.DateJulian <= g.last.DateJulian {
		return fmt.Errorf("%w: %s location %d date %s after %s",
			ErrOutOfOrder, next.Dataset, next.LocationID, next.Date, g.last.Date)
	}
	if err := g.fill(ctx, w, next); err != nil {
		return err
	}
	if err := w.InsertDaily(ctx, next); err != nil {
		return err
	}
	g.last = next
	return nil
}

// Flush fills the trailing gap of the last series up to the maximum date.
// It is called once after the final Push.
func (g *GapFiller) Flush(ctx context.Context, w RecordWriter) error {
	err := g.fill(ctx, w, nil)
	g.last = nil
	return err
}

// Filled returns the number of synthetic records written so far.
func (g *GapFiller) Filled() int64 {
	return g.filled
}

func (g *GapFiller) fill(ctx context.Context, w RecordWriter, next *models.DailyRecord) error {
	if g.last == nil {
		return nil
	}

	bound := g.maxDate
	if next != nil && next.Series() == g.last.Series() {
		bound = next.DateJulian - 1
	}

	for jd, days := g.last.DateJulian+1, 1; jd <= bound; jd, days = jd+1, days+1 {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec := g.last.DuplicateDay()
		rec.SetDate(jd)
		rec.AdvanceDayIndexes(days)
		if err := w.InsertDaily(ctx, rec); err != nil {
			return fmt.Errorf("fill %s location %d: %w", rec.Dataset, rec.LocationID, err)
		}
		g.filled++
	}
	return nil
}
