// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package sources

import (
	"context"
	"io"
	"math"

	"github.com/tomtom215/covid19db/internal/database"
	"github.com/tomtom215/covid19db/internal/dateutil"
	"github.com/tomtom215/covid19db/internal/models"
)

// SourceRTLive names the rt.live estimates CSV.
const SourceRTLive = "rtlive"

var rtLiveHeader = []string{
	"date", "region", "index", "mean", "median", "lower_80", "upper_80",
	"infections", "test_adjusted_positive", "test_adjusted_positive_raw",
	"positive", "tests", "new_tests", "new_cases", "new_deaths",
}

// LoadRTLive loads the rt.live CSV into rtlive. Count columns are rounded
// to integers.
func LoadRTLive(ctx context.Context, store Store, r io.Reader) (int64, error) {
	dec, err := newDecoder(SourceRTLive, newCSVReader(r, ','), rtLiveHeader, headerSubset)
	if err != nil {
		return 0, err
	}

	return loadTable(ctx, store, SourceRTLive, database.TableRTLive, func(w Inserter) error {
		return decodeEach(ctx, SourceRTLive, dec, func(rec *models.RTLiveRecord) error {
			jd, err := dateutil.Parse(rec.Date)
			if err != nil {
				return err
			}
			y, m, d := dateutil.ToYMD(jd)
			return w.Insert(ctx,
				rec.Date, jd, y, m, d, rec.Region, rec.Index,
				rec.Mean, rec.Median, rec.Lower80, rec.Upper80, rec.Infections,
				rec.TestAdjustedPositive, rec.TestAdjustedPositiveRaw,
				round(rec.Positive), round(rec.Tests),
				roundPtr(rec.NewTests), roundPtr(rec.NewCases), roundPtr(rec.NewDeaths),
			)
		})
	})
}

func round(f float64) int64 {
	return int64(math.Round(f))
}

func roundPtr(f *float64) *int64 {
	if f == nil {
		return nil
	}
	v := round(*f)
	return &v
}
