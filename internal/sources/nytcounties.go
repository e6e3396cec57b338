// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package sources

import (
	"context"
	"io"

	"github.com/tomtom215/covid19db/internal/database"
	"github.com/tomtom215/covid19db/internal/dateutil"
	"github.com/tomtom215/covid19db/internal/models"
)

// SourceNYTCounties names the New York Times us-counties.csv.
const SourceNYTCounties = "nytcounties"

var nytCountiesHeader = []string{"date", "county", "state", "fips", "cases", "deaths"}

// LoadNYTCounties loads us-counties.csv into nytcounties_raw.
func LoadNYTCounties(ctx context.Context, store Store, r io.Reader) (int64, error) {
	dec, err := newDecoder(SourceNYTCounties, newCSVReader(r, ','), nytCountiesHeader, headerExact)
	if err != nil {
		return 0, err
	}

	return loadTable(ctx, store, SourceNYTCounties, database.TableNYTCounties, func(w Inserter) error {
		return decodeEach(ctx, SourceNYTCounties, dec, func(rec *models.NYTCountyRecord) error {
			jd, err := dateutil.Parse(rec.Date)
			if err != nil {
				return err
			}
			return w.Insert(ctx, jd, rec.County, rec.State, rec.FIPS, rec.Cases, rec.Deaths)
		})
	})
}
