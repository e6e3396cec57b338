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

// SourceHarveyCo names the Harvey County, Kansas dataset.
const SourceHarveyCo = "harveyco"

var harveyCoHeader = []string{
	"date", "kdhe_neg_results", "kdhe_pos_results", "harveyco_tot_results",
	"harveyco_pos_results", "harveyco_confirmed", "harveyco_recovered",
}

// LoadHarveyCo loads the Harvey County CSV into harveycodata_raw.
func LoadHarveyCo(ctx context.Context, store Store, r io.Reader) (int64, error) {
	dec, err := newDecoder(SourceHarveyCo, newCSVReader(r, ','), harveyCoHeader, headerExact)
	if err != nil {
		return 0, err
	}

	return loadTable(ctx, store, SourceHarveyCo, database.TableHarveyCo, func(w Inserter) error {
		return decodeEach(ctx, SourceHarveyCo, dec, func(rec *models.HarveyCountyRecord) error {
			jd, err := dateutil.Parse(rec.Date)
			if err != nil {
				return err
			}
			return w.Insert(ctx, jd,
				rec.KDHENegResults, rec.KDHEPosResults, rec.HarveyCoTotResults,
				rec.HarveyCoPosResults, rec.HarveyCoConfirmed, rec.HarveyCoRecovered,
			)
		})
	})
}
