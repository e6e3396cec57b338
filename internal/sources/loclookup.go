// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package sources

import (
	"context"
	"io"

	"github.com/tomtom215/covid19db/internal/database"
	"github.com/tomtom215/covid19db/internal/models"
)

// SourceLocLookup names the Johns Hopkins location lookup table.
const SourceLocLookup = "loc_lookup"

var locLookupHeader = []string{
	"UID", "iso2", "iso3", "code3", "FIPS", "Admin2", "Province_State",
	"Country_Region", "Lat", "Long_", "Combined_Key", "Population",
}

// LoadLocLookup loads UID_ISO_FIPS_LookUp_Table.csv into loc_lookup and
// returns FIPS code to population for rows that carry both.
func LoadLocLookup(ctx context.Context, store Store, r io.Reader) (map[int64]int64, error) {
	dec, err := newDecoder(SourceLocLookup, newCSVReader(r, ','), locLookupHeader, headerSubset)
	if err != nil {
		return nil, err
	}

	fipsPop := make(map[int64]int64)
	_, err = loadTable(ctx, store, SourceLocLookup, database.TableLocLookup, func(w Inserter) error {
		return decodeEach(ctx, SourceLocLookup, dec, func(rec *models.LocLookupRecord) error {
			if rec.FIPS != nil && rec.Population != nil {
				fipsPop[*rec.FIPS] = *rec.Population
			}
			return w.Insert(ctx,
				rec.UID, rec.ISO2, rec.ISO3, rec.Code3, rec.FIPS,
				nullString(rec.Admin2), nullString(rec.ProvinceState),
				rec.CountryRegion, rec.Latitude, rec.Longitude,
				rec.CombinedKey, rec.Population,
			)
		})
	})
	if err != nil {
		return nil, err
	}
	return fipsPop, nil
}
