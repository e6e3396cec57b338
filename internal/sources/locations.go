// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package sources

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jszwec/csvutil"

	"github.com/tomtom215/covid19db/internal/database"
	"github.com/tomtom215/covid19db/internal/models"
)

// SourceLocations names the combined dataset's locations TSV.
const SourceLocations = "locations"

// LoadLocations loads the locations TSV into cdataset_loc, numbering rows
// 1, 2, ... in file order. It returns the registry seed: each key mapped to
// its ID, county FIPS code and the population fipsPop has for that code.
//
// Columns are read by position; the file's own header row is skipped.
func LoadLocations(ctx context.Context, store Store, r io.Reader, fipsPop map[int64]int64) (map[string]models.LocationRecord, error) {
	cr := newCSVReader(r, '\t')
	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s is empty", ErrHeaderMismatch, SourceLocations)
		}
		return nil, fmt.Errorf("read %s header: %w", SourceLocations, err)
	}

	header := models.LocationFileHeader
	dec, err := csvutil.NewDecoder(&fixedWidthReader{r: cr, width: len(header)}, header...)
	if err != nil {
		return nil, fmt.Errorf("create %s decoder: %w", SourceLocations, err)
	}

	seed := make(map[string]models.LocationRecord)
	var id int64
	_, err = loadTable(ctx, store, SourceLocations, database.TableLocations, func(w Inserter) error {
		return decodeEach(ctx, SourceLocations, dec, func(rec *models.LocationFileRecord) error {
			id++
			loc := models.LocationRecord{ID: id, FIPS: rec.USCountyFIPS}
			if rec.USCountyFIPS != nil {
				if pop, ok := fipsPop[*rec.USCountyFIPS]; ok {
					loc.Population = &pop
				}
			}
			seed[rec.Key] = loc

			a := rec.Attributes(id)
			return w.Insert(ctx,
				a.ID, a.Type, a.Label, a.CountryCode, a.Country, a.Province,
				a.Administrative, a.Region, a.Subregion, a.USStateCode, a.USStateName,
				a.USCountyFIPS,
			)
		})
	})
	if err != nil {
		return nil, err
	}
	return seed, nil
}
