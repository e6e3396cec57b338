// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package combined

import (
	"context"
	"fmt"

	"github.com/tomtom215/covid19db/internal/dateutil"
	"github.com/tomtom215/covid19db/internal/models"
)

// metricNames are the four measured quantities, in column-suffix form.
var metricNames = [4]string{"confirmed", "deaths", "recovered", "infected"}

// Transformer turns combined dataset rows into cdataset records.
type Transformer struct {
	registry *Registry
	fipsPop  map[int64]int64
}

// NewTransformer creates a Transformer resolving locations through registry
// and populations through fipsPop.
func NewTransformer(registry *Registry, fipsPop map[int64]int64) *Transformer {
	return &Transformer{registry: registry, fipsPop: fipsPop}
}

// Transform maps one input row. A new location key causes one
// InsertLocation on w. Missing identity columns and invalid dates are
// returned as ErrMissingColumn and ErrMalformedDate.
func (t *Transformer) Transform(ctx context.Context, w LocationWriter, row Row) (*models.DailyRecord, error) {
	dataset, ok := row.String("dataset")
	if !ok {
		return nil, fmt.Errorf("%w: dataset", ErrMissingColumn)
	}
	key, ok := row.String("location_key")
	if !ok {
		return nil, fmt.Errorf("%w: location_key", ErrMissingColumn)
	}
	julian, err := rowDate(row)
	if err != nil {
		return nil, err
	}

	loc, err := t.registry.Resolve(ctx, w, key, row)
	if err != nil {
		return nil, err
	}

	// One denominator for all eight rates of the row.
	population := ResolvePopulation(optInt64(row, "factbook_population"), loc.FIPS, t.fipsPop)

	rec := &models.DailyRecord{
		Dataset:    dataset,
		LocationID: loc.ID,
		Latitude:   optFloat(row, "location_lat"),
		Longitude:  optFloat(row, "location_long"),

		DayIndex0:             int(intOrZero(row, "day_index_0")),
		DayIndex1:             int(intOrZero(row, "day_index_1")),
		DayIndex10:            optInt(row, "day_index_10"),
		DayIndex100:           optInt(row, "day_index_100"),
		DayIndex1k:            optInt(row, "day_index_1k"),
		DayIndex10k:           optInt(row, "day_index_10k"),
		DayIndexPeak:          optInt(row, "day_index_peak"),
		DayIndexPeakConfirmed: optInt(row, "day_index_peak_confirmed"),
		DayIndexPeakDeaths:    optInt(row, "day_index_peak_deaths"),

		RelativeDeaths:    optFloat(row, "relative_deaths"),
		RelativeRecovered: optFloat(row, "relative_recovered"),
		RelativeInfected:  optFloat(row, "relative_infected"),

		FactbookArea:       optFloat(row, "factbook_area"),
		FactbookPopulation: population,
		FactbookDeathRate:  optFloat(row, "factbook_death_rate"),
		FactbookMedianAge:  optFloat(row, "factbook_median_age"),
	}
	rec.SetDate(julian)

	abs := [4]*int64{&rec.AbsoluteConfirmed, &rec.AbsoluteDeaths, &rec.AbsoluteRecovered, &rec.AbsoluteInfected}
	absRate := [4]**float64{&rec.AbsolutePop100kConfirmed, &rec.AbsolutePop100kDeaths, &rec.AbsolutePop100kRecovered, &rec.AbsolutePop100kInfected}
	delta := [4]*int64{&rec.DeltaConfirmed, &rec.DeltaDeaths, &rec.DeltaRecovered, &rec.DeltaInfected}
	deltaRate := [4]**float64{&rec.DeltaPop100kConfirmed, &rec.DeltaPop100kDeaths, &rec.DeltaPop100kRecovered, &rec.DeltaPop100kInfected}
	deltaPct := [4]**float64{&rec.DeltaPctConfirmed, &rec.DeltaPctDeaths, &rec.DeltaPctRecovered, &rec.DeltaPctInfected}
	peakPct := [4]**float64{&rec.PeakPctConfirmed, &rec.PeakPctDeaths, &rec.PeakPctRecovered, &rec.PeakPctInfected}

	for i, m := range metricNames {
		*abs[i] = intOrZero(row, "absolute_"+m)
		*delta[i] = intOrZero(row, "delta_"+m)
		*absRate[i] = rate(row, "absolute", m, population)
		*deltaRate[i] = rate(row, "delta", m, population)
		*deltaPct[i] = optFloat(row, "delta_pct_"+m)
		*peakPct[i] = optFloat(row, "peak_pct_"+m)
	}

	return rec, nil
}

// rate resolves <prefix>_pop100k_<metric>, falling back to <prefix>_<metric>
// over population.
func rate(row Row, prefix, metric string, population *int64) *float64 {
	return RatePer100k(
		optFloat(row, prefix+"_pop100k_"+metric),
		optInt64(row, prefix+"_"+metric),
		population,
	)
}

// rowDate converts date_year, date_month and date_day to a Julian day.
func rowDate(row Row) (int, error) {
	var parts [3]int64
	for i, name := range [3]string{"date_year", "date_month", "date_day"} {
		v, ok := row.Int(name)
		if !ok {
			if _, present := row.String(name); present {
				return 0, fmt.Errorf("%w: %s is not an integer", ErrMalformedDate, name)
			}
			return 0, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		parts[i] = v
	}
	jd, err := dateutil.FromYMD(int(parts[0]), int(parts[1]), int(parts[2]))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedDate, err)
	}
	return jd, nil
}
