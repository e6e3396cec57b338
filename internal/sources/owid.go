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

// SourceOWID names the Our World In Data CSV.
const SourceOWID = "owid"

// owidHeader lists the columns stored. OWID keeps adding columns, so the
// header only has to contain these.
var owidHeader = []string{
	"iso_code", "continent", "location", "date",
	"total_cases", "new_cases", "total_deaths", "new_deaths",
	"total_cases_per_million", "new_cases_per_million",
	"total_deaths_per_million", "new_deaths_per_million",
	"total_tests", "new_tests", "new_tests_smoothed",
	"total_tests_per_thousand", "new_tests_per_thousand",
	"new_tests_smoothed_per_thousand", "tests_per_case", "positive_rate",
	"tests_units", "stringency_index", "population", "population_density",
	"median_age", "aged_65_older", "aged_70_older", "gdp_per_capita",
	"extreme_poverty", "cardiovasc_death_rate", "diabetes_prevalence",
	"female_smokers", "male_smokers", "handwashing_facilities",
	"hospital_beds_per_thousand", "life_expectancy",
}

// LoadOWID loads the OWID CSV into owid.
func LoadOWID(ctx context.Context, store Store, r io.Reader) (int64, error) {
	dec, err := newDecoder(SourceOWID, newCSVReader(r, ','), owidHeader, headerSubset)
	if err != nil {
		return 0, err
	}

	return loadTable(ctx, store, SourceOWID, database.TableOWID, func(w Inserter) error {
		return decodeEach(ctx, SourceOWID, dec, func(rec *models.OWIDRecord) error {
			jd, err := dateutil.Parse(rec.Date)
			if err != nil {
				return err
			}
			return w.Insert(ctx,
				rec.ISOCode, rec.Continent, rec.Location, jd,
				rec.TotalCases, rec.NewCases, rec.TotalDeaths, rec.NewDeaths,
				rec.TotalCasesPerMillion, rec.NewCasesPerMillion,
				rec.TotalDeathsPerMillion, rec.NewDeathsPerMillion,
				rec.TotalTests, rec.NewTests, rec.NewTestsSmoothed,
				rec.TotalTestsPerThousand, rec.NewTestsPerThousand,
				rec.NewTestsSmoothedPerThousand, rec.TestsPerCase, rec.PositiveRate,
				rec.TestsUnits,
				rec.StringencyIndex, rec.Population, rec.PopulationDensity,
				rec.MedianAge, rec.Aged65Older, rec.Aged70Older, rec.GDPPerCapita,
				rec.ExtremePoverty, rec.CardiovascDeathRate, rec.DiabetesPrevalence,
				rec.FemaleSmokers, rec.MaleSmokers, rec.HandwashingFacilities,
				rec.HospitalBedsPerThousand, rec.LifeExpectancy,
			)
		})
	})
}
