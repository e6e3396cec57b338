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

// SourceCovidTracking names the COVID Tracking Project states daily CSV.
const SourceCovidTracking = "covidtracking"

// covidTrackingHeader is the full published header. The project stopped
// updating in March 2021 so the file no longer changes shape.
var covidTrackingHeader = []string{
	"date", "state", "positive", "probableCases", "negative", "pending",
	"totalTestResultsSource", "totalTestResults", "hospitalizedCurrently",
	"hospitalizedCumulative", "inIcuCurrently", "inIcuCumulative",
	"onVentilatorCurrently", "onVentilatorCumulative", "recovered",
	"lastUpdateEt", "dateModified", "checkTimeEt", "death", "hospitalized",
	"hospitalizedDischarged", "dateChecked", "totalTestsViral",
	"positiveTestsViral", "negativeTestsViral", "positiveCasesViral",
	"deathConfirmed", "deathProbable", "totalTestEncountersViral",
	"totalTestsPeopleViral", "totalTestsAntibody", "positiveTestsAntibody",
	"negativeTestsAntibody", "totalTestsPeopleAntibody",
	"positiveTestsPeopleAntibody", "negativeTestsPeopleAntibody",
	"totalTestsPeopleAntigen", "positiveTestsPeopleAntigen",
	"totalTestsAntigen", "positiveTestsAntigen", "fips", "positiveIncrease",
	"negativeIncrease", "total", "totalTestResultsIncrease", "posNeg",
	"dataQualityGrade", "deathIncrease", "hospitalizedIncrease", "hash",
	"commercialScore", "negativeRegularScore", "negativeScore",
	"positiveScore", "score", "grade",
}

// LoadCovidTracking loads the states daily CSV into covidtracking.
// Dates are published as YYYYMMDD.
func LoadCovidTracking(ctx context.Context, store Store, r io.Reader) (int64, error) {
	dec, err := newDecoder(SourceCovidTracking, newCSVReader(r, ','), covidTrackingHeader, headerExact)
	if err != nil {
		return 0, err
	}

	return loadTable(ctx, store, SourceCovidTracking, database.TableCovidTracking, func(w Inserter) error {
		return decodeEach(ctx, SourceCovidTracking, dec, func(rec *models.CovidTrackingRecord) error {
			jd, err := dateutil.ParseCompact(rec.Date)
			if err != nil {
				return err
			}
			return w.Insert(ctx,
				jd, rec.State, rec.FIPS,
				rec.Positive, rec.ProbableCases, rec.Negative, rec.Pending,
				rec.TotalTestResults, rec.HospitalizedCurrently, rec.HospitalizedCumulative,
				rec.InICUCurrently, rec.InICUCumulative, rec.OnVentilatorCurrently,
				rec.OnVentilatorCumulative, rec.Recovered, rec.Death, rec.Hospitalized,
				rec.HospitalizedDischarged, rec.TotalTestsViral, rec.PositiveTestsViral,
				rec.NegativeTestsViral, rec.PositiveCasesViral, rec.DeathConfirmed,
				rec.DeathProbable, rec.PositiveIncrease, rec.NegativeIncrease,
				rec.TotalTestResultsIncrease, rec.DeathIncrease, rec.HospitalizedIncrease,
				rec.TotalTestResultsSource, rec.DataQualityGrade,
			)
		})
	})
}
