// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package models

// Decoded rows of the auxiliary source files. csv tags name the upstream
// header columns; validate tags are checked on every decoded row.

// LocLookupRecord is one row of Johns Hopkins UID_ISO_FIPS_LookUp_Table.csv.
type LocLookupRecord struct {
	UID           int64    `csv:"UID" validate:"required"`
	ISO2          string   `csv:"iso2"`
	ISO3          string   `csv:"iso3"`
	Code3         *int64   `csv:"code3"`
	FIPS          *int64   `csv:"FIPS" validate:"omitempty,gt=0"`
	Admin2        string   `csv:"Admin2"`
	ProvinceState string   `csv:"Province_State"`
	CountryRegion string   `csv:"Country_Region" validate:"required"`
	Latitude      *float64 `csv:"Lat" validate:"omitempty,latitude"`
	Longitude     *float64 `csv:"Long_" validate:"omitempty,longitude"`
	CombinedKey   string   `csv:"Combined_Key" validate:"required"`
	Population    *int64   `csv:"Population" validate:"omitempty,gte=0"`
}

// LocationFileRecord is one row of the combined dataset's locations TSV.
// The file is read positionally; the tags match LocationFileHeader.
type LocationFileRecord struct {
	Key                      string `csv:"key" validate:"required"`
	KeyOriginal              string `csv:"key_original"`
	Type                     string `csv:"type"`
	Label                    string `csv:"label"`
	CountryCode              string `csv:"country_code"`
	CountryDifferent         string `csv:"country_different"`
	CountryNormalized        string `csv:"country_normalized"`
	CountryOriginal          string `csv:"country_original"`
	ProvinceDifferent        string `csv:"province_different"`
	ProvinceNormalized       string `csv:"province_normalized"`
	ProvinceOriginal         string `csv:"province_original"`
	AdministrativeDifferent  string `csv:"administrative_different"`
	AdministrativeNormalized string `csv:"administrative_normalized"`
	AdministrativeOriginal   string `csv:"administrative_original"`
	Region                   string `csv:"region"`
	Subregion                string `csv:"subregion"`
	USStateCode              string `csv:"us_state_code"`
	USStateName              string `csv:"us_state_name"`
	USCountyFIPS             *int64 `csv:"us_county_fips" validate:"omitempty,fips"`
}

// LocationFileHeader is the column order of the locations TSV.
var LocationFileHeader = []string{
	"key", "key_original", "type", "label", "country_code",
	"country_different", "country_normalized", "country_original",
	"province_different", "province_normalized", "province_original",
	"administrative_different", "administrative_normalized", "administrative_original",
	"region", "subregion", "us_state_code", "us_state_name", "us_county_fips",
}

// Attributes converts the row to a cdataset_loc row with the given ID,
// using the normalized names.
func (r *LocationFileRecord) Attributes(id int64) *LocationAttributes {
	return &LocationAttributes{
		ID:             id,
		Type:           r.Type,
		Label:          r.Label,
		CountryCode:    r.CountryCode,
		Country:        r.CountryNormalized,
		Province:       r.ProvinceNormalized,
		Administrative: r.AdministrativeNormalized,
		Region:         r.Region,
		Subregion:      r.Subregion,
		USStateCode:    r.USStateCode,
		USStateName:    r.USStateName,
		USCountyFIPS:   r.USCountyFIPS,
	}
}

// CovidTrackingRecord is one row of the COVID Tracking Project states daily CSV.
// Only the stored columns are mapped.
type CovidTrackingRecord struct {
	Date                     string  `csv:"date" validate:"required,len=8,numeric"`
	State                    string  `csv:"state" validate:"required"`
	Positive                 *int64  `csv:"positive"`
	ProbableCases            *int64  `csv:"probableCases"`
	Negative                 *int64  `csv:"negative"`
	Pending                  *int64  `csv:"pending"`
	TotalTestResultsSource   *string `csv:"totalTestResultsSource"`
	TotalTestResults         *int64  `csv:"totalTestResults"`
	HospitalizedCurrently    *int64  `csv:"hospitalizedCurrently"`
	HospitalizedCumulative   *int64  `csv:"hospitalizedCumulative"`
	InICUCurrently           *int64  `csv:"inIcuCurrently"`
	InICUCumulative          *int64  `csv:"inIcuCumulative"`
	OnVentilatorCurrently    *int64  `csv:"onVentilatorCurrently"`
	OnVentilatorCumulative   *int64  `csv:"onVentilatorCumulative"`
	Recovered                *int64  `csv:"recovered"`
	Death                    *int64  `csv:"death"`
	Hospitalized             *int64  `csv:"hospitalized"`
	HospitalizedDischarged   *int64  `csv:"hospitalizedDischarged"`
	TotalTestsViral          *int64  `csv:"totalTestsViral"`
	PositiveTestsViral       *int64  `csv:"positiveTestsViral"`
	NegativeTestsViral       *int64  `csv:"negativeTestsViral"`
	PositiveCasesViral       *int64  `csv:"positiveCasesViral"`
	DeathConfirmed           *int64  `csv:"deathConfirmed"`
	DeathProbable            *int64  `csv:"deathProbable"`
	FIPS                     int64   `csv:"fips" validate:"required,fips"`
	PositiveIncrease         *int64  `csv:"positiveIncrease"`
	NegativeIncrease         *int64  `csv:"negativeIncrease"`
	TotalTestResultsIncrease *int64  `csv:"totalTestResultsIncrease"`
	DataQualityGrade         *string `csv:"dataQualityGrade"`
	DeathIncrease            *int64  `csv:"deathIncrease"`
	HospitalizedIncrease     *int64  `csv:"hospitalizedIncrease"`
}

// RTLiveRecord is one row of the rt.live effective reproduction number CSV.
// Counts are published as floats and rounded when stored.
type RTLiveRecord struct {
	Date                    string   `csv:"date" validate:"required,datetime=2006-01-02"`
	Region                  string   `csv:"region" validate:"required"`
	Index                   int64    `csv:"index"`
	Mean                    float64  `csv:"mean"`
	Median                  float64  `csv:"median"`
	Lower80                 float64  `csv:"lower_80"`
	Upper80                 float64  `csv:"upper_80"`
	Infections              float64  `csv:"infections"`
	TestAdjustedPositive    float64  `csv:"test_adjusted_positive"`
	TestAdjustedPositiveRaw float64  `csv:"test_adjusted_positive_raw"`
	Positive                float64  `csv:"positive"`
	Tests                   float64  `csv:"tests"`
	NewTests                *float64 `csv:"new_tests"`
	NewCases                *float64 `csv:"new_cases"`
	NewDeaths               *float64 `csv:"new_deaths"`
}

// OWIDRecord is one row of the Our World In Data CSV. Only the stored
// columns are mapped.
type OWIDRecord struct {
	ISOCode                     *string  `csv:"iso_code"`
	Continent                   *string  `csv:"continent"`
	Location                    string   `csv:"location" validate:"required"`
	Date                        string   `csv:"date" validate:"required,datetime=2006-01-02"`
	TotalCases                  *float64 `csv:"total_cases"`
	NewCases                    *float64 `csv:"new_cases"`
	TotalDeaths                 *float64 `csv:"total_deaths"`
	NewDeaths                   *float64 `csv:"new_deaths"`
	TotalCasesPerMillion        *float64 `csv:"total_cases_per_million"`
	NewCasesPerMillion          *float64 `csv:"new_cases_per_million"`
	TotalDeathsPerMillion       *float64 `csv:"total_deaths_per_million"`
	NewDeathsPerMillion         *float64 `csv:"new_deaths_per_million"`
	TotalTests                  *float64 `csv:"total_tests"`
	NewTests                    *float64 `csv:"new_tests"`
	NewTestsSmoothed            *float64 `csv:"new_tests_smoothed"`
	TotalTestsPerThousand       *float64 `csv:"total_tests_per_thousand"`
	NewTestsPerThousand         *float64 `csv:"new_tests_per_thousand"`
	NewTestsSmoothedPerThousand *float64 `csv:"new_tests_smoothed_per_thousand"`
	TestsPerCase                *float64 `csv:"tests_per_case"`
	PositiveRate                *float64 `csv:"positive_rate"`
	TestsUnits                  *string  `csv:"tests_units"`
	StringencyIndex             *float64 `csv:"stringency_index"`
	Population                  *float64 `csv:"population"`
	PopulationDensity           *float64 `csv:"population_density"`
	MedianAge                   *float64 `csv:"median_age"`
	Aged65Older                 *float64 `csv:"aged_65_older"`
	Aged70Older                 *float64 `csv:"aged_70_older"`
	GDPPerCapita                *float64 `csv:"gdp_per_capita"`
	ExtremePoverty              *float64 `csv:"extreme_poverty"`
	CardiovascDeathRate         *float64 `csv:"cardiovasc_death_rate"`
	DiabetesPrevalence          *float64 `csv:"diabetes_prevalence"`
	FemaleSmokers               *float64 `csv:"female_smokers"`
	MaleSmokers                 *float64 `csv:"male_smokers"`
	HandwashingFacilities       *float64 `csv:"handwashing_facilities"`
	HospitalBedsPerThousand     *float64 `csv:"hospital_beds_per_thousand"`
	LifeExpectancy              *float64 `csv:"life_expectancy"`
}

// NYTCountyRecord is one row of the New York Times us-counties.csv.
// FIPS is empty for aggregate rows such as "Unknown" or "New York City".
type NYTCountyRecord struct {
	Date   string `csv:"date" validate:"required,datetime=2006-01-02"`
	County string `csv:"county" validate:"required"`
	State  string `csv:"state" validate:"required"`
	FIPS   *int64 `csv:"fips" validate:"omitempty,fips"`
	Cases  int64  `csv:"cases" validate:"gte=0"`
	Deaths *int64 `csv:"deaths"`
}

// HarveyCountyRecord is one row of the Harvey County, Kansas dataset.
type HarveyCountyRecord struct {
	Date               string `csv:"date" validate:"required,datetime=2006-01-02"`
	KDHENegResults     *int64 `csv:"kdhe_neg_results"`
	KDHEPosResults     *int64 `csv:"kdhe_pos_results"`
	HarveyCoTotResults *int64 `csv:"harveyco_tot_results"`
	HarveyCoPosResults *int64 `csv:"harveyco_pos_results"`
	HarveyCoConfirmed  *int64 `csv:"harveyco_confirmed"`
	HarveyCoRecovered  *int64 `csv:"harveyco_recovered"`
}
