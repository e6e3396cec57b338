// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package models

// LocationRecord is the resolved identity of a location key.
// FIPS and Population are nil when unknown.
type LocationRecord struct {
	ID         int64
	FIPS       *int64
	Population *int64
}

// LocationAttributes is one row of the cdataset_loc table.
// Text fields are never NULL; missing values are stored as "".
type LocationAttributes struct {
	ID             int64
	Type           string
	Label          string
	CountryCode    string
	Country        string
	Province       string
	Administrative string
	Region         string
	Subregion      string
	USStateCode    string
	USStateName    string
	USCountyFIPS   *int64
}
