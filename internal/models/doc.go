// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

/*
Package models defines the records written to the covid19db output database.

Key Components:

  - DailyRecord: one row of the unified cdataset table, identified by
    (dataset, location id, Julian day)
  - LocationRecord: the registry's view of a location (id, FIPS, population)
  - LocationAttributes: descriptive metadata persisted to cdataset_loc

Nullability:

Optional numeric columns are pointers; nil is written as SQL NULL. Cumulative
counts and day-over-day deltas are plain integers and default to zero.

Fill Rows:

A DailyRecord can be duplicated for a day on which a location reported no
update. DuplicateDay zeroes every delta, SetDate moves the record to another
Julian day, and AdvanceDayIndexes shifts the day-index counters so that
"days since" semantics survive the gap:

	fill := last.DuplicateDay()
	fill.SetDate(last.DateJulian + 1)
	fill.AdvanceDayIndexes(1)
*/
package models
