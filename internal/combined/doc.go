// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

/*
Package combined loads the combined multi-source dataset into the cdataset
and cdataset_loc tables.

The combined dataset is published as a SQLite file whose "dataset" table
holds one row per (dataset, location_key, date). The Loader streams that
table in sorted order through a single pass:

	SQLiteSource (DuckDB sqlite_scanner)
	    -> Transformer (Registry, ResolvePopulation, RatePer100k)
	    -> GapFiller (synthesizes rows for missing days)
	    -> Sink (one DuckDB transaction)

Everything is written through one transaction that is committed only after
the trailing gap of the last series has been flushed. Any error rolls the
transaction back, leaving the destination tables as they were.

# Location Registry

Location keys are mapped to integer location IDs. Keys already present in
the locations file are pre-seeded; unseen keys get the next ID from an
in-memory counter seeded from the highest existing ID, and one
cdataset_loc row is written for each of them.

# Gap fill

Each series (dataset, location) is made dense through the latest date seen
anywhere in the input. A synthetic day repeats the previous real row's
cumulative values with zero deltas and advances every day-index counter by
the number of days since that real row.

# Run ledger

LoadStats for every run can be recorded in a Ledger. BadgerLedger keeps the
history on disk; InMemoryLedger is used when no ledger path is configured
and in tests.
*/
package combined
