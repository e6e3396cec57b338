// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

/*
Package sources loads the auxiliary datasets that sit next to the combined
dataset in the output database.

Every loader follows the same shape:

 1. Check the header against the expected column list (ErrHeaderMismatch).
 2. Decode rows with csvutil into the tagged structs in internal/models.
 3. Validate each row with internal/validation.
 4. Insert through a database.TableWriter in its own transaction.

Two loaders also return lookup data used by the combined load:
LoadLocLookup returns the FIPS to population map and LoadLocations returns
the pre-seeded location registry entries.

Any decode, validation or insert error aborts the loader and rolls its
table back.
*/
package sources
