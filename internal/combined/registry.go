// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package combined

import (
	"context"
	"fmt"

	"github.com/tomtom215/covid19db/internal/models"
)

// LocationWriter persists a newly allocated location.
type LocationWriter interface {
	InsertLocation(ctx context.Context, a *models.LocationAttributes) error
}

// Registry maps location keys to location records for one run.
// It is not safe for concurrent use; a load is single-threaded.
type Registry struct {
	known  map[string]models.LocationRecord
	lastID int64
	added  int64
}

// NewRegistry creates a registry pre-seeded with the given entries.
// New IDs continue from the larger of maxID and the highest seeded ID.
func NewRegistry(seed map[string]models.LocationRecord, maxID int64) *Registry {
	known := make(map[string]models.LocationRecord, len(seed))
	for key, rec := range seed {
		known[key] = rec
		if rec.ID > maxID {
			maxID = rec.ID
		}
	}
	return &Registry{known: known, lastID: maxID}
}

// Resolve returns the record for key. An unseen key is assigned the next
// ID and its attributes, read from row, are written through w before the
// record is cached. Records created here have no FIPS code or population.
func (r *Registry) Resolve(ctx context.Context, w LocationWriter, key string, row Row) (models.LocationRecord, error) {
	if rec, ok := r.known[key]; ok {
		return rec, nil
	}

	id := r.lastID + 1
	attrs := &models.LocationAttributes{
		ID:             id,
		Type:           stringOrEmpty(row, "location_type"),
		Label:          stringOrEmpty(row, "location_label"),
		CountryCode:    stringOrEmpty(row, "country_code"),
		Country:        stringOrEmpty(row, "country"),
		Province:       stringOrEmpty(row, "province"),
		Administrative: stringOrEmpty(row, "administrative"),
		Region:         stringOrEmpty(row, "region"),
		Subregion:      stringOrEmpty(row, "subregion"),
	}
	if err := w.InsertLocation(ctx, attrs); err != nil {
		return models.LocationRecord{}, fmt.Errorf("register location %q: %w", key, err)
	}

	rec := models.LocationRecord{ID: id}
	r.known[key] = rec
	r.lastID = id
	r.added++
	return rec, nil
}

// Lookup returns the cached record for key without allocating.
func (r *Registry) Lookup(key string) (models.LocationRecord, bool) {
	rec, ok := r.known[key]
	return rec, ok
}

// Added returns how many locations this registry has created.
func (r *Registry) Added() int64 {
	return r.added
}

// Len returns the number of known keys.
func (r *Registry) Len() int {
	return len(r.known)
}

// LastID returns the highest ID issued or seeded so far.
func (r *Registry) LastID() int64 {
	return r.lastID
}
