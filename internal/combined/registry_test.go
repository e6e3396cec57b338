// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package combined

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/tomtom215/covid19db/internal/models"
)

func seededRegistry(n int) *Registry {
	seed := make(map[string]models.LocationRecord, n)
	for i := 1; i <= n; i++ {
		seed[fmt.Sprintf("KEY_%d", i)] = models.LocationRecord{ID: int64(i)}
	}
	return NewRegistry(seed, 0)
}

func TestRegistryAllocatesNextID(t *testing.T) {
	ctx := context.Background()
	reg := seededRegistry(42)
	sink := &memorySink{}
	row := MapRow{
		"location_type":  "county",
		"location_label": "Harris, Texas, US",
		"country_code":   "US",
		"country":        "United States",
		"province":       "Texas",
		"administrative": "Harris",
		"region":         "Americas",
	}

	first, err := reg.Resolve(ctx, sink, "US_TX_Harris", row)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if first.ID != 43 {
		t.Errorf("ID = %d, want 43", first.ID)
	}
	if first.FIPS != nil || first.Population != nil {
		t.Errorf("new location should have no FIPS or population, got %+v", first)
	}

	second, err := reg.Resolve(ctx, sink, "US_TX_Harris", row)
	if err != nil {
		t.Fatalf("Resolve() second error = %v", err)
	}
	if second.ID != 43 {
		t.Errorf("second ID = %d, want 43", second.ID)
	}

	if len(sink.pendingLocs) != 1 {
		t.Fatalf("locations written = %d, want 1", len(sink.pendingLocs))
	}
	attrs := sink.pendingLocs[0]
	if attrs.ID != 43 || attrs.Label != "Harris, Texas, US" || attrs.Province != "Texas" || attrs.Region != "Americas" {
		t.Errorf("attributes = %+v", attrs)
	}
	if attrs.Subregion != "" || attrs.USStateCode != "" || attrs.USStateName != "" || attrs.USCountyFIPS != nil {
		t.Errorf("unset attributes should be empty, got %+v", attrs)
	}
	if reg.Added() != 1 {
		t.Errorf("Added() = %d, want 1", reg.Added())
	}
}

func TestRegistrySeededKeysWriteNothing(t *testing.T) {
	fips := int64(48201)
	pop := int64(4713325)
	reg := NewRegistry(map[string]models.LocationRecord{
		"US_TX_Harris": {ID: 7, FIPS: &fips, Population: &pop},
	}, 0)
	sink := &memorySink{}

	rec, err := reg.Resolve(context.Background(), sink, "US_TX_Harris", MapRow{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if rec.ID != 7 || rec.FIPS == nil || *rec.FIPS != fips {
		t.Errorf("Resolve() = %+v", rec)
	}
	if len(sink.pendingLocs) != 0 {
		t.Errorf("locations written = %d, want 0", len(sink.pendingLocs))
	}
}

func TestRegistryCounterSeed(t *testing.T) {
	tests := []struct {
		name  string
		seed  int
		maxID int64
		want  int64
	}{
		{"empty", 0, 0, 1},
		{"seed only", 5, 0, 6},
		{"max id above seed", 5, 20, 21},
		{"max id below seed", 5, 3, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed := seededRegistry(tt.seed).known
			reg := NewRegistry(seed, tt.maxID)
			rec, err := reg.Resolve(context.Background(), &memorySink{}, "NEW", MapRow{})
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if rec.ID != tt.want {
				t.Errorf("ID = %d, want %d", rec.ID, tt.want)
			}
		})
	}
}

func TestRegistryWriteFailureDoesNotCache(t *testing.T) {
	reg := NewRegistry(nil, 0)
	sink := &memorySink{failOnLoc: true}

	if _, err := reg.Resolve(context.Background(), sink, "X", MapRow{}); !errors.Is(err, errSinkFailed) {
		t.Fatalf("Resolve() error = %v, want errSinkFailed", err)
	}
	if _, ok := reg.Lookup("X"); ok {
		t.Error("failed key should not be cached")
	}
	if reg.LastID() != 0 {
		t.Errorf("LastID() = %d, want 0", reg.LastID())
	}
}
