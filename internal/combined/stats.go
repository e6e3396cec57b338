// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package combined

import (
	"time"
)

// LoadStats holds statistics about one combined dataset load.
type LoadStats struct {
	// RunID correlates the load with its log lines and pushed metrics.
	RunID string `json:"run_id"`

	// TotalRecords is the number of rows in the input dataset.
	TotalRecords int64 `json:"total_records"`

	// Processed is the number of input rows written.
	Processed int64 `json:"processed"`

	// FillRows is the number of synthetic gap-fill rows written.
	FillRows int64 `json:"fill_rows"`

	// LocationsAdded is the number of locations created by the registry.
	LocationsAdded int64 `json:"locations_added"`

	// MaxDate is the latest date in the input, YYYY-MM-DD.
	MaxDate string `json:"max_date,omitempty"`

	StartTime time.Time `json:"start_time"`

	// EndTime is zero while the load is running.
	EndTime time.Time `json:"end_time"`

	// Committed is true once the transaction has been committed.
	Committed bool `json:"committed"`

	DryRun bool `json:"dry_run"`

	// Error is the failure message of an unsuccessful load.
	Error string `json:"error,omitempty"`
}

// Duration returns the duration of the load.
func (s *LoadStats) Duration() time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Progress returns the load progress as a percentage (0-100).
func (s *LoadStats) Progress() float64 {
	if s.TotalRecords == 0 {
		return 0
	}
	return float64(s.Processed) / float64(s.TotalRecords) * 100
}

// RecordsPerSecond returns the input row rate.
func (s *LoadStats) RecordsPerSecond() float64 {
	duration := s.Duration().Seconds()
	if duration == 0 {
		return 0
	}
	return float64(s.Processed) / duration
}

// Written returns the total number of cdataset rows written.
func (s *LoadStats) Written() int64 {
	return s.Processed + s.FillRows
}

// LoadSummary is the JSON view of LoadStats served on /progress and
// stored in the ledger's summaries.
type LoadSummary struct {
	RunID           string    `json:"run_id"`
	Status          string    `json:"status"`
	Progress        float64   `json:"progress"`
	TotalRecords    int64     `json:"total_records"`
	Processed       int64     `json:"processed"`
	FillRows        int64     `json:"fill_rows"`
	LocationsAdded  int64     `json:"locations_added"`
	RecordsPerSec   float64   `json:"records_per_second"`
	ElapsedSeconds  float64   `json:"elapsed_seconds"`
	EstimatedRemain float64   `json:"estimated_remaining_seconds"`
	StartTime       time.Time `json:"start_time"`
	DryRun          bool      `json:"dry_run"`
	Error           string    `json:"error,omitempty"`
}

// ToSummary converts LoadStats to a LoadSummary with calculated fields.
func (s *LoadStats) ToSummary(running bool) *LoadSummary {
	summary := &LoadSummary{
		RunID:          s.RunID,
		Progress:       s.Progress(),
		TotalRecords:   s.TotalRecords,
		Processed:      s.Processed,
		FillRows:       s.FillRows,
		LocationsAdded: s.LocationsAdded,
		RecordsPerSec:  s.RecordsPerSecond(),
		ElapsedSeconds: s.Duration().Seconds(),
		StartTime:      s.StartTime,
		DryRun:         s.DryRun,
		Error:          s.Error,
	}

	switch {
	case running:
		summary.Status = "running"
	case s.EndTime.IsZero():
		summary.Status = "pending"
	case s.Error != "":
		summary.Status = "failed"
	case s.Committed:
		summary.Status = "committed"
	default:
		summary.Status = "rolled_back"
	}

	if running && summary.RecordsPerSec > 0 {
		remaining := s.TotalRecords - s.Processed
		summary.EstimatedRemain = float64(remaining) / summary.RecordsPerSec
	}

	return summary
}
