// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package combined

import (
	"context"
	"errors"

	"github.com/tomtom215/covid19db/internal/dateutil"
	"github.com/tomtom215/covid19db/internal/models"
)

var errSinkFailed = errors.New("sink write failed")

// sliceSource serves pre-sorted rows from memory.
type sliceSource struct {
	rows    []MapRow
	openErr error
}

func (s *sliceSource) Count(context.Context) (int64, error) {
	return int64(len(s.rows)), nil
}

func (s *sliceSource) MaxDate(context.Context) (int, error) {
	if len(s.rows) == 0 {
		return 0, ErrEmptyDataset
	}
	maxDate := 0
	for _, r := range s.rows {
		jd, err := rowDate(r)
		if err != nil {
			continue
		}
		if jd > maxDate {
			maxDate = jd
		}
	}
	return maxDate, nil
}

func (s *sliceSource) Open(context.Context) (Cursor, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return &sliceCursor{rows: s.rows, pos: -1}, nil
}

type sliceCursor struct {
	rows   []MapRow
	pos    int
	closed bool
}

func (c *sliceCursor) Next() bool {
	c.pos++
	return c.pos < len(c.rows)
}

func (c *sliceCursor) Row() Row     { return c.rows[c.pos] }
func (c *sliceCursor) Err() error   { return nil }
func (c *sliceCursor) Close() error { c.closed = true; return nil }

// memorySink records everything written and buffers it until Commit,
// mimicking a transaction. failOnDaily > 0 fails that InsertDaily call.
type memorySink struct {
	pending     []*models.DailyRecord
	pendingLocs []*models.LocationAttributes

	committed     []*models.DailyRecord
	committedLocs []*models.LocationAttributes

	dailyCalls  int
	failOnDaily int
	failOnLoc   bool

	commits   int
	rollbacks int
}

func (s *memorySink) InsertDaily(_ context.Context, r *models.DailyRecord) error {
	s.dailyCalls++
	if s.failOnDaily > 0 && s.dailyCalls == s.failOnDaily {
		return errSinkFailed
	}
	s.pending = append(s.pending, r)
	return nil
}

func (s *memorySink) InsertLocation(_ context.Context, a *models.LocationAttributes) error {
	if s.failOnLoc {
		return errSinkFailed
	}
	s.pendingLocs = append(s.pendingLocs, a)
	return nil
}

func (s *memorySink) Commit() error {
	s.commits++
	s.committed = append(s.committed, s.pending...)
	s.committedLocs = append(s.committedLocs, s.pendingLocs...)
	s.pending, s.pendingLocs = nil, nil
	return nil
}

func (s *memorySink) Rollback() error {
	s.rollbacks++
	s.pending, s.pendingLocs = nil, nil
	return nil
}

// inputRow builds a combined dataset row for the given calendar date.
func inputRow(dataset, key, date string, extra map[string]any) MapRow {
	jd, err := dateutil.Parse(date)
	if err != nil {
		panic(err)
	}
	y, m, d := dateutil.ToYMD(jd)
	row := MapRow{
		"dataset":        dataset,
		"location_key":   key,
		"location_type":  "county",
		"location_label": key,
		"country":        "United States",
		"date":           date,
		"date_year":      int64(y),
		"date_month":     int64(m),
		"date_day":       int64(d),
		"day_index_0":    int64(jd - 2458849),
		"day_index_1":    int64(jd - 2458860),
	}
	for k, v := range extra {
		row[k] = v
	}
	return row
}

func mustJulian(date string) int {
	jd, err := dateutil.Parse(date)
	if err != nil {
		panic(err)
	}
	return jd
}
