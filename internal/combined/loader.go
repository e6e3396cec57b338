// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package combined

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/covid19db/internal/dateutil"
	"github.com/tomtom215/covid19db/internal/logging"
	"github.com/tomtom215/covid19db/internal/metrics"
)

// DefaultProgressInterval is the number of input rows between progress reports.
const DefaultProgressInterval = 10000

// Sink is the transactional destination of a load. *database.LoadTx implements it.
type Sink interface {
	LocationWriter
	RecordWriter
	Commit() error
	Rollback() error
}

// Options controls a Loader.
type Options struct {
	// ProgressInterval is the number of input rows between progress reports.
	ProgressInterval int64

	// DryRun processes every row and then rolls back instead of committing.
	DryRun bool

	// OnProgress, if set, is called with a snapshot at every progress report.
	OnProgress func(LoadStats)
}

// Loader runs the single-pass combined dataset load.
type Loader struct {
	source   Source
	registry *Registry
	fipsPop  map[int64]int64
	opts     Options

	mu      sync.RWMutex
	running bool
	stats   LoadStats
}

// NewLoader creates a Loader reading from source and resolving locations
// through registry.
func NewLoader(source Source, registry *Registry, fipsPop map[int64]int64, opts Options) *Loader {
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}
	return &Loader{
		source:   source,
		registry: registry,
		fipsPop:  fipsPop,
		opts:     opts,
	}
}

// Run streams every input row through transform and gap fill into sink and
// commits once at the end. On any error, or in dry-run mode, the sink is
// rolled back and nothing becomes visible.
func (l *Loader) Run(ctx context.Context, sink Sink) (err error) {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return ErrLoadRunning
	}
	l.running = true
	l.stats = LoadStats{
		RunID:     logging.RunIDFromContext(ctx),
		StartTime: time.Now(),
		DryRun:    l.opts.DryRun,
	}
	l.mu.Unlock()

	logger := logging.CtxComponent(ctx, "combined")
	reporter := &progressReporter{}

	defer func() {
		if err != nil {
			if rbErr := sink.Rollback(); rbErr != nil {
				logger.Warn().Err(rbErr).Msg("Rollback failed")
			}
		}

		l.mu.Lock()
		l.running = false
		l.stats.EndTime = time.Now()
		if err != nil {
			l.stats.Error = err.Error()
		}
		final := l.stats
		l.mu.Unlock()

		reporter.flush(&final)
		metrics.RecordLoad(final.Duration(), err, ClassifyError)
	}()

	total, err := l.source.Count(ctx)
	if err != nil {
		return err
	}
	metrics.LoadTotalRecords.Set(float64(total))

	var filler *GapFiller
	if total > 0 {
		maxDate, err := l.source.MaxDate(ctx)
		if err != nil {
			return err
		}
		filler = NewGapFiller(maxDate)
		l.update(func(s *LoadStats) {
			s.TotalRecords = total
			s.MaxDate = dateutil.Format(maxDate)
		})
	}

	logger.Info().
		Int64("total_records", total).
		Str("max_date", l.Stats().MaxDate).
		Int("known_locations", l.registry.Len()).
		Bool("dry_run", l.opts.DryRun).
		Msg("Starting combined dataset load")

	if filler != nil {
		if err := l.stream(ctx, sink, filler, reporter); err != nil {
			return err
		}
	}

	if l.opts.DryRun {
		if err := sink.Rollback(); err != nil {
			return fmt.Errorf("roll back dry run: %w", err)
		}
		stats := l.Stats()
		logger.Info().
			Int64("processed", stats.Processed).
			Int64("fill_rows", stats.FillRows).
			Int64("locations_added", stats.LocationsAdded).
			Msg("Dry run complete, load rolled back")
		return nil
	}

	logger.Info().Msg("Committing combined dataset load")
	if err := sink.Commit(); err != nil {
		return err
	}
	l.update(func(s *LoadStats) { s.Committed = true })

	stats := l.Stats()
	logger.Info().
		Int64("processed", stats.Processed).
		Int64("total_records", stats.TotalRecords).
		Int64("fill_rows", stats.FillRows).
		Int64("locations_added", stats.LocationsAdded).
		Dur("duration", stats.Duration()).
		Msg("Combined dataset load committed")
	return nil
}

// stream is the single pass over the input cursor.
func (l *Loader) stream(ctx context.Context, sink Sink, filler *GapFiller, reporter *progressReporter) error {
	cursor, err := l.source.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := cursor.Close(); closeErr != nil {
			logging.CtxComponent(ctx, "combined").Warn().Err(closeErr).Msg("Error closing input cursor")
		}
	}()

	transformer := NewTransformer(l.registry, l.fipsPop)
	addedBefore := l.registry.Added()

	var index int64
	for cursor.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		index++
		row := cursor.Row()

		rec, err := transformer.Transform(ctx, sink, row)
		if err == nil {
			err = filler.Push(ctx, sink, rec)
		}
		if err != nil {
			key, _ := row.String("location_key")
			return &RowError{Index: index, Key: key, Err: err}
		}

		l.update(func(s *LoadStats) {
			s.Processed = index
			s.FillRows = filler.Filled()
			s.LocationsAdded = l.registry.Added() - addedBefore
		})

		if index%l.opts.ProgressInterval == 0 {
			l.reportProgress(ctx, reporter)
		}
	}
	if err := cursor.Err(); err != nil {
		return err
	}

	if err := filler.Flush(ctx, sink); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("flush trailing gap: %w", err)
	}
	l.update(func(s *LoadStats) { s.FillRows = filler.Filled() })
	return nil
}

func (l *Loader) reportProgress(ctx context.Context, reporter *progressReporter) {
	stats := l.Stats()
	reporter.flush(&stats)

	logging.CtxComponent(ctx, "combined").Info().
		Int64("processed", stats.Processed).
		Int64("total_records", stats.TotalRecords).
		Float64("progress_percent", stats.Progress()).
		Float64("records_per_second", stats.RecordsPerSecond()).
		Int64("fill_rows", stats.FillRows).
		Int64("locations_added", stats.LocationsAdded).
		Msg("Load progress")

	if l.opts.OnProgress != nil {
		l.opts.OnProgress(stats)
	}
}

func (l *Loader) update(fn func(*LoadStats)) {
	l.mu.Lock()
	fn(&l.stats)
	l.mu.Unlock()
}

// Stats returns a snapshot of the current or last run.
func (l *Loader) Stats() LoadStats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stats
}

// IsRunning reports whether Run is in progress.
func (l *Loader) IsRunning() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.running
}

// progressReporter turns cumulative stats into counter increments.
type progressReporter struct {
	rows, fill, locations int64
}

func (p *progressReporter) flush(s *LoadStats) {
	metrics.RecordLoadProgress(s.Processed-p.rows, s.FillRows-p.fill, s.LocationsAdded-p.locations)
	p.rows, p.fill, p.locations = s.Processed, s.FillRows, s.LocationsAdded
}
