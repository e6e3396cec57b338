// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

// Package pipeline runs one full reload: schema, auxiliary sources, the
// locations table and the combined dataset, followed by housekeeping.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/tomtom215/covid19db/internal/combined"
	"github.com/tomtom215/covid19db/internal/config"
	"github.com/tomtom215/covid19db/internal/database"
	"github.com/tomtom215/covid19db/internal/fetch"
	"github.com/tomtom215/covid19db/internal/logging"
	"github.com/tomtom215/covid19db/internal/metrics"
	"github.com/tomtom215/covid19db/internal/models"
	"github.com/tomtom215/covid19db/internal/sources"
)

// Phases reported on /progress.
const (
	PhaseStarting     = "starting"
	PhaseSources      = "sources"
	PhaseCombined     = "combined"
	PhaseHousekeeping = "housekeeping"
	PhaseDone         = "done"
)

// Progress is the /progress document.
type Progress struct {
	RunID  string                `json:"run_id"`
	Phase  string                `json:"phase"`
	Source string                `json:"source,omitempty"`
	Load   *combined.LoadSummary `json:"load,omitempty"`
}

// Runner executes the pipeline for one configuration.
type Runner struct {
	cfg *config.Config

	mu     sync.RWMutex
	runID  string
	phase  string
	source string
	loader *combined.Loader
}

// New creates a Runner.
func New(cfg *config.Config) *Runner {
	return &Runner{cfg: cfg, phase: PhaseStarting}
}

// auxLoader loads one optional auxiliary source.
type auxLoader struct {
	name string
	src  string
	load func(context.Context, sources.Store, io.Reader) (int64, error)
}

// Run performs the reload and returns the combined load statistics. The
// stats are recorded in the ledger and metrics are pushed whether or not
// the run succeeds.
func (r *Runner) Run(ctx context.Context) (stats *combined.LoadStats, err error) {
	if logging.RunIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewRunID(ctx)
	}
	runID := logging.RunIDFromContext(ctx)
	logger := logging.CtxComponent(ctx, "pipeline")
	start := time.Now()

	r.mu.Lock()
	r.runID = runID
	r.mu.Unlock()

	ledger, closeLedger, err := r.openLedger()
	if err != nil {
		return nil, err
	}
	defer closeLedger()

	if addr := r.cfg.Metrics.ListenAddr; addr != "" {
		srv := metrics.NewStatusServer(addr, r.Progress)
		if err := srv.Start(); err != nil {
			return nil, fmt.Errorf("start status server: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("Status server shutdown failed")
			}
		}()
		logger.Info().Str("addr", srv.Addr()).Msg("Status server listening")
	}

	fetcher, err := fetch.New(r.cfg.Fetch, r.cfg.Load.WorkDir, r.cfg.Load.KeepDownloads)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := fetcher.Cleanup(); err != nil {
			logger.Warn().Err(err).Msg("Download cleanup failed")
		}
	}()

	defer func() {
		if stats == nil {
			stats = &combined.LoadStats{RunID: runID, StartTime: start, EndTime: time.Now()}
			if err != nil {
				stats.Error = err.Error()
			}
		}
		if recErr := ledger.Record(context.WithoutCancel(ctx), stats); recErr != nil {
			logger.Warn().Err(recErr).Msg("Recording run in ledger failed")
		}
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if pushErr := metrics.Push(pushCtx, nil, r.cfg.Metrics.PushgatewayURL, r.cfg.Metrics.JobName, runID); pushErr != nil {
			logger.Warn().Err(pushErr).Msg("Metrics push failed")
		}
		r.setPhase(PhaseDone, "")
	}()

	logger.Info().Str("database", r.cfg.Database.Path).Bool("dry_run", r.cfg.Load.DryRun).Msg("Starting run")

	db, err := database.Open(&r.cfg.Database)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn().Err(err).Msg("Database close failed")
		}
	}()

	if err := db.InitSchema(ctx); err != nil {
		return nil, err
	}

	fipsPop, seed, err := r.loadSources(ctx, db, fetcher)
	if err != nil {
		return nil, err
	}

	stats, err = r.loadCombined(ctx, db, fetcher, fipsPop, seed)
	if err != nil {
		return stats, err
	}

	r.setPhase(PhaseHousekeeping, "")
	if err := db.Housekeeping(ctx); err != nil {
		return stats, err
	}

	logger.Info().
		Int64("processed", stats.Processed).
		Int64("fill_rows", stats.FillRows).
		Int64("locations_added", stats.LocationsAdded).
		Dur("duration", time.Since(start)).
		Msg("Run complete")
	return stats, nil
}

// loadSources loads every auxiliary table in order and returns the FIPS
// population map and the registry seed from the locations TSV.
func (r *Runner) loadSources(ctx context.Context, db *database.DB, fetcher *fetch.Fetcher) (map[int64]int64, map[string]models.LocationRecord, error) {
	src := r.cfg.Sources

	var fipsPop map[int64]int64
	err := r.withSource(ctx, fetcher, sources.SourceLocLookup, src.LocLookup, func(rd io.Reader) error {
		var err error
		fipsPop, err = sources.LoadLocLookup(ctx, db, rd)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	for _, aux := range []auxLoader{
		{sources.SourceCovidTracking, src.CovidTracking, sources.LoadCovidTracking},
		{sources.SourceRTLive, src.RTLive, sources.LoadRTLive},
		{sources.SourceOWID, src.OWID, sources.LoadOWID},
		{sources.SourceNYTCounties, src.NYTCounties, sources.LoadNYTCounties},
		{sources.SourceHarveyCo, src.HarveyCo, sources.LoadHarveyCo},
	} {
		if aux.src == "" {
			logging.CtxComponent(ctx, "pipeline").Info().Str("source", aux.name).Msg("Source not configured, skipping")
			continue
		}
		err := r.withSource(ctx, fetcher, aux.name, aux.src, func(rd io.Reader) error {
			_, err := aux.load(ctx, db, rd)
			return err
		})
		if err != nil {
			return nil, nil, err
		}
	}

	var seed map[string]models.LocationRecord
	err = r.withSource(ctx, fetcher, sources.SourceLocations, src.Locations, func(rd io.Reader) error {
		var err error
		seed, err = sources.LoadLocations(ctx, db, rd, fipsPop)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return fipsPop, seed, nil
}

// withSource fetches src and passes the opened file to fn.
func (r *Runner) withSource(ctx context.Context, fetcher *fetch.Fetcher, name, src string, fn func(io.Reader) error) error {
	r.setPhase(PhaseSources, name)

	local, err := fetcher.Fetch(ctx, name, src)
	if err != nil {
		return err
	}
	f, err := os.Open(local) //nolint:gosec // path produced by the fetcher
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close() //nolint:errcheck // read-only

	if err := fn(f); err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	return nil
}

func (r *Runner) loadCombined(ctx context.Context, db *database.DB, fetcher *fetch.Fetcher, fipsPop map[int64]int64, seed map[string]models.LocationRecord) (*combined.LoadStats, error) {
	r.setPhase(PhaseCombined, "combined")

	local, err := fetcher.Fetch(ctx, "combined", r.cfg.Sources.Combined)
	if err != nil {
		return nil, err
	}

	src, err := combined.OpenSQLiteSource(ctx, local)
	if err != nil {
		return nil, err
	}
	defer src.Close() //nolint:errcheck // read-only attachment

	maxID, err := db.MaxLocationID(ctx)
	if err != nil {
		return nil, err
	}

	loader := combined.NewLoader(src, combined.NewRegistry(seed, maxID), fipsPop, combined.Options{
		ProgressInterval: r.cfg.Load.ProgressInterval,
		DryRun:           r.cfg.Load.DryRun,
	})
	r.mu.Lock()
	r.loader = loader
	r.mu.Unlock()

	tx, err := db.BeginLoad(ctx)
	if err != nil {
		return nil, err
	}

	runErr := loader.Run(ctx, tx)
	stats := loader.Stats()
	if runErr != nil {
		return &stats, fmt.Errorf("load combined dataset: %w", runErr)
	}
	return &stats, nil
}

func (r *Runner) openLedger() (combined.Ledger, func(), error) {
	if r.cfg.Ledger.Path == "" {
		return combined.NewInMemoryLedger(), func() {}, nil
	}
	l, err := combined.OpenBadgerLedger(r.cfg.Ledger.Path)
	if err != nil {
		return nil, nil, err
	}
	return l, func() {
		if err := l.Close(); err != nil {
			logging.Warn().Err(err).Msg("Ledger close failed")
		}
	}, nil
}

func (r *Runner) setPhase(phase, source string) {
	r.mu.Lock()
	r.phase = phase
	r.source = source
	r.mu.Unlock()
}

// Progress returns a snapshot of the run for the status server.
func (r *Runner) Progress() any {
	r.mu.RLock()
	p := Progress{RunID: r.runID, Phase: r.phase, Source: r.source}
	loader := r.loader
	r.mu.RUnlock()

	if loader != nil {
		stats := loader.Stats()
		p.Load = stats.ToSummary(loader.IsRunning())
	}
	return p
}
