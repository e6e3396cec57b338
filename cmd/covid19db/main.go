// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/covid19db/internal/config"
	"github.com/tomtom215/covid19db/internal/logging"
	"github.com/tomtom215/covid19db/internal/pipeline"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("covid19db", flag.ContinueOnError)
	fs.SetOutput(stdout)
	configPath := fs.String("config", "", "path to a YAML config file")
	dryRun := fs.Bool("dry-run", false, "fetch and parse everything, then roll back the combined load")
	showVersion := fs.Bool("version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if *showVersion {
		fmt.Fprintf(stdout, "covid19db %s\n", version)
		return 0
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromPath(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}
	if *dryRun {
		cfg.Load.DryRun = true
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	ctx = logging.ContextWithNewRunID(ctx)
	logging.Ctx(ctx).Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Bool("dry_run", cfg.Load.DryRun).
		Msg("covid19db starting")

	if _, err := pipeline.New(cfg).Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logging.Ctx(ctx).Error().Msg("Run interrupted, nothing committed")
		} else {
			logging.Ctx(ctx).Error().Err(err).Msg("Run failed")
		}
		return 1
	}
	return 0
}
