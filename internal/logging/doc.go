// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

// Package logging provides centralized zerolog-based structured logging for covid19db.
//
// # Overview
//
// The package provides:
//   - A global zerolog logger guarded by a mutex, configured once from main
//   - JSON output for scheduled runs and console output for interactive runs
//   - A per-run ID carried in context.Context and attached by Ctx
//   - Component loggers (fetch, sources, combined, database, pipeline)
//   - An adapter so badger writes through the same logger
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "console"})
//
//	ctx = logging.ContextWithNewRunID(ctx)
//	logging.Ctx(ctx).Info().Str("source", "loc_lookup").Msg("Processing")
//
// # Configuration
//
// Environment Variables (mapped by internal/config):
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: console)
//   - LOG_CALLER: true/false (default: false)
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Int64("rows", n).Msg("Loaded")  // Correct
//	logging.Info().Int64("rows", n)                // WRONG - log not emitted
package logging
