// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

// Package fetch brings source datasets onto local disk.
//
// A source is an http(s) URL, a gocloud blob URL (file://, s3://, gs://)
// or a plain filesystem path. HTTP downloads are paced by a rate limiter
// and guarded by one circuit breaker per upstream host. Files ending in
// .gz or .zst are decompressed on the way to disk.
//
// Plain uncompressed paths are used in place; everything else lands in the
// Fetcher's work directory and is removed by Cleanup unless downloads are
// kept.
package fetch
