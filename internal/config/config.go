// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package config

import (
	"time"
)

// Config holds all loader configuration.
// Configuration is loaded in layers: defaults, then an optional YAML file,
// then environment variables.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Sources  SourcesConfig  `koanf:"sources"`
	Load     LoadConfig     `koanf:"load"`
	Fetch    FetchConfig    `koanf:"fetch"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Ledger   LedgerConfig   `koanf:"ledger"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig configures the DuckDB output database.
type DatabaseConfig struct {
	Path      string `koanf:"path" validate:"required"`
	MaxMemory string `koanf:"max_memory" validate:"required,memsize"`

	// Threads is the DuckDB worker thread count; 0 means runtime.NumCPU().
	Threads int `koanf:"threads" validate:"gte=0"`

	PreserveInsertionOrder bool `koanf:"preserve_insertion_order"`
}

// SourcesConfig names where each dataset is fetched from. Every value is an
// http(s), file, s3 or gs URL or a local path. Optional sources are skipped
// when empty.
type SourcesConfig struct {
	// LocLookup is the Johns Hopkins UID/ISO/FIPS lookup table (required;
	// it supplies the FIPS to population map).
	LocLookup string `koanf:"loc_lookup" validate:"required,source"`

	CovidTracking string `koanf:"covidtracking" validate:"omitempty,source"`
	RTLive        string `koanf:"rtlive" validate:"omitempty,source"`
	OWID          string `koanf:"owid" validate:"omitempty,source"`
	NYTCounties   string `koanf:"nytcounties" validate:"omitempty,source"`
	HarveyCo      string `koanf:"harveyco" validate:"omitempty,source"`

	// Locations is the combined dataset's locations-diff.tsv.
	Locations string `koanf:"locations" validate:"required,source"`

	// Combined is the combined dataset's values SQLite database, usually gzip
	// compressed.
	Combined string `koanf:"combined" validate:"required,source"`
}

// LoadConfig tunes the combined dataset load.
type LoadConfig struct {
	// ProgressInterval is the number of input rows between progress log lines.
	ProgressInterval int64 `koanf:"progress_interval" validate:"gte=1"`

	// WorkDir receives downloaded files. Empty means a fresh temp directory.
	WorkDir string `koanf:"work_dir"`

	// KeepDownloads leaves downloaded files in WorkDir after the run.
	KeepDownloads bool `koanf:"keep_downloads"`

	// DryRun rolls back the combined load instead of committing it.
	DryRun bool `koanf:"dry_run"`
}

// FetchConfig configures source acquisition.
type FetchConfig struct {
	Timeout           time.Duration `koanf:"timeout" validate:"gt=0"`
	UserAgent         string        `koanf:"user_agent" validate:"required"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gt=0"`

	// Circuit breaker around upstream HTTP hosts.
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold" validate:"gte=1"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout" validate:"gt=0"`
}

// MetricsConfig configures run metrics.
type MetricsConfig struct {
	// PushgatewayURL receives the run's metrics at the end. Empty disables.
	PushgatewayURL string `koanf:"pushgateway_url" validate:"omitempty,url"`
	JobName        string `koanf:"job_name" validate:"required"`

	// ListenAddr serves /metrics, /healthz and /progress while a run
	// executes. Empty disables.
	ListenAddr string `koanf:"listen_addr" validate:"omitempty,hostname_port"`
}

// LedgerConfig configures the run ledger.
type LedgerConfig struct {
	// Path is the badger directory. Empty keeps the ledger in memory.
	Path string `koanf:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, the config file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
