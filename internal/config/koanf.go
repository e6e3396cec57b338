// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"covid19db.yaml",
	"covid19db.yml",
	"/etc/covid19db/config.yaml",
	"/etc/covid19db/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Upstream dataset locations.
const (
	DefaultLocLookupURL     = "https://github.com/CSSEGISandData/COVID-19/raw/master/csse_covid_19_data/UID_ISO_FIPS_LookUp_Table.csv"
	DefaultCovidTrackingURL = "https://covidtracking.com/api/v1/states/daily.csv"
	DefaultRTLiveURL        = "https://d14wlfuexuxgcm.cloudfront.net/covid/rt.csv"
	DefaultOWIDURL          = "https://covid.ourworldindata.org/data/owid-covid-data.csv"
	DefaultNYTCountiesURL   = "https://raw.githubusercontent.com/nytimes/covid-19-data/master/us-counties.csv"
	DefaultLocationsURL     = "https://github.com/cipriancraciun/covid19-datasets/raw/master/exports/combined/v1/locations-diff.tsv"
	DefaultCombinedURL      = "https://github.com/cipriancraciun/covid19-datasets/raw/master/exports/combined/v1/values-sqlite.db.gz"
)

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:                   "covid19.db",
			MaxMemory:              "2GB",
			Threads:                0,
			PreserveInsertionOrder: true,
		},
		Sources: SourcesConfig{
			LocLookup:     DefaultLocLookupURL,
			CovidTracking: DefaultCovidTrackingURL,
			RTLive:        DefaultRTLiveURL,
			OWID:          DefaultOWIDURL,
			NYTCounties:   DefaultNYTCountiesURL,
			HarveyCo:      "", // local dataset, no public upstream
			Locations:     DefaultLocationsURL,
			Combined:      DefaultCombinedURL,
		},
		Load: LoadConfig{
			ProgressInterval: 10000,
			WorkDir:          "",
			KeepDownloads:    false,
			DryRun:           false,
		},
		Fetch: FetchConfig{
			Timeout:                 5 * time.Minute,
			UserAgent:               "covid19db/1.0",
			RequestsPerSecond:       2,
			BreakerFailureThreshold: 3,
			BreakerTimeout:          30 * time.Second,
		},
		Metrics: MetricsConfig{
			PushgatewayURL: "",
			JobName:        "covid19db",
			ListenAddr:     "",
		},
		Ledger: LedgerConfig{
			Path: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf with layered sources:
//
//  1. Defaults: Built-in defaults pointing at the upstream datasets
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	return LoadFromPath(findConfigFile())
}

// LoadFromPath loads configuration with an explicit config file path.
// An empty path skips the file layer.
func LoadFromPath(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// DUCKDB_PATH -> database.path, SOURCE_RTLIVE -> sources.rtlive
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	// Database
	"duckdb_path":                     "database.path",
	"duckdb_max_memory":               "database.max_memory",
	"duckdb_threads":                  "database.threads",
	"duckdb_preserve_insertion_order": "database.preserve_insertion_order",

	// Sources
	"source_loc_lookup":    "sources.loc_lookup",
	"source_covidtracking": "sources.covidtracking",
	"source_rtlive":        "sources.rtlive",
	"source_owid":          "sources.owid",
	"source_nytcounties":   "sources.nytcounties",
	"source_harveyco":      "sources.harveyco",
	"source_locations":     "sources.locations",
	"source_combined":      "sources.combined",

	// Load
	"load_progress_interval": "load.progress_interval",
	"load_work_dir":          "load.work_dir",
	"load_keep_downloads":    "load.keep_downloads",
	"load_dry_run":           "load.dry_run",

	// Fetch
	"fetch_timeout":                   "fetch.timeout",
	"fetch_user_agent":                "fetch.user_agent",
	"fetch_requests_per_second":       "fetch.requests_per_second",
	"fetch_breaker_failure_threshold": "fetch.breaker_failure_threshold",
	"fetch_breaker_timeout":           "fetch.breaker_timeout",

	// Metrics
	"pushgateway_url":     "metrics.pushgateway_url",
	"metrics_job_name":    "metrics.job_name",
	"metrics_listen_addr": "metrics.listen_addr",

	// Ledger
	"ledger_path": "ledger.path",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped, so unrelated environment
// does not leak into the config.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
