// Package config provides configuration loading and validation for snapref.
// Supports YAML files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for a snapref instance.
type Config struct {
	Cache         CacheConfig         `yaml:"cache"`
	Store         StoreConfig         `yaml:"store"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// CacheConfig configures the reference cache itself.
type CacheConfig struct {
	// SnapshotRoot is the root directory under which each immediate child
	// is one completed snapshot.
	SnapshotRoot string `yaml:"snapshotRoot" env:"SNAPREF_SNAPSHOT_ROOT"`

	// WorkingDirName is the reserved child of SnapshotRoot for in-progress
	// snapshots. Default: ".tmp".
	WorkingDirName string `yaml:"workingDirName" env:"SNAPREF_WORKING_DIR_NAME"`

	// RefreshPeriodMs is the background refresh interval in milliseconds.
	// Zero disables the periodic loop. Default: 300000 (5 minutes).
	RefreshPeriodMs int64 `yaml:"refreshPeriodMs" env:"SNAPREF_REFRESH_PERIOD_MS"`

	// StalenessBoundMs is the advisory bound on generation age in
	// milliseconds. Default: 2 * RefreshPeriodMs.
	StalenessBoundMs int64 `yaml:"stalenessBoundMs" env:"SNAPREF_STALENESS_BOUND_MS"`

	// Name identifies this cache instance in logs.
	Name string `yaml:"name" env:"SNAPREF_CACHE_NAME"`

	// Enumerator selects the file-enumeration strategy: "all" (log and
	// data files) or "logs" (log files only). Default: "all".
	Enumerator string `yaml:"enumerator" env:"SNAPREF_ENUMERATOR"`
}

// StoreConfig selects where the snapshot tree lives.
type StoreConfig struct {
	// Backend is "local" or "s3". Default: "local".
	Backend string `yaml:"backend" env:"SNAPREF_STORE_BACKEND"`

	S3 S3Config `yaml:"s3"`
}

// S3Config configures the S3 backend.
type S3Config struct {
	Endpoint     string `yaml:"endpoint" env:"SNAPREF_S3_ENDPOINT"`
	Bucket       string `yaml:"bucket" env:"SNAPREF_S3_BUCKET"`
	Region       string `yaml:"region" env:"SNAPREF_S3_REGION"`
	AccessKey    string `yaml:"accessKey" env:"SNAPREF_S3_ACCESS_KEY"`
	SecretKey    string `yaml:"secretKey" env:"SNAPREF_S3_SECRET_KEY"`
	UsePathStyle bool   `yaml:"usePathStyle" env:"SNAPREF_S3_USE_PATH_STYLE"`
}

// ObservabilityConfig configures logging and the metrics endpoint.
type ObservabilityConfig struct {
	MetricsAddr string `yaml:"metricsAddr" env:"SNAPREF_METRICS_ADDR"`
	LogLevel    string `yaml:"logLevel" env:"SNAPREF_LOG_LEVEL"`
	LogFormat   string `yaml:"logFormat" env:"SNAPREF_LOG_FORMAT"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			WorkingDirName:  ".tmp",
			RefreshPeriodMs: 300000, // 5 minutes
			Name:            "snapshot-refcache",
			Enumerator:      "all",
		},
		Store: StoreConfig{
			Backend: "local",
			S3: S3Config{
				Region: "us-east-1",
			},
		},
		Observability: ObservabilityConfig{
			MetricsAddr: ":9090",
			LogLevel:    "info",
			LogFormat:   "json",
		},
	}
}

// Load returns the default config with environment overrides applied, plus
// the file named by SNAPREF_CONFIG if set. Callers validate after applying
// their own overrides.
func Load() (*Config, error) {
	if path := os.Getenv("SNAPREF_CONFIG"); path != "" {
		return LoadFromPath(path)
	}
	cfg := Default()
	cfg.applyEnv()
	return cfg, nil
}

// LoadFromPath loads configuration from a YAML file. Values absent from the
// file keep their defaults; environment variables override both.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	cfg.applyEnv()
	return cfg, nil
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Cache.SnapshotRoot == "" {
		return fmt.Errorf("cache.snapshotRoot is required")
	}
	if c.Cache.RefreshPeriodMs < 0 {
		return fmt.Errorf("cache.refreshPeriodMs must not be negative")
	}
	switch c.Cache.Enumerator {
	case "all", "logs":
	default:
		return fmt.Errorf("cache.enumerator must be %q or %q, got %q", "all", "logs", c.Cache.Enumerator)
	}
	switch c.Store.Backend {
	case "local":
	case "s3":
		if c.Store.S3.Bucket == "" {
			return fmt.Errorf("store.s3.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("store.backend must be %q or %q, got %q", "local", "s3", c.Store.Backend)
	}
	return nil
}

func (c *Config) applyEnv() {
	setString(&c.Cache.SnapshotRoot, "SNAPREF_SNAPSHOT_ROOT")
	setString(&c.Cache.WorkingDirName, "SNAPREF_WORKING_DIR_NAME")
	setInt64(&c.Cache.RefreshPeriodMs, "SNAPREF_REFRESH_PERIOD_MS")
	setInt64(&c.Cache.StalenessBoundMs, "SNAPREF_STALENESS_BOUND_MS")
	setString(&c.Cache.Name, "SNAPREF_CACHE_NAME")
	setString(&c.Cache.Enumerator, "SNAPREF_ENUMERATOR")

	setString(&c.Store.Backend, "SNAPREF_STORE_BACKEND")
	setString(&c.Store.S3.Endpoint, "SNAPREF_S3_ENDPOINT")
	setString(&c.Store.S3.Bucket, "SNAPREF_S3_BUCKET")
	setString(&c.Store.S3.Region, "SNAPREF_S3_REGION")
	setString(&c.Store.S3.AccessKey, "SNAPREF_S3_ACCESS_KEY")
	setString(&c.Store.S3.SecretKey, "SNAPREF_S3_SECRET_KEY")
	setBool(&c.Store.S3.UsePathStyle, "SNAPREF_S3_USE_PATH_STYLE")

	setString(&c.Observability.MetricsAddr, "SNAPREF_METRICS_ADDR")
	setString(&c.Observability.LogLevel, "SNAPREF_LOG_LEVEL")
	setString(&c.Observability.LogFormat, "SNAPREF_LOG_FORMAT")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt64(dst *int64, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = parsed
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}
