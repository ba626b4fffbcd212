// Package config provides configuration loading for inspire.
//
// Configuration comes from an optional YAML file overridden by INSPIRE_
// prefixed environment variables, on top of built-in defaults.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// Config holds the complete inspire configuration.
type Config struct {
	Storage   StorageConfig   `koanf:"storage"`
	Database  DatabaseConfig  `koanf:"database"`
	Objects   ObjectsConfig   `koanf:"objects"`
	Logging   LoggingConfig   `koanf:"logging"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// StorageConfig locates repositories and derived assets.
type StorageConfig struct {
	// Root prefixes derived asset paths ({root}/repos/{owner}/{project}/...).
	// It must be absolute.
	Root string `koanf:"root"`

	// PublicRoot prefixes the publicly servable copy of derived assets.
	PublicRoot string `koanf:"public_root"`

	// DataDir holds project repositories ({data_dir}/{owner}/{id}.git).
	DataDir string `koanf:"data_dir"`
}

// DatabaseConfig holds project metadata storage settings.
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// ObjectsConfig controls object lookup.
type ObjectsConfig struct {
	// MinAbbrevLen is the shortest accepted abbreviated hash. 40 disables
	// abbreviation.
	MinAbbrevLen int `koanf:"min_abbrev_len"`
}

// LoggingConfig holds the user-facing logging knobs.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	OTEL   bool   `koanf:"otel"`
}

// MetricsConfig controls Prometheus instrumentation.
type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// TelemetryConfig controls OpenTelemetry trace export.
type TelemetryConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Endpoint string `koanf:"endpoint"`

	// Protocol is "grpc" (default) or "http/protobuf".
	Protocol    string `koanf:"protocol"`
	Insecure    bool   `koanf:"insecure"`
	ServiceName string `koanf:"service_name"`

	// SamplingRate is the fraction of traces kept. Zero means 1.0.
	SamplingRate float64  `koanf:"sampling_rate"`
	Shutdown     Duration `koanf:"shutdown_timeout"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Storage.Root == "" {
		cfg.Storage.Root = "/var/lib/inspire"
	}
	if cfg.Storage.PublicRoot == "" {
		cfg.Storage.PublicRoot = "public"
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = filepath.Join(cfg.Storage.Root, "data")
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = filepath.Join(cfg.Storage.Root, "inspire.db")
	}
	if cfg.Objects.MinAbbrevLen == 0 {
		cfg.Objects.MinAbbrevLen = 4
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = "localhost:4317"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "inspire"
	}
	if cfg.Telemetry.SamplingRate == 0 {
		cfg.Telemetry.SamplingRate = 1.0
	}
	if cfg.Telemetry.Shutdown == 0 {
		cfg.Telemetry.Shutdown = Duration(5 * time.Second)
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !filepath.IsAbs(c.Storage.Root) {
		return fmt.Errorf("invalid storage.root: %q (must be an absolute path)", c.Storage.Root)
	}
	if c.Storage.DataDir == "" {
		return errors.New("storage.data_dir is required")
	}
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if c.Objects.MinAbbrevLen < 4 || c.Objects.MinAbbrevLen > 40 {
		return fmt.Errorf("invalid objects.min_abbrev_len: %d (must be 4-40)", c.Objects.MinAbbrevLen)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("invalid logging.format: %q (must be json or console)", c.Logging.Format)
	}
	switch c.Telemetry.Protocol {
	case "", "grpc", "http/protobuf":
	default:
		return fmt.Errorf("invalid telemetry.protocol: %q (must be grpc or http/protobuf)", c.Telemetry.Protocol)
	}
	if c.Telemetry.SamplingRate < 0 || c.Telemetry.SamplingRate > 1 {
		return fmt.Errorf("invalid telemetry.sampling_rate: %v (must be between 0 and 1)", c.Telemetry.SamplingRate)
	}
	return nil
}
