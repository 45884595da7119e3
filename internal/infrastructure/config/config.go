// Package config provides configuration structs and utilities for the tokenlens application.
package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Config represents the root configuration for the tokenlens application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Tokenizer TokenizerConfig `yaml:"tokenizer"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Catalog   CatalogConfig   `yaml:"catalog"`
}

// LoggingConfig holds configuration for application logging.
type LoggingConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // json, text
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// TracingConfig holds configuration for OpenTelemetry tracing.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ExporterType string  `yaml:"exporter_type"` // none, stdout, otlp
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"` // 0.0 to 1.0
	ServiceName  string  `yaml:"service_name"`
}

// TokenizerConfig selects the BPE backend used for BPE-backed families.
type TokenizerConfig struct {
	Backend   string `yaml:"backend"`  // embedded, tiktoken, none
	Encoding  string `yaml:"encoding"` // e.g. cl100k_base, o200k_base
	CacheSize int    `yaml:"cache_size"`
}

// AnalysisConfig holds defaults for analysis output.
type AnalysisConfig struct {
	TopCharacters int    `yaml:"top_characters"`
	DefaultSort   string `yaml:"default_sort"` // tokens, input, output
}

// CatalogConfig optionally replaces the built-in model table.
type CatalogConfig struct {
	File string `yaml:"file,omitempty"`
}

// Default configuration values.
const (
	DefaultLogLevel      = "warn"
	DefaultLogFormat     = "text"
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3

	DefaultTracingEnabled      = false
	DefaultTracingExporterType = "none"
	DefaultTracingSampleRate   = 1.0
	DefaultTracingServiceName  = "tokenlens"

	DefaultTokenizerBackend  = "embedded"
	DefaultTokenizerEncoding = "cl100k_base"
	DefaultCacheSize         = 256

	DefaultTopCharacters = 10
	DefaultSort          = "tokens"
)

// Valid log levels.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Valid log formats.
var validLogFormats = map[string]bool{
	"json": true,
	"text": true,
}

// Valid tracing exporter types.
var validTracingExporterTypes = map[string]bool{
	"none":   true,
	"stdout": true,
	"otlp":   true,
}

// Valid tokenizer backends.
var validTokenizerBackends = map[string]bool{
	"embedded": true,
	"tiktoken": true,
	"none":     true,
}

// Valid analysis sort keys.
var validSortKeys = map[string]bool{
	"tokens": true,
	"input":  true,
	"output": true,
}

// NewDefaultConfig creates a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      DefaultLogLevel,
			Format:     DefaultLogFormat,
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
		},
		Tracing: TracingConfig{
			Enabled:      DefaultTracingEnabled,
			ExporterType: DefaultTracingExporterType,
			SampleRate:   DefaultTracingSampleRate,
			ServiceName:  DefaultTracingServiceName,
		},
		Tokenizer: TokenizerConfig{
			Backend:   DefaultTokenizerBackend,
			Encoding:  DefaultTokenizerEncoding,
			CacheSize: DefaultCacheSize,
		},
		Analysis: AnalysisConfig{
			TopCharacters: DefaultTopCharacters,
			DefaultSort:   DefaultSort,
		},
	}
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if err := c.Tracing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tracing: %w", err))
	}

	if err := c.Tokenizer.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tokenizer: %w", err))
	}

	if err := c.Analysis.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("analysis: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the LoggingConfig is valid.
func (l *LoggingConfig) Validate() error {
	var errs []error

	if l.Level != "" && !validLogLevels[l.Level] {
		errs = append(errs, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", l.Level))
	}

	if l.Format != "" && !validLogFormats[l.Format] {
		errs = append(errs, fmt.Errorf("invalid log format %q: must be one of json, text", l.Format))
	}

	if l.File != "" {
		if l.MaxSizeMB <= 0 {
			errs = append(errs, errors.New("max_size_mb must be positive when file is set"))
		}
		if l.MaxBackups < 0 {
			errs = append(errs, errors.New("max_backups must be non-negative"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the TracingConfig is valid.
func (t *TracingConfig) Validate() error {
	var errs []error

	if t.Enabled {
		if t.ExporterType != "" && !validTracingExporterTypes[t.ExporterType] {
			errs = append(errs, fmt.Errorf("invalid exporter_type %q: must be one of none, stdout, otlp", t.ExporterType))
		}
		if t.ExporterType == "otlp" {
			if t.OTLPEndpoint == "" {
				errs = append(errs, errors.New("otlp_endpoint is required when exporter_type is 'otlp'"))
			} else if _, err := url.Parse(t.OTLPEndpoint); err != nil {
				errs = append(errs, fmt.Errorf("invalid otlp_endpoint: %w", err))
			}
		}
		if t.SampleRate < 0 || t.SampleRate > 1 {
			errs = append(errs, errors.New("sample_rate must be between 0.0 and 1.0"))
		}
		if t.ServiceName == "" {
			errs = append(errs, errors.New("service_name is required when tracing is enabled"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the TokenizerConfig is valid.
func (t *TokenizerConfig) Validate() error {
	var errs []error

	if t.Backend != "" && !validTokenizerBackends[t.Backend] {
		errs = append(errs, fmt.Errorf("invalid backend %q: must be one of embedded, tiktoken, none", t.Backend))
	}

	if t.CacheSize < 0 {
		errs = append(errs, errors.New("cache_size must be non-negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the AnalysisConfig is valid.
func (a *AnalysisConfig) Validate() error {
	var errs []error

	if a.TopCharacters < 0 {
		errs = append(errs, errors.New("top_characters must be non-negative"))
	}

	if a.DefaultSort != "" && !validSortKeys[a.DefaultSort] {
		errs = append(errs, fmt.Errorf("invalid default_sort %q: must be one of tokens, input, output", a.DefaultSort))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
