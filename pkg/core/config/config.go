// ============================================================================
// sparo - Sparse checkout helper
// ============================================================================
//
// Package:     config
// Description: TOML/YAML configuration with defaults and env overrides
// Created:     2026-10-17
// License:     MIT
// ============================================================================

package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	sperrors "github.com/msto63/sparo/pkg/core/errors"
)

// Environment variables understood by LoadFromEnv
const (
	EnvConfigPath = "SPARO_CONFIG"
	EnvLogLevel   = "SPARO_LOG_LEVEL"
	EnvTelemetry  = "SPARO_TELEMETRY"
)

// Format names accepted by Encode
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// Config holds the complete application configuration
type Config struct {
	General   GeneralConfig   `toml:"general" yaml:"general"`
	Telemetry TelemetryConfig `toml:"telemetry" yaml:"telemetry"`
	Terminal  TerminalConfig  `toml:"terminal" yaml:"terminal"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name      string `toml:"name" yaml:"name"`
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	LogFormat string `toml:"log_format" yaml:"log_format"`
	Verbose   bool   `toml:"verbose" yaml:"verbose"`
}

// TelemetryConfig holds telemetry collection settings
type TelemetryConfig struct {
	Enabled       bool     `toml:"enabled" yaml:"enabled"`
	StoragePath   string   `toml:"storage_path" yaml:"storage_path"`
	BufferSize    int      `toml:"buffer_size" yaml:"buffer_size"`
	FlushInterval Duration `toml:"flush_interval" yaml:"flush_interval"`
	RetentionDays int      `toml:"retention_days" yaml:"retention_days"`
}

// TerminalConfig holds terminal output settings
type TerminalConfig struct {
	Color bool `toml:"color" yaml:"color"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// MarshalYAML formats the duration as a string scalar
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Default returns the configuration used when no file is present
func Default() *Config {
	cfg := &Config{
		General: GeneralConfig{
			Name:      "sparo",
			LogLevel:  "warn",
			LogFormat: "text",
		},
		Telemetry: TelemetryConfig{
			Enabled:       true,
			StoragePath:   "$HOME/.sparo/telemetry.db",
			BufferSize:    64,
			FlushInterval: Duration{5 * time.Second},
			RetentionDays: 30,
		},
		Terminal: TerminalConfig{
			Color: true,
		},
	}
	cfg.expandEnvVars()
	return cfg
}

// Load loads configuration from a TOML or YAML file.
// Keys missing from the file keep their Default value.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, sperrors.Newf("config file not found: %s", path).
			WithCode(sperrors.CodeNotFound).
			WithOperation("config.Load").
			WithDetail("path", path)
	}

	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, sperrors.Wrap(err, "failed to read config").
			WithCode(sperrors.CodeConfigError).
			WithOperation("config.Load").
			WithDetail("path", path)
	}

	cfg := Default()
	switch format {
	case FormatTOML:
		_, err = toml.Decode(string(content), cfg)
	case FormatYAML:
		err = yaml.Unmarshal(content, cfg)
	}
	if err != nil {
		return nil, sperrors.Wrap(err, "failed to parse config").
			WithCode(sperrors.CodeInvalidConfig).
			WithOperation("config.Load").
			WithDetail("path", path).
			WithDetail("format", format)
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from SPARO_CONFIG or the default
// locations, falling back to Default when no file exists. Environment
// overrides are applied last.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		for _, p := range DefaultPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPaths returns the locations probed by LoadFromEnv, in order
func DefaultPaths() []string {
	paths := []string{
		"./sparo.toml",
		"./sparo.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "sparo", "config.toml"))
	}
	return paths
}

// Validate checks values that have no sensible fallback
func (c *Config) Validate() error {
	switch strings.ToLower(c.General.LogLevel) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return sperrors.Newf("invalid log level %q", c.General.LogLevel).
			WithCode(sperrors.CodeInvalidConfig).
			WithOperation("config.Validate")
	}

	switch strings.ToLower(c.General.LogFormat) {
	case "text", "json":
	default:
		return sperrors.Newf("invalid log format %q", c.General.LogFormat).
			WithCode(sperrors.CodeInvalidConfig).
			WithOperation("config.Validate")
	}

	if c.Telemetry.BufferSize < 0 {
		return sperrors.Newf("telemetry buffer size must not be negative, got %d", c.Telemetry.BufferSize).
			WithCode(sperrors.CodeInvalidConfig).
			WithOperation("config.Validate")
	}

	return nil
}

// Encode writes the configuration in the given format ("toml" or "yaml")
func (c *Config) Encode(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "", FormatTOML:
		return toml.NewEncoder(w).Encode(c)
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	default:
		return sperrors.Newf("unsupported config format %q", format).
			WithCode(sperrors.CodeInvalidInput).
			WithOperation("config.Encode")
	}
}

// FlushInterval returns the telemetry flush interval
func (c *Config) FlushInterval() time.Duration {
	return c.Telemetry.FlushInterval.Duration
}

// Retention returns the telemetry retention window
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Telemetry.RetentionDays) * 24 * time.Hour
}

// applyDefaults sets default values for fields a file explicitly emptied
func (c *Config) applyDefaults() {
	if c.General.Name == "" {
		c.General.Name = "sparo"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "warn"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	if c.Telemetry.StoragePath == "" {
		c.Telemetry.StoragePath = "$HOME/.sparo/telemetry.db"
	}
	if c.Telemetry.BufferSize == 0 {
		c.Telemetry.BufferSize = 64
	}
	if c.Telemetry.FlushInterval.Duration == 0 {
		c.Telemetry.FlushInterval.Duration = 5 * time.Second
	}
	if c.Telemetry.RetentionDays == 0 {
		c.Telemetry.RetentionDays = 30
	}
}

// expandEnvVars expands environment variables in path values
func (c *Config) expandEnvVars() {
	c.Telemetry.StoragePath = os.ExpandEnv(c.Telemetry.StoragePath)
}

// applyEnvOverrides applies SPARO_* variables on top of file values
func (c *Config) applyEnvOverrides() error {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.General.LogLevel = level
	}

	if raw := os.Getenv(EnvTelemetry); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return sperrors.Wrap(err, fmt.Sprintf("invalid %s value %q", EnvTelemetry, raw)).
				WithCode(sperrors.CodeInvalidConfig).
				WithOperation("config.LoadFromEnv")
		}
		c.Telemetry.Enabled = enabled
	}

	return c.Validate()
}

// detectFormat maps a file extension to a config format
func detectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", sperrors.Newf("unsupported config file extension: %s", path).
			WithCode(sperrors.CodeInvalidConfig).
			WithOperation("config.Load").
			WithDetail("path", path)
	}
}
