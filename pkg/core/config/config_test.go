package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sperrors "github.com/msto63/sparo/pkg/core/errors"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"minutes", "5m", 5 * time.Minute, false},
		{"complex", "1h30m", 90 * time.Minute, false},
		{"milliseconds", "100ms", 100 * time.Millisecond, false},
		{"invalid", "invalid", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))

			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && d.Duration != tt.expected {
				t.Errorf("UnmarshalText() = %v, want %v", d.Duration, tt.expected)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	cfg := Default()

	if cfg.General.Name != "sparo" {
		t.Errorf("General.Name = %v, want sparo", cfg.General.Name)
	}
	if cfg.General.LogLevel != "warn" {
		t.Errorf("General.LogLevel = %v, want warn", cfg.General.LogLevel)
	}
	if !cfg.Telemetry.Enabled {
		t.Error("Telemetry.Enabled should default to true")
	}
	if cfg.Telemetry.StoragePath != "/home/tester/.sparo/telemetry.db" {
		t.Errorf("Telemetry.StoragePath = %v", cfg.Telemetry.StoragePath)
	}
	if cfg.FlushInterval() != 5*time.Second {
		t.Errorf("FlushInterval() = %v, want 5s", cfg.FlushInterval())
	}
	if cfg.Retention() != 30*24*time.Hour {
		t.Errorf("Retention() = %v, want 720h", cfg.Retention())
	}
	if !cfg.Terminal.Color {
		t.Error("Terminal.Color should default to true")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "sparo.toml", `
[general]
log_level = "debug"
verbose = true

[telemetry]
enabled = false
storage_path = "/var/lib/sparo/telemetry.db"
flush_interval = "250ms"

[terminal]
color = false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.General.LogLevel != "debug" {
		t.Errorf("LogLevel = %v, want debug", cfg.General.LogLevel)
	}
	if !cfg.General.Verbose {
		t.Error("Verbose should be true")
	}
	if cfg.Telemetry.Enabled {
		t.Error("Telemetry.Enabled should be false")
	}
	if cfg.Telemetry.StoragePath != "/var/lib/sparo/telemetry.db" {
		t.Errorf("StoragePath = %v", cfg.Telemetry.StoragePath)
	}
	if cfg.FlushInterval() != 250*time.Millisecond {
		t.Errorf("FlushInterval() = %v, want 250ms", cfg.FlushInterval())
	}
	if cfg.Terminal.Color {
		t.Error("Terminal.Color should be false")
	}
	// untouched keys keep their defaults
	if cfg.General.Name != "sparo" {
		t.Errorf("Name = %v, want sparo", cfg.General.Name)
	}
	if cfg.Telemetry.BufferSize != 64 {
		t.Errorf("BufferSize = %v, want 64", cfg.Telemetry.BufferSize)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "sparo.yaml", `
general:
  log_format: json
telemetry:
  buffer_size: 8
  flush_interval: 2s
  retention_days: 7
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.General.LogFormat != "json" {
		t.Errorf("LogFormat = %v, want json", cfg.General.LogFormat)
	}
	if cfg.Telemetry.BufferSize != 8 {
		t.Errorf("BufferSize = %v, want 8", cfg.Telemetry.BufferSize)
	}
	if cfg.FlushInterval() != 2*time.Second {
		t.Errorf("FlushInterval() = %v, want 2s", cfg.FlushInterval())
	}
	if cfg.Retention() != 7*24*time.Hour {
		t.Errorf("Retention() = %v, want 168h", cfg.Retention())
	}
	if !cfg.Telemetry.Enabled {
		t.Error("Telemetry.Enabled should keep its default")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		code sperrors.Code
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.toml") },
			code: sperrors.CodeNotFound,
		},
		{
			name: "unknown extension",
			path: func(t *testing.T) string { return writeFile(t, "sparo.ini", "x=1") },
			code: sperrors.CodeInvalidConfig,
		},
		{
			name: "malformed toml",
			path: func(t *testing.T) string { return writeFile(t, "sparo.toml", "[general\nname=") },
			code: sperrors.CodeInvalidConfig,
		},
		{
			name: "invalid log level",
			path: func(t *testing.T) string { return writeFile(t, "sparo.toml", "[general]\nlog_level = \"loud\"\n") },
			code: sperrors.CodeInvalidConfig,
		},
		{
			name: "invalid log format",
			path: func(t *testing.T) string { return writeFile(t, "sparo.yml", "general:\n  log_format: xml\n") },
			code: sperrors.CodeInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			if err == nil {
				t.Fatal("Load() expected error")
			}
			if !sperrors.HasCode(err, tt.code) {
				t.Errorf("Load() error code = %v, want %v (%v)", sperrors.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestLoadFromEnv_NoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvTelemetry, "")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.General.Name != "sparo" {
		t.Errorf("Name = %v, want sparo", cfg.General.Name)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	path := writeFile(t, "custom.toml", "[general]\nlog_level = \"info\"\n")
	t.Setenv(EnvConfigPath, path)
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvTelemetry, "false")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.General.LogLevel != "debug" {
		t.Errorf("LogLevel = %v, want debug", cfg.General.LogLevel)
	}
	if cfg.Telemetry.Enabled {
		t.Error("Telemetry.Enabled should be overridden to false")
	}
}

func TestLoadFromEnv_InvalidTelemetryFlag(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvTelemetry, "sometimes")

	if _, err := LoadFromEnv(); !sperrors.HasCode(err, sperrors.CodeInvalidConfig) {
		t.Errorf("LoadFromEnv() error = %v, want INVALID_CONFIG", err)
	}
}

func TestEncode(t *testing.T) {
	cfg := Default()
	cfg.Telemetry.StoragePath = "/tmp/t.db"

	tests := []struct {
		format string
		want   []string
	}{
		{"toml", []string{"[telemetry]", `storage_path = "/tmp/t.db"`, `flush_interval = "5s"`}},
		{"yaml", []string{"telemetry:", "storage_path: /tmp/t.db", "flush_interval: 5s"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := cfg.Encode(&buf, tt.format); err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("Encode(%s) missing %q in:\n%s", tt.format, want, buf.String())
				}
			}
		})
	}

	if err := cfg.Encode(&bytes.Buffer{}, "ini"); !sperrors.HasCode(err, sperrors.CodeInvalidInput) {
		t.Errorf("Encode(ini) error = %v, want INVALID_INPUT", err)
	}
}
