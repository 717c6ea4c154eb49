package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Config Loading Tests
// =============================================================================

func TestLoadConfig_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(cfg.Paths.Root))
	assert.Equal(t, "tools", cfg.Paths.Manifests)
	assert.Equal(t, filepath.Join("template", "docker"), cfg.Paths.Templates)
	assert.Equal(t, "docker", cfg.Paths.Output)
	assert.Equal(t, "data", cfg.Paths.Data)
	assert.True(t, cfg.Behavior.AlwaysImport)
	assert.True(t, cfg.Behavior.EphemeralLogs)
	assert.Equal(t, 5*time.Minute, cfg.Compose.Timeout)
	assert.Equal(t, "", cfg.Docker.Host)
	assert.Equal(t, 80, cfg.List.BasicMaxWidth)
	assert.Equal(t, 30, cfg.List.DetailedMaxWidth)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadConfig_FromFile(t *testing.T) {
	clearEnv(t)

	configContent := `
paths:
  root: /srv/hpone
  manifests: manifests
  output: /var/lib/hpone/docker

behavior:
  always_import: false

compose:
  timeout: 90s

log:
  level: "debug"
  format: "json"
`
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(configContent), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, "/srv/hpone", cfg.Paths.Root)
	assert.Equal(t, "manifests", cfg.Paths.Manifests)
	assert.False(t, cfg.Behavior.AlwaysImport)
	assert.Equal(t, 90*time.Second, cfg.Compose.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	// Keys the file does not touch keep their defaults.
	assert.Equal(t, "data", cfg.Paths.Data)
	assert.True(t, cfg.Behavior.EphemeralLogs)
}

func TestLoadConfig_EnvironmentOverride(t *testing.T) {
	clearEnv(t)

	t.Setenv("HPONE_PATHS_ROOT", "/opt/hpone")
	t.Setenv("HPONE_BEHAVIOR_ALWAYS_IMPORT", "false")
	t.Setenv("HPONE_LOG_LEVEL", "debug")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "/opt/hpone", cfg.Paths.Root)
	assert.False(t, cfg.Behavior.AlwaysImport)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_FileNotFound_UsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("/nonexistent/path/config.yaml")
	require.NoError(t, err) // Should not error, just use defaults

	assert.Equal(t, "tools", cfg.Paths.Manifests)
	assert.True(t, cfg.Behavior.AlwaysImport)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	clearEnv(t)

	tmpFile := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("invalid: yaml: content: [[["), 0644))

	_, err := LoadConfig(tmpFile)
	assert.Error(t, err)
}

// =============================================================================
// Path Resolution Tests
// =============================================================================

func TestPathsConfig_RelativeAnchorsAtRoot(t *testing.T) {
	p := PathsConfig{
		Root:      "/srv/hpone",
		Manifests: "tools",
		Templates: filepath.Join("template", "docker"),
		Output:    "docker",
		Data:      "data",
	}

	assert.Equal(t, filepath.Join("/srv/hpone", "tools"), p.ManifestDir())
	assert.Equal(t, filepath.Join("/srv/hpone", "template", "docker"), p.TemplateDir())
	assert.Equal(t, filepath.Join("/srv/hpone", "docker"), p.OutputDir())
	assert.Equal(t, filepath.Join("/srv/hpone", "data"), p.DataDir())
}

func TestPathsConfig_AbsoluteStaysPut(t *testing.T) {
	p := PathsConfig{Root: "/srv/hpone", Output: "/var/lib/hpone/docker"}

	assert.Equal(t, "/var/lib/hpone/docker", p.OutputDir())
}

// =============================================================================
// Logger Setup Tests
// =============================================================================

func TestSetupLogger_LevelThresholds(t *testing.T) {
	tests := []struct {
		level   string
		debugOn bool
		infoOn  bool
		warnOn  bool
		errorOn bool
	}{
		{"debug", true, true, true, true},
		{"info", false, true, true, true},
		{"warn", false, false, true, true},
		{"warning", false, false, true, true},
		{"error", false, false, false, true},
		{"invalid", false, false, true, true}, // falls back to warn
	}

	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := SetupLogger(&Config{Log: LogConfig{Level: tt.level, Format: "text"}})
			assert.Equal(t, tt.debugOn, logger.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.infoOn, logger.Enabled(ctx, slog.LevelInfo))
			assert.Equal(t, tt.warnOn, logger.Enabled(ctx, slog.LevelWarn))
			assert.Equal(t, tt.errorOn, logger.Enabled(ctx, slog.LevelError))
		})
	}
}

func TestSetupLogger_JSONFormat(t *testing.T) {
	cfg := &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}

	logger := SetupLogger(cfg)
	assert.NotNil(t, logger)
}

func TestSetupLogger_TextFormat(t *testing.T) {
	cfg := &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}

	logger := SetupLogger(cfg)
	assert.NotNil(t, logger)
}

// =============================================================================
// Test Helpers
// =============================================================================

func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"HPONE_PATHS_ROOT",
		"HPONE_PATHS_MANIFESTS",
		"HPONE_PATHS_OUTPUT",
		"HPONE_BEHAVIOR_ALWAYS_IMPORT",
		"HPONE_COMPOSE_TIMEOUT",
		"HPONE_LOG_LEVEL",
		"HPONE_LOG_FORMAT",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}
