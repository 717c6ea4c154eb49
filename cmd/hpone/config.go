package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all application configuration.
type Config struct {
	Paths    PathsConfig    `mapstructure:"paths"`
	Behavior BehaviorConfig `mapstructure:"behavior"`
	Compose  ComposeConfig  `mapstructure:"compose"`
	Docker   DockerConfig   `mapstructure:"docker"`
	List     ListConfig     `mapstructure:"list"`
	Log      LogConfig      `mapstructure:"log"`
}

// PathsConfig holds the project directory layout. Entries other than Root
// may be relative, in which case they are anchored at Root.
type PathsConfig struct {
	Root      string `mapstructure:"root"`
	Manifests string `mapstructure:"manifests"`
	Templates string `mapstructure:"templates"`
	Output    string `mapstructure:"output"`
	Data      string `mapstructure:"data"`
}

func (c PathsConfig) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// ManifestDir returns the directory holding tool manifests.
func (c PathsConfig) ManifestDir() string { return c.resolve(c.Manifests) }

// TemplateDir returns the directory holding tool templates.
func (c PathsConfig) TemplateDir() string { return c.resolve(c.Templates) }

// OutputDir returns the directory holding imported workspaces.
func (c PathsConfig) OutputDir() string { return c.resolve(c.Output) }

// DataDir returns the directory holding mounted tool data.
func (c PathsConfig) DataDir() string { return c.resolve(c.Data) }

// BehaviorConfig holds pipeline behavior switches.
type BehaviorConfig struct {
	// AlwaysImport re-imports a tool from its template on every up, so
	// workspaces always match their manifests. When false, import and
	// update become explicit commands.
	AlwaysImport bool `mapstructure:"always_import"`

	// EphemeralLogs renders compose lifecycle output as single-line
	// progress instead of dumping the raw command output.
	EphemeralLogs bool `mapstructure:"ephemeral_logs"`
}

// ComposeConfig holds compose invocation configuration.
type ComposeConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// DockerConfig holds Docker client configuration.
type DockerConfig struct {
	Host string `mapstructure:"host"`
}

// ListConfig holds table rendering widths.
type ListConfig struct {
	BasicMaxWidth    int `mapstructure:"basic_max_width"`
	DetailedMaxWidth int `mapstructure:"detailed_max_width"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("paths.root", ".")
	v.SetDefault("paths.manifests", "tools")
	v.SetDefault("paths.templates", filepath.Join("template", "docker"))
	v.SetDefault("paths.output", "docker")
	v.SetDefault("paths.data", "data")
	v.SetDefault("behavior.always_import", true)
	v.SetDefault("behavior.ephemeral_logs", true)
	v.SetDefault("compose.timeout", "5m")
	v.SetDefault("docker.host", "")
	v.SetDefault("list.basic_max_width", 80)
	v.SetDefault("list.detailed_max_width", 30)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Only return error if file was explicitly specified and is invalid
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// File not found is OK, we'll use defaults
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("HPONE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Anchor the root so every derived path is absolute no matter where
	// the process was started from.
	if abs, err := filepath.Abs(cfg.Paths.Root); err == nil {
		cfg.Paths.Root = abs
	}

	return &cfg, nil
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format.
// Diagnostics go to stderr; stdout carries command output only.
func SetupLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
