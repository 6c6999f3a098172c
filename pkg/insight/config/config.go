package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/jamesainslie/insight/pkg/insight/filter"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// ScanConfig configures the scan pipeline.
type ScanConfig struct {
	Recursive     bool     `mapstructure:"recursive"`
	Exclude       []string `mapstructure:"exclude"`
	VideoMetadata bool     `mapstructure:"video_metadata"`
	Workers       int      `mapstructure:"workers"`
	ProbeTimeout  int      `mapstructure:"probe_timeout"` // seconds
}

// StoreConfig configures the record database.
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"` // Empty means use DefaultStorePath
}

// OutputConfig configures report generation.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Path   string `mapstructure:"path"` // Empty means stdout summary only
}

// Config represents the application configuration.
type Config struct {
	DefaultPath string        `mapstructure:"default_path"`
	Scan        ScanConfig    `mapstructure:"scan"`
	Store       StoreConfig   `mapstructure:"store"`
	Output      OutputConfig  `mapstructure:"output"`
	Logging     LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file location: $XDG_CONFIG_HOME/insight/config.yaml.
// Environment variables are prefixed with INSIGHT_
// (e.g., INSIGHT_SCAN_WORKERS).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(ConfigDir())

	v.SetEnvPrefix("INSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults registers every configuration default on v. Both Load and
// the CLI's viper instance go through here, so the defaults cannot
// drift apart.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("default_path", DefaultPath)

	v.SetDefault("scan.recursive", true)
	v.SetDefault("scan.exclude", filter.DefaultPatterns)
	v.SetDefault("scan.video_metadata", false)
	v.SetDefault("scan.workers", DefaultWorkers)
	v.SetDefault("scan.probe_timeout", DefaultProbeTimeoutSeconds)

	v.SetDefault("store.enabled", false)
	v.SetDefault("store.path", "") // Empty means use DefaultStorePath

	v.SetDefault("output.format", DefaultOutputFormat)
	v.SetDefault("output.path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use the default XDG state path
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", DefaultComponentLevels())
}

// DefaultComponentLevels returns the default per-component log levels.
func DefaultComponentLevels() map[string]string {
	return map[string]string{
		"scanner":  "info",
		"classify": "warn",
		"media":    "info",
		"store":    "info",
		"output":   "info",
		"cli":      "info",
	}
}

// ConfigDir returns the configuration directory path.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, "insight")
}

// DefaultStorePath returns the default database directory.
func DefaultStorePath() string {
	return filepath.Join(xdg.DataHome, "insight", "db")
}

// StorePath returns the configured database directory, falling back to
// the default.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return DefaultStorePath()
}
