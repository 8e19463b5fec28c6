package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level pyqa configuration.
type Config struct {
	Tools          []string `mapstructure:"tools"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
	HistoryFile    string   `mapstructure:"history_file"`
	Analysis       Settings `mapstructure:"analysis"`
	Output         Output   `mapstructure:"output"`
}

// Settings is the bundle of knobs the analysis tools honor. A zero value is
// not usable; start from DefaultSettings.
type Settings struct {
	PylintFailUnder          int    `mapstructure:"pylint_fail_under"`
	RadonThreshold           int    `mapstructure:"radon_threshold"`
	BanditConfidence         string `mapstructure:"bandit_confidence"`
	MypyIgnoreMissingImports bool   `mapstructure:"mypy_ignore_missing_imports"`
	EnableAutofix            bool   `mapstructure:"enable_autofix"`
	EnableMetricsTracking    bool   `mapstructure:"enable_metrics_tracking"`
}

// Validate checks that every setting is inside its documented range.
func (s Settings) Validate() error {
	if s.PylintFailUnder < 0 || s.PylintFailUnder > 10 {
		return fmt.Errorf("pylint_fail_under must be between 0 and 10, got %d", s.PylintFailUnder)
	}
	if s.RadonThreshold < 0 {
		return fmt.Errorf("radon_threshold must be >= 0, got %d", s.RadonThreshold)
	}
	switch strings.ToUpper(s.BanditConfidence) {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
	default:
		return fmt.Errorf("bandit_confidence must be one of LOW, MEDIUM, HIGH, got %q", s.BanditConfidence)
	}
	return nil
}

// Confidence returns the bandit confidence level in the lowercase form the
// bandit command line expects.
func (s Settings) Confidence() string {
	return strings.ToLower(s.BanditConfidence)
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Set defaults. An empty tools list means "the full catalog"; commands
	// expand it before starting a run.
	v.SetDefault("tools", []string{})
	v.SetDefault("timeout_seconds", DefaultTimeoutSeconds)
	v.SetDefault("history_file", DefaultHistoryFile)
	v.SetDefault("analysis.pylint_fail_under", DefaultSettings.PylintFailUnder)
	v.SetDefault("analysis.radon_threshold", DefaultSettings.RadonThreshold)
	v.SetDefault("analysis.bandit_confidence", DefaultSettings.BanditConfidence)
	v.SetDefault("analysis.mypy_ignore_missing_imports", DefaultSettings.MypyIgnoreMissingImports)
	v.SetDefault("analysis.enable_autofix", DefaultSettings.EnableAutofix)
	v.SetDefault("analysis.enable_metrics_tracking", DefaultSettings.EnableMetricsTracking)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		configDir := expandPath(DefaultConfigDir)
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Only return error for problems other than file not found.
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Analysis.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis settings: %w", err)
	}

	cfg.HistoryFile = expandPath(cfg.HistoryFile)

	return &cfg, nil
}

// DBPath returns the full path to the SQLite run archive.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
