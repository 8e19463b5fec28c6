// Package config provides configuration loading and defaults for pyqa.
package config

// DefaultConfigDir is the default location for pyqa configuration and data.
const DefaultConfigDir = "~/.config/pyqa"

// DefaultDBName is the filename for the SQLite run archive.
const DefaultDBName = "pyqa.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultHistoryFile is the default location of the metrics history file.
const DefaultHistoryFile = "~/.config/pyqa/history.json"

// DefaultTimeoutSeconds is the wall-clock bound applied to each tool
// invocation.
const DefaultTimeoutSeconds = 300

// Confidence levels accepted for analysis.bandit_confidence.
const (
	ConfidenceLow    = "LOW"
	ConfidenceMedium = "MEDIUM"
	ConfidenceHigh   = "HIGH"
)

// DefaultSettings holds the default analysis settings.
var DefaultSettings = Settings{
	PylintFailUnder:          5,
	RadonThreshold:           10,
	BanditConfidence:         ConfidenceMedium,
	MypyIgnoreMissingImports: true,
	EnableAutofix:            false,
	EnableMetricsTracking:    true,
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}
