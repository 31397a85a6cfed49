// Package config handles configuration loading and defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Default values.
const (
	DefaultJournalFile = "~/.journal.json"
	DefaultSortOrder   = "asc"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// Config holds the full configuration for the journal CLI.
type Config struct {
	// Paths
	JournalFile string `toml:"journal_file"`
	SchemaFile  string `toml:"schema_file"`

	// Display
	SortOrder string `toml:"sort_order"` // asc or desc

	// Logging
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"` // text, json, logfmt
	LogTimestamps bool   `toml:"log_timestamps"`
}

// Load loads configuration from multiple sources in priority order:
//  1. Defaults
//  2. Config file (TOML)
//  3. Environment variables
//  4. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}

	setDefaults(cfg)

	configFile := findConfigFile()
	if configFile != "" {
		if err := loadConfigFile(cfg, configFile); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", configFile, err)
		}
	}

	loadFromEnv(cfg)

	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	finalizeConfig(cfg)

	return cfg, nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.JournalFile = DefaultJournalFile
	cfg.SchemaFile = ""
	cfg.SortOrder = DefaultSortOrder
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.LogTimestamps = false
}

// findConfigFile looks for a config file in the current directory, then in
// the user's home directory.
func findConfigFile() string {
	names := []string{"journal.toml", ".journal.toml"}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".journal.toml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// loadConfigFile loads TOML config from the given file.
func loadConfigFile(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("JOURNAL_FILE"); v != "" {
		cfg.JournalFile = v
	}
	if v := os.Getenv("JOURNAL_SCHEMA"); v != "" {
		cfg.SchemaFile = v
	}
	if v := os.Getenv("JOURNAL_SORT_ORDER"); v != "" {
		cfg.SortOrder = v
	}
	if v := os.Getenv("JOURNAL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("JOURNAL_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("JOURNAL_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = boolFromString(v)
	}
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// parseFlags defines and parses CLI flags.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	if fs == nil {
		fs = flag.NewFlagSet("journal", flag.ContinueOnError)
	}

	fs.StringVar(&cfg.JournalFile, "journal", cfg.JournalFile, "Path to journal file")
	fs.StringVar(&cfg.SchemaFile, "schema", cfg.SchemaFile, "Path to JSON Schema file for doctor checks")
	fs.StringVar(&cfg.SortOrder, "sort", cfg.SortOrder, "Default sort order (asc|desc)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text|json|logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Include timestamps in log output")

	return fs.Parse(args)
}

// finalizeConfig expands paths after all sources have been applied.
func finalizeConfig(cfg *Config) {
	cfg.JournalFile = expandPath(cfg.JournalFile)
	if cfg.SchemaFile != "" {
		cfg.SchemaFile = expandPath(cfg.SchemaFile)
	}
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[2:])
	}
	if p == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return home
	}
	return p
}
