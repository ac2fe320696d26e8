// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading for watchlog.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.watchlog/config.toml
//   - ~/.watchlog/config.json
//   - Built-in defaults
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/watchlog-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete watchlog configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Retry tunes the lock-tolerant file reader
	Retry RetryConfig `toml:"retry" json:"retry"`

	// Watch tunes event delivery and settling
	Watch WatchConfig `toml:"watch" json:"watch"`

	// History configures the SQLite change-record index
	History HistoryConfig `toml:"history" json:"history"`

	// UI configures the live feed
	UI UIConfig `toml:"ui" json:"ui"`
}

// RetryConfig bounds how hard reads retry against locked files.
type RetryConfig struct {
	// MaxAttempts is the total number of open attempts (1-20)
	MaxAttempts int `toml:"max_attempts" json:"max_attempts"`
	// DelayMs is the fixed pause between attempts in milliseconds
	DelayMs int `toml:"delay_ms" json:"delay_ms"`
}

// WatchConfig tunes the watcher and the dispatcher.
type WatchConfig struct {
	// SettleMs is the pause before reading a changed file, in milliseconds.
	// Trades millisecond-level completeness for coalesced, readable entries.
	SettleMs int `toml:"settle_ms" json:"settle_ms"`
	// DebounceMs is the per-path coalescing window in milliseconds
	DebounceMs int `toml:"debounce_ms" json:"debounce_ms"`
	// PollIntervalSecs is the polling fallback scan period
	PollIntervalSecs int `toml:"poll_interval_secs" json:"poll_interval_secs"`
	// LogFileName is the change log kept inside the watched root
	LogFileName string `toml:"log_file_name" json:"log_file_name"`
	// Ignore lists directory names never watched
	Ignore []string `toml:"ignore" json:"ignore"`
}

// HistoryConfig configures the queryable change index.
type HistoryConfig struct {
	// Enabled turns the SQLite index on or off
	Enabled bool `toml:"enabled" json:"enabled"`
	// DBPath overrides the database location (empty = ~/.watchlog/history.db)
	DBPath string `toml:"db_path" json:"db_path"`
}

// UIConfig configures the live feed.
type UIConfig struct {
	// FeedSize is how many recent events the feed retains (5-500)
	FeedSize int `toml:"feed_size" json:"feed_size"`
	// ShowDiffs enables the diff panel toggle in the TUI
	ShowDiffs bool `toml:"show_diffs" json:"show_diffs"`
	// NotifyPerSec caps feed updates per second (0 = uncapped)
	NotifyPerSec float64 `toml:"notify_per_sec" json:"notify_per_sec"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Retry: RetryConfig{
			MaxAttempts: 5,
			DelayMs:     500,
		},
		Watch: WatchConfig{
			SettleMs:         100,
			DebounceMs:       100,
			PollIntervalSecs: 5,
			LogFileName:      "CHANGELOG_AUTO.md",
			Ignore:           nil, // nil selects the watcher's defaults
		},
		History: HistoryConfig{
			Enabled: true,
		},
		UI: UIConfig{
			FeedSize:  50,
			ShowDiffs: true,
		},
	}
}

// =============================================================================
// DURATION HELPERS
// =============================================================================

// SettleDelay returns the settle delay as a duration.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Watch.SettleMs) * time.Millisecond
}

// Debounce returns the coalescing window as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}

// PollInterval returns the polling fallback period as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Watch.PollIntervalSecs) * time.Second
}

// RetryDelay returns the read retry pause as a duration.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Retry.DelayMs) * time.Millisecond
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns ~/.watchlog, creating it if needed.
func ConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	dir := filepath.Join(homeDir, ".watchlog")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// HistoryDBPath resolves the history database location.
func (c *Config) HistoryDBPath() (string, error) {
	if c.History.DBPath != "" {
		return c.History.DBPath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration, trying TOML first, then JSON, then
// defaults. Environment overrides and validation always apply.
func Load() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		cfg.Validate()
		return cfg, nil
	}

	for _, name := range []string{"config.toml", "config.json"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := LoadFrom(path)
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()
	cfg.Validate()
	return cfg, nil
}

// LoadFrom reads one specific config file. The format follows the
// extension: .toml or anything else as JSON.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if filepath.Ext(path) == ".toml" {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.Validate()
	return cfg, nil
}

// applyEnvOverrides layers WATCHLOG_* environment variables over the file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("WATCHLOG_SETTLE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Watch.SettleMs = n
		}
	}
	if v := os.Getenv("WATCHLOG_DEBOUNCE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Watch.DebounceMs = n
		}
	}
	if v := os.Getenv("WATCHLOG_RETRY_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Retry.MaxAttempts = n
		}
	}
	if v := os.Getenv("WATCHLOG_RETRY_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Retry.DelayMs = n
		}
	}
	if v := os.Getenv("WATCHLOG_LOG_FILE"); v != "" {
		c.Watch.LogFileName = v
	}
	if v := os.Getenv("WATCHLOG_HISTORY"); v != "" {
		c.History.Enabled = v == "1" || v == "true"
	}
}

// Validate clamps out-of-range values to safe bounds.
func (c *Config) Validate() {
	if c.Retry.MaxAttempts < 1 {
		c.Retry.MaxAttempts = 1
	}
	if c.Retry.MaxAttempts > 20 {
		c.Retry.MaxAttempts = 20
	}
	if c.Retry.DelayMs < 0 {
		c.Retry.DelayMs = 0
	}
	if c.Watch.SettleMs < 0 {
		c.Watch.SettleMs = 0
	}
	if c.Watch.DebounceMs < 0 {
		c.Watch.DebounceMs = 0
	}
	if c.Watch.PollIntervalSecs < 1 {
		c.Watch.PollIntervalSecs = 1
	}
	if c.Watch.LogFileName == "" {
		c.Watch.LogFileName = "CHANGELOG_AUTO.md"
	}
	if c.UI.FeedSize < 5 {
		c.UI.FeedSize = 5
	}
	if c.UI.FeedSize > 500 {
		c.UI.FeedSize = 500
	}
	if c.UI.NotifyPerSec < 0 {
		c.UI.NotifyPerSec = 0
	}
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration as TOML to ~/.watchlog/config.toml.
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return c.SaveTo(filepath.Join(dir, "config.toml"))
}

// SaveTo writes the configuration as TOML to the given path atomically.
func (c *Config) SaveTo(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, buf.Bytes(), 0644)
}
