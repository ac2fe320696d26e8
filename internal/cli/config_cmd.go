// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration management subcommands.

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jeranaias/watchlog-tui/internal/config"
)

// HandleConfig handles the "config" command.
//
// Subcommands: show (default), path, init, set KEY VALUE
func HandleConfig(args Args) error {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "show":
		return configShow(args)
	case "path":
		return configPath()
	case "init":
		return configInit()
	case "set":
		return configSet(parser.Positional(1), parser.Positional(2))
	default:
		return NewValidationError("subcommand", parser.Subcommand(),
			"unknown config subcommand", "watchlog config [show|path|init|set]")
	}
}

func configShow(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return NewCommandError("config", "show", "failed to load configuration", err)
	}

	if args.JSON {
		return NewJSONResponse("config", cfg).Print()
	}

	fmt.Println("Configuration:")
	fmt.Printf("  retry.max_attempts       = %d\n", cfg.Retry.MaxAttempts)
	fmt.Printf("  retry.delay_ms           = %d\n", cfg.Retry.DelayMs)
	fmt.Printf("  watch.settle_ms          = %d\n", cfg.Watch.SettleMs)
	fmt.Printf("  watch.debounce_ms        = %d\n", cfg.Watch.DebounceMs)
	fmt.Printf("  watch.poll_interval_secs = %d\n", cfg.Watch.PollIntervalSecs)
	fmt.Printf("  watch.log_file_name      = %s\n", cfg.Watch.LogFileName)
	if len(cfg.Watch.Ignore) > 0 {
		fmt.Printf("  watch.ignore             = %s\n", strings.Join(cfg.Watch.Ignore, ", "))
	} else {
		fmt.Printf("  watch.ignore             = (defaults)\n")
	}
	fmt.Printf("  history.enabled          = %t\n", cfg.History.Enabled)
	if cfg.History.DBPath != "" {
		fmt.Printf("  history.db_path          = %s\n", cfg.History.DBPath)
	}
	fmt.Printf("  ui.feed_size             = %d\n", cfg.UI.FeedSize)
	fmt.Printf("  ui.show_diffs            = %t\n", cfg.UI.ShowDiffs)
	return nil
}

func configPath() error {
	dir, err := config.ConfigDir()
	if err != nil {
		return NewCommandError("config", "path", "cannot resolve config directory", err)
	}
	fmt.Println(filepath.Join(dir, "config.toml"))
	return nil
}

func configInit() error {
	dir, err := config.ConfigDir()
	if err != nil {
		return NewCommandError("config", "init", "cannot resolve config directory", err)
	}

	path := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}

	cfg := config.DefaultConfig()
	if err := cfg.SaveTo(path); err != nil {
		return NewCommandError("config", "init", "failed to write config", err)
	}
	fmt.Printf("Wrote default configuration to %s\n", path)
	return nil
}

// configSet updates a single dotted key and saves the config.
func configSet(key, value string) error {
	if key == "" || value == "" {
		return NewValidationError("arguments", "",
			"set requires a key and a value", "watchlog config set watch.settle_ms 200")
	}

	cfg, err := config.Load()
	if err != nil {
		return NewCommandError("config", "set", "failed to load configuration", err)
	}

	if err := applyConfigKey(cfg, key, value); err != nil {
		return err
	}

	cfg.Validate()
	if err := cfg.Save(); err != nil {
		return NewCommandError("config", "set", "failed to save configuration", err)
	}
	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}

// applyConfigKey maps the user-facing dotted keys onto config fields.
func applyConfigKey(cfg *config.Config, key, value string) error {
	intVal := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, NewValidationError(key, value, "expected an integer", "")
		}
		return n, nil
	}

	switch strings.ToLower(key) {
	case "retry.max_attempts":
		n, err := intVal()
		if err != nil {
			return err
		}
		cfg.Retry.MaxAttempts = n
	case "retry.delay_ms":
		n, err := intVal()
		if err != nil {
			return err
		}
		cfg.Retry.DelayMs = n
	case "watch.settle_ms":
		n, err := intVal()
		if err != nil {
			return err
		}
		cfg.Watch.SettleMs = n
	case "watch.debounce_ms":
		n, err := intVal()
		if err != nil {
			return err
		}
		cfg.Watch.DebounceMs = n
	case "watch.poll_interval_secs":
		n, err := intVal()
		if err != nil {
			return err
		}
		cfg.Watch.PollIntervalSecs = n
	case "watch.log_file_name":
		cfg.Watch.LogFileName = value
	case "history.enabled":
		b, err := ParseBoolString(value)
		if err != nil {
			return NewValidationError(key, value, "expected a boolean", "true or false")
		}
		cfg.History.Enabled = b
	case "history.db_path":
		cfg.History.DBPath = value
	case "ui.feed_size":
		n, err := intVal()
		if err != nil {
			return err
		}
		cfg.UI.FeedSize = n
	case "ui.show_diffs":
		b, err := ParseBoolString(value)
		if err != nil {
			return NewValidationError(key, value, "expected a boolean", "true or false")
		}
		cfg.UI.ShowDiffs = b
	default:
		return NewValidationError("key", key, "unknown configuration key",
			"watchlog config show lists the available keys")
	}
	return nil
}
