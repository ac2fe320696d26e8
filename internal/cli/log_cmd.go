// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// log_cmd.go - Render the change log for a watched directory.

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/watchlog-tui/internal/config"
)

// HandleLog handles the "log" command: pretty-print the change log
// through the markdown renderer, or dump it raw with --raw.
func HandleLog(args Args) error {
	parser := NewArgParser(args.Raw)

	root := args.Root
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return NewCommandError("log", "resolve", "bad directory", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return NewCommandError("log", "config", "failed to load configuration", err)
	}

	logPath := filepath.Join(root, cfg.Watch.LogFileName)
	data, err := os.ReadFile(logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no change log at %s (run watchlog first)", logPath)
		}
		return NewCommandError("log", "read", "failed to read change log", err)
	}

	// Raw mode and piped output skip rendering so the markdown survives
	if parser.BoolFlag("raw") || !IsStdoutTTY() {
		fmt.Print(string(data))
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(GetTerminalWidth()),
	)
	if err != nil {
		// Fallback to plain text if renderer initialization fails
		fmt.Print(string(data))
		return nil
	}

	out, err := renderer.Render(string(data))
	if err != nil {
		fmt.Print(string(data))
		return nil
	}
	fmt.Print(out)
	return nil
}
