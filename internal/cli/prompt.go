// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// prompt.go - Interactive directory prompt with input history.
//
// USABILITY: Supports arrow keys for history navigation and line editing.

package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/watchlog-tui/internal/config"
)

// ErrPromptAborted is returned when the user cancels the prompt.
var ErrPromptAborted = errors.New("prompt aborted")

// PathPrompt reads directory paths interactively, remembering previously
// watched directories across runs.
type PathPrompt struct {
	line        *liner.State
	historyFile string
}

// NewPathPrompt creates a prompt with history loaded from the config dir.
func NewPathPrompt() *PathPrompt {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		// Fallback to temp directory if config dir unavailable
		configDir = os.TempDir()
	}
	historyFile := filepath.Join(configDir, "path_history")

	p := &PathPrompt{
		line:        line,
		historyFile: historyFile,
	}
	p.loadHistory()
	return p
}

func (p *PathPrompt) loadHistory() {
	if f, err := os.Open(p.historyFile); err == nil {
		p.line.ReadHistory(f)
		f.Close()
	}
}

// AskDirectory prompts for a directory and validates that it exists. The
// returned path is absolute. Empty input selects the current directory.
func (p *PathPrompt) AskDirectory() (string, error) {
	for {
		input, err := p.line.Prompt("Directory to watch [.]: ")
		if err != nil {
			if err == liner.ErrPromptAborted {
				return "", ErrPromptAborted
			}
			return "", err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			input = "."
		}

		abs, err := filepath.Abs(expandHome(input))
		if err != nil {
			fmt.Printf("Invalid path: %v\n", err)
			continue
		}

		info, err := os.Stat(abs)
		if err != nil {
			fmt.Printf("No such directory: %s\n", abs)
			continue
		}
		if !info.IsDir() {
			fmt.Printf("Not a directory: %s\n", abs)
			continue
		}

		p.line.AppendHistory(input)
		return abs, nil
	}
}

// Close saves history and releases the terminal.
func (p *PathPrompt) Close() {
	p.saveHistory()
	p.line.Close()
}

// saveHistory persists path history with owner-only permissions.
func (p *PathPrompt) saveHistory() {
	f, err := os.OpenFile(p.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	p.line.WriteHistory(f)
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
