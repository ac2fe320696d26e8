// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection and handling for the watchlog CLI.
//
// USABILITY: TTY detection for proper terminal handling
//
// Interactive terminals get the full TUI and colors; piped output and
// CI environments get the plain console feed and respect NO_COLOR.

package cli

import (
	"os"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsTTY returns true if stdin is a terminal.
// Use this to determine if interactive prompts are possible.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal.
// Use this to determine if colored output should be used.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// =============================================================================
// TERMINAL WIDTH DETECTION
// =============================================================================

const (
	// DefaultTerminalWidth is the fallback width when detection fails
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the minimum width we'll use for wrapping
	MinTerminalWidth = 40
)

// GetTerminalWidth returns the current terminal width.
// Returns DefaultTerminalWidth (80) if width cannot be determined.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	return width
}

// =============================================================================
// COLOR OUTPUT CONTROL
// =============================================================================

var (
	colorOnce    sync.Once
	colorEnabled bool
)

// ColorEnabled reports whether colored output should be used. Colors are
// off when stdout is not a TTY, NO_COLOR is set, or the terminal profile
// is Ascii.
func ColorEnabled() bool {
	colorOnce.Do(func() {
		if !IsStdoutTTY() {
			colorEnabled = false
			return
		}
		if os.Getenv("NO_COLOR") != "" {
			colorEnabled = false
			return
		}
		colorEnabled = termenv.ColorProfile() != termenv.Ascii
	})
	return colorEnabled
}
