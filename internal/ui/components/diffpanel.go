// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the watchlog TUI.
package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/watchlog-tui/internal/ui/styles"
)

// =============================================================================
// DIFF PANEL
// =============================================================================

// DiffPanel displays the unified diff of the most recent modification,
// syntax highlighted for the terminal.
type DiffPanel struct {
	text   string
	width  int
	height int
}

// NewDiffPanel creates an empty diff panel.
func NewDiffPanel() *DiffPanel {
	return &DiffPanel{width: 80, height: 12}
}

// SetSize sets the panel dimensions.
func (p *DiffPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetDiff replaces the displayed diff text.
func (p *DiffPanel) SetDiff(text string) {
	p.text = text
}

// HasDiff reports whether there is anything to show.
func (p *DiffPanel) HasDiff() bool {
	return p.text != ""
}

// View renders the bordered panel with the highlighted diff.
func (p *DiffPanel) View() string {
	inner := p.width - 4
	if inner < 20 {
		inner = 20
	}

	var body string
	if p.text == "" {
		body = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			Render("No modification yet")
	} else {
		body = clampLines(HighlightDiff(p.text), p.height-2)
	}

	containerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Purple).
		Padding(0, 1).
		Width(inner)

	return containerStyle.Render(body)
}

// =============================================================================
// HIGHLIGHTING
// =============================================================================

// HighlightDiff applies diff syntax highlighting using the chroma library.
// Falls back to the plain text on any failure.
func HighlightDiff(text string) string {
	lexer := lexers.Get("diff")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return text
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return text
	}

	return buf.String()
}

// clampLines keeps at most max lines, favoring the start of the diff.
func clampLines(s string, max int) string {
	if max <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= max {
		return s
	}
	return strings.Join(lines[:max], "\n")
}
