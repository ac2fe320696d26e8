// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package watchview

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/watchlog-tui/internal/ui/styles"
	"github.com/jeranaias/watchlog-tui/internal/util"
)

// View renders the full watch screen.
func (m Model) View() string {
	if !m.ready {
		return m.spinner.View() + " Starting..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.showDiff {
		b.WriteString(m.diffPanel.View())
		b.WriteString("\n")
	}
	b.WriteString(m.status.View())
	return b.String()
}

// renderHeader shows the spinner, watch target, and key help.
func (m Model) renderHeader() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)
	mutedStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted)

	title := fmt.Sprintf("%s %s", m.spinner.View(),
		titleStyle.Render("Watching "+util.TruncateWidth(m.cfg.Root, m.width-30)))
	info := mutedStyle.Render(fmt.Sprintf("%d files cached · %s",
		m.cfg.Baseline, filepath.Base(m.cfg.LogPath)))
	help := mutedStyle.Render("d diff · c clear · q quit")

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(help)
	if gap < 1 {
		gap = 1
	}
	return title + " " + info + strings.Repeat(" ", maxInt(gap-lipgloss.Width(info)-2, 1)) + help
}

// renderFeed renders the feed ring, newest last.
func (m Model) renderFeed() string {
	if len(m.feed) == 0 {
		return lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			Render("Waiting for changes...")
	}

	tsStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
	errStyle := lipgloss.NewStyle().Foreground(styles.Rose)

	var b strings.Builder
	for i, entry := range m.feed {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(tsStyle.Render(entry.at.Format("15:04:05")))
		b.WriteString(" ")
		b.WriteString(m.renderEntryText(entry, errStyle))
	}
	return b.String()
}

// renderEntryText colors the kind label and leaves the rest plain.
func (m Model) renderEntryText(entry feedEntry, errStyle lipgloss.Style) string {
	if entry.isError {
		return errStyle.Render(entry.text)
	}

	kind, rest, found := strings.Cut(entry.text, ":")
	if !found {
		return entry.text
	}

	kindStyle := lipgloss.NewStyle().
		Foreground(styles.KindColor(kind)).
		Bold(true)
	return kindStyle.Render(kind) + ":" + rest
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
