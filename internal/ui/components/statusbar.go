// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/watchlog-tui/internal/ui/styles"
	"github.com/jeranaias/watchlog-tui/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT - Bottom status bar with session counters
// =============================================================================

// StatusBar shows the watch target and running change counters.
type StatusBar struct {
	Root     string // Watched directory
	Created  int
	Modified int
	Deleted  int
	Errors   int
	Width    int
}

// View renders the status bar at the configured width.
func (s *StatusBar) View() string {
	width := s.Width
	if width <= 0 {
		width = 80
	}

	brandStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Background(styles.SurfaceDim).
		Bold(true).
		Padding(0, 1)

	countStyle := func(c lipgloss.AdaptiveColor) lipgloss.Style {
		return lipgloss.NewStyle().
			Foreground(c).
			Background(styles.SurfaceDim).
			Padding(0, 1)
	}

	brand := brandStyle.Render("watchlog")
	created := countStyle(styles.Emerald).Render(fmt.Sprintf("+%d", s.Created))
	modified := countStyle(styles.Amber).Render(fmt.Sprintf("~%d", s.Modified))
	deleted := countStyle(styles.Rose).Render(fmt.Sprintf("-%d", s.Deleted))

	segments := brand + created + modified + deleted
	if s.Errors > 0 {
		segments += countStyle(styles.Rose).Render(fmt.Sprintf("!%d", s.Errors))
	}

	// Root path fills the remaining space, truncated from the left edge
	used := lipgloss.Width(segments)
	rootWidth := width - used - 2
	if rootWidth < 0 {
		rootWidth = 0
	}
	rootStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Background(styles.SurfaceDim).
		Padding(0, 1).
		Width(rootWidth + 2)

	return segments + rootStyle.Render(util.TruncateWidth(s.Root, rootWidth))
}
