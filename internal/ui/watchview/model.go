// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package watchview is the bubbletea model for the live watch screen:
// a scrolling feed of change summaries, an optional diff panel for the
// latest modification, and a status bar with session counters.
package watchview

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/watchlog-tui/internal/engine"
	"github.com/jeranaias/watchlog-tui/internal/ui/components"
	"github.com/jeranaias/watchlog-tui/internal/ui/styles"
)

// Config configures the watch screen.
type Config struct {
	Root      string // Watched directory (absolute)
	LogPath   string // Change log location, shown in the header
	Baseline  int    // Files cached during the initial scan
	FeedSize  int    // Maximum feed entries retained
	ShowDiffs bool   // Whether the diff panel starts visible
}

// NotificationMsg delivers one engine notification to the model.
// The engine goroutine pumps these in through Program.Send.
type NotificationMsg engine.Notification

// feedEntry is one rendered line of the feed ring.
type feedEntry struct {
	at      time.Time
	text    string
	isError bool
}

// Model is the bubbletea model for the watch screen.
type Model struct {
	cfg Config

	spinner   spinner.Model
	viewport  viewport.Model
	status    *components.StatusBar
	diffPanel *components.DiffPanel

	feed     []feedEntry
	showDiff bool

	width  int
	height int
	ready  bool
}

// New creates the watch screen model.
func New(cfg Config) Model {
	if cfg.FeedSize <= 0 {
		cfg.FeedSize = 50
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Cyan)

	return Model{
		cfg:       cfg,
		spinner:   sp,
		status:    &components.StatusBar{Root: cfg.Root},
		diffPanel: components.NewDiffPanel(),
		showDiff:  cfg.ShowDiffs,
	}
}

// Init starts the spinner tick loop.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}
