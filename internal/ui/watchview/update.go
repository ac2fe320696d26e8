// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package watchview

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages: terminal resize, key presses, spinner ticks,
// and incoming change notifications.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "d":
			m.showDiff = !m.showDiff
			m.layout()
			return m, nil
		case "c":
			m.feed = nil
			m.refreshFeed()
			return m, nil
		}
		// Everything else scrolls the feed
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case NotificationMsg:
		m.applyNotification(msg)
		return m, nil
	}

	return m, nil
}

// applyNotification folds one engine notification into the feed, the
// counters, and the diff panel.
func (m *Model) applyNotification(n NotificationMsg) {
	at := n.Time
	if at.IsZero() {
		at = time.Now()
	}

	m.feed = append(m.feed, feedEntry{at: at, text: n.Text, isError: n.IsError})
	if len(m.feed) > m.cfg.FeedSize {
		m.feed = m.feed[len(m.feed)-m.cfg.FeedSize:]
	}

	switch {
	case n.IsError:
		m.status.Errors++
	case strings.HasPrefix(n.Text, "CREATED:"):
		m.status.Created++
	case strings.HasPrefix(n.Text, "MODIFIED:"):
		m.status.Modified++
	case strings.HasPrefix(n.Text, "DELETED:"):
		m.status.Deleted++
	}

	if n.Diff != "" {
		m.diffPanel.SetDiff(n.Diff)
	}

	m.refreshFeed()
}

// layout recomputes component sizes from the window size.
func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}

	// Header and help take two lines, status bar one
	feedHeight := m.height - 3
	diffHeight := 0
	if m.showDiff {
		diffHeight = m.height / 3
		if diffHeight < 6 {
			diffHeight = 6
		}
		feedHeight -= diffHeight
	}
	if feedHeight < 3 {
		feedHeight = 3
	}

	if m.viewport.Width == 0 {
		m.viewport = viewport.New(m.width, feedHeight)
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = feedHeight
	}

	m.status.Width = m.width
	m.diffPanel.SetSize(m.width, diffHeight)
	m.refreshFeed()
}

// refreshFeed re-renders the feed into the viewport and follows the tail.
func (m *Model) refreshFeed() {
	m.viewport.SetContent(m.renderFeed())
	m.viewport.GotoBottom()
}
