// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// =============================================================================
// POLLING WATCHER (FALLBACK)
// =============================================================================

// PollingWatcher detects changes by comparing modification times between
// periodic scans. Coarser than fsnotify but works everywhere.
type PollingWatcher struct {
	root    string
	opts    Options
	ignores ignoreSet

	events chan Event

	mu    sync.Mutex
	files map[string]time.Time // path -> mod time from last scan

	ctx    context.Context
	cancel context.CancelFunc
}

// NewPollingWatcher creates a polling-based watcher for root.
func NewPollingWatcher(root string, opts Options) *PollingWatcher {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	return &PollingWatcher{
		root:    root,
		opts:    opts,
		ignores: newIgnoreSet(opts.Ignore),
		events:  make(chan Event, 256),
		files:   make(map[string]time.Time),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start records the initial scan and begins polling.
func (pw *PollingWatcher) Start() error {
	initial, err := pw.scan()
	if err != nil {
		return err
	}
	pw.mu.Lock()
	pw.files = initial
	pw.mu.Unlock()

	go pw.poll()
	return nil
}

// Events returns the event stream.
func (pw *PollingWatcher) Events() <-chan Event {
	return pw.events
}

// Close stops polling.
func (pw *PollingWatcher) Close() error {
	pw.cancel()
	return nil
}

// scan walks the tree and records file modification times.
func (pw *PollingWatcher) scan() (map[string]time.Time, error) {
	found := make(map[string]time.Time)

	err := filepath.Walk(pw.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		if info.IsDir() {
			if path != pw.root && pw.ignores.has(filepath.Base(path)) {
				return filepath.SkipDir
			}
			return nil
		}

		found[path] = info.ModTime()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return found, nil
}

// poll periodically rescans and emits the difference.
func (pw *PollingWatcher) poll() {
	ticker := time.NewTicker(pw.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-pw.ctx.Done():
			return

		case <-ticker.C:
			pw.checkChanges()
		}
	}
}

// checkChanges compares the previous scan to a fresh one and emits events.
func (pw *PollingWatcher) checkChanges() {
	current, err := pw.scan()
	if err != nil {
		return
	}

	pw.mu.Lock()
	previous := pw.files
	pw.files = current
	pw.mu.Unlock()

	var ready []Event

	for path, modTime := range current {
		if oldTime, exists := previous[path]; !exists {
			ready = append(ready, Event{Kind: Created, Path: path})
		} else if !oldTime.Equal(modTime) {
			ready = append(ready, Event{Kind: Modified, Path: path})
		}
	}

	for path := range previous {
		if _, exists := current[path]; !exists {
			ready = append(ready, Event{Kind: Deleted, Path: path})
		}
	}

	for _, ev := range ready {
		select {
		case pw.events <- ev:
		case <-pw.ctx.Done():
			return
		}
	}
}
