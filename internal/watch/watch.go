// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package watch delivers file-system change events for a directory tree.
//
// The fsnotify-backed watcher is preferred; a polling watcher is the
// fallback for filesystems where inotify is unavailable. Both coalesce
// rapid repeated events per path inside a debounce window, so one editor
// save shows up as one event downstream.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// EVENTS
// =============================================================================

// Kind classifies a raw file-system event.
type Kind int

const (
	// Created indicates a new file or directory appeared
	Created Kind = iota
	// Modified indicates file content changed
	Modified
	// Deleted indicates a file or directory went away (renames included)
	Deleted
)

// String returns the string representation of an event kind.
func (k Kind) String() string {
	switch k {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Event is one coalesced file-system change.
type Event struct {
	Kind  Kind
	Path  string // Absolute path
	IsDir bool
}

// =============================================================================
// OPTIONS
// =============================================================================

// DefaultIgnores are directory names skipped in every watch session.
var DefaultIgnores = []string{
	".git", ".svn", ".hg", "node_modules", "__pycache__", ".idea", ".vscode",
}

// Options configures a watcher.
type Options struct {
	// Debounce is the coalescing window per path (default 100ms).
	Debounce time.Duration

	// PollInterval is the scan period for the polling fallback (default 5s).
	PollInterval time.Duration

	// Ignore lists directory names to skip. Nil selects DefaultIgnores.
	Ignore []string
}

func (o Options) withDefaults() Options {
	if o.Debounce <= 0 {
		o.Debounce = 100 * time.Millisecond
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 5 * time.Second
	}
	if o.Ignore == nil {
		o.Ignore = DefaultIgnores
	}
	return o
}

// ignoreSet answers "should this directory name be skipped".
type ignoreSet map[string]struct{}

func newIgnoreSet(names []string) ignoreSet {
	s := make(ignoreSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s ignoreSet) has(name string) bool {
	_, ok := s[name]
	return ok
}

// pathIgnored reports whether any component of path below root is ignored.
func (s ignoreSet) pathIgnored(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if s.has(part) {
			return true
		}
	}
	return false
}

// =============================================================================
// COALESCING
// =============================================================================

// mergeKinds folds a newly observed kind into a pending one. A delete
// followed by a quick recreate collapses to Modified so an editor's
// remove-and-rename save cycle reads as one content change.
func mergeKinds(pending, next Kind) Kind {
	if next == Deleted {
		return Deleted
	}
	switch pending {
	case Created:
		return Created
	case Deleted:
		return Modified
	default:
		return Modified
	}
}

// pendingChange is one path awaiting its debounce window.
type pendingChange struct {
	kind  Kind
	isDir bool
	at    time.Time
}

// =============================================================================
// WATCHER INTERFACE
// =============================================================================

// Watcher is the common surface of the fsnotify and polling watchers.
type Watcher interface {
	// Start begins watching and feeding the event channel
	Start() error

	// Events returns the coalesced event stream
	Events() <-chan Event

	// Close stops watching and releases resources
	Close() error
}

// New returns a watcher for root, preferring fsnotify and falling back to
// polling when the platform watcher cannot start.
func New(root string, opts Options) (Watcher, error) {
	fw, err := NewFsnotifyWatcher(root, opts)
	if err == nil {
		if err := fw.Start(); err == nil {
			return fw, nil
		}
		fw.Close()
	}

	pw := NewPollingWatcher(root, opts)
	if err := pw.Start(); err != nil {
		return nil, err
	}
	return pw, nil
}

// =============================================================================
// FSNOTIFY WATCHER
// =============================================================================

// FsnotifyWatcher watches a tree with fsnotify, debouncing per path.
type FsnotifyWatcher struct {
	root    string
	opts    Options
	ignores ignoreSet

	watcher *fsnotify.Watcher
	events  chan Event

	mu      sync.Mutex
	pending map[string]pendingChange

	ctx    context.Context
	cancel context.CancelFunc
}

// NewFsnotifyWatcher creates an fsnotify-based watcher for root.
func NewFsnotifyWatcher(root string, opts Options) (*FsnotifyWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	return &FsnotifyWatcher{
		root:    root,
		opts:    opts,
		ignores: newIgnoreSet(opts.Ignore),
		watcher: watcher,
		events:  make(chan Event, 256),
		pending: make(map[string]pendingChange),
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Start registers the tree and spawns the event and flush goroutines.
func (fw *FsnotifyWatcher) Start() error {
	if err := fw.addRecursive(fw.root); err != nil {
		return err
	}

	go fw.processEvents()
	go fw.flushPending()

	return nil
}

// Events returns the coalesced event stream.
func (fw *FsnotifyWatcher) Events() <-chan Event {
	return fw.events
}

// Close stops watching and closes the event channel.
func (fw *FsnotifyWatcher) Close() error {
	fw.cancel()
	if fw.watcher != nil {
		return fw.watcher.Close()
	}
	return nil
}

// addRecursive adds dir and all its subdirectories to the watch list.
func (fw *FsnotifyWatcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}

		if !info.IsDir() {
			return nil
		}

		if path != fw.root && fw.ignores.has(filepath.Base(path)) {
			return filepath.SkipDir
		}

		// Non-fatal; a vanished directory just stays unwatched
		_ = fw.watcher.Add(path)
		return nil
	})
}

// processEvents folds raw fsnotify events into the pending map.
func (fw *FsnotifyWatcher) processEvents() {
	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleRaw(event)

		case _, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the polling fallback exists
			// for platforms where they are persistent
		}
	}
}

// handleRaw maps one fsnotify event into the pending map.
func (fw *FsnotifyWatcher) handleRaw(event fsnotify.Event) {
	path := event.Name
	if fw.ignores.pathIgnored(fw.root, path) {
		return
	}

	var kind Kind
	isDir := false

	switch {
	case event.Op&fsnotify.Create != 0:
		kind = Created
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			isDir = true
			// New directories join the watch list immediately
			_ = fw.addRecursive(path)
		}
	case event.Op&fsnotify.Write != 0:
		kind = Modified
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		// A rename surfaces as a delete of the old name
		kind = Deleted
	default:
		return // Chmod and friends carry no content change
	}

	fw.mu.Lock()
	if prev, ok := fw.pending[path]; ok {
		fw.pending[path] = pendingChange{
			kind:  mergeKinds(prev.kind, kind),
			isDir: prev.isDir || isDir,
			at:    time.Now(),
		}
	} else {
		fw.pending[path] = pendingChange{kind: kind, isDir: isDir, at: time.Now()}
	}
	fw.mu.Unlock()
}

// flushPending emits pending changes once their debounce window closes.
func (fw *FsnotifyWatcher) flushPending() {
	tick := fw.opts.Debounce / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()

			fw.mu.Lock()
			var ready []Event
			for path, change := range fw.pending {
				if now.Sub(change.at) >= fw.opts.Debounce {
					ready = append(ready, Event{Kind: change.kind, Path: path, IsDir: change.isDir})
					delete(fw.pending, path)
				}
			}
			fw.mu.Unlock()

			for _, ev := range ready {
				select {
				case fw.events <- ev:
				case <-fw.ctx.Done():
					return
				}
			}
		}
	}
}
