// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine orchestrates one change event at a time: settle, read,
// classify, log, sync the snapshot cache, notify.
package engine

import (
	"errors"
	"log"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/watchlog-tui/internal/changelog"
	"github.com/jeranaias/watchlog-tui/internal/diff"
	"github.com/jeranaias/watchlog-tui/internal/history"
	"github.com/jeranaias/watchlog-tui/internal/reader"
	"github.com/jeranaias/watchlog-tui/internal/snapshot"
	"github.com/jeranaias/watchlog-tui/internal/watch"
)

// =============================================================================
// NOTIFICATIONS
// =============================================================================

// Notification is one line for the observer feed. Diff carries the unified
// diff text for modifications, so observers can show detail without
// re-reading the log.
type Notification struct {
	Time    time.Time
	Text    string
	Diff    string
	IsError bool
}

// Notifier receives feed notifications. A nil notifier drops everything;
// the engine never depends on anyone listening.
type Notifier func(n Notification)

// =============================================================================
// CONFIG
// =============================================================================

// Config tunes the engine.
type Config struct {
	// SettleDelay is the pause between receiving an event and reading the
	// file, giving editors time to finish multi-step saves.
	SettleDelay time.Duration

	// Retry bounds the lock-tolerant reader.
	Retry reader.RetryPolicy

	// NotifyPerSec caps feed notifications per second (burst 2x). Excess
	// summaries are dropped from the feed only; the log itself is never
	// rate limited. Zero disables the cap.
	NotifyPerSec float64
}

// DefaultConfig returns the standard engine tuning.
func DefaultConfig() Config {
	return Config{
		SettleDelay:  100 * time.Millisecond,
		Retry:        reader.DefaultRetryPolicy(),
		NotifyPerSec: 0,
	}
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine owns the snapshot cache and processes events strictly one at a
// time, so the cache and the append-only log never race.
type Engine struct {
	root   string
	cfg    Config
	cache  *snapshot.Cache
	writer *changelog.Writer
	store  *history.Store // optional, may be nil
	notify Notifier

	limiter *rate.Limiter
	done    chan struct{}
}

// New creates an engine for root. writer must be non-nil; store and notify
// may be nil.
func New(root string, cfg Config, cache *snapshot.Cache, writer *changelog.Writer, store *history.Store, notify Notifier) *Engine {
	var limiter *rate.Limiter
	if cfg.NotifyPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.NotifyPerSec), int(2*cfg.NotifyPerSec))
	}

	return &Engine{
		root:    root,
		cfg:     cfg,
		cache:   cache,
		writer:  writer,
		store:   store,
		notify:  notify,
		limiter: limiter,
		done:    make(chan struct{}),
	}
}

// Cache exposes the engine's snapshot cache for inspection.
func (e *Engine) Cache() *snapshot.Cache {
	return e.cache
}

// LogPath returns the path of the change log this engine writes.
func (e *Engine) LogPath() string {
	return e.writer.Path()
}

// Run drains the event channel until it closes or Stop is called. It is
// the single consumer: every event runs to completion before the next one
// starts, which is what keeps the cache invariant lock-free.
func (e *Engine) Run(events <-chan watch.Event) {
	for {
		select {
		case <-e.done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			e.ProcessEvent(ev)
		}
	}
}

// Stop makes Run return after the in-flight event completes. Events are
// never canceled mid-flight.
func (e *Engine) Stop() {
	select {
	case <-e.done:
	default:
		close(e.done)
	}
}

// =============================================================================
// EVENT PROCESSING
// =============================================================================

// ProcessEvent runs one raw event through the full state flow. Exported so
// the TUI-free paths and tests can drive the engine synchronously.
func (e *Engine) ProcessEvent(ev watch.Event) {
	// RECEIVED: guards come first. Directories carry no diffable content,
	// and logging a change to the log itself would loop forever.
	if ev.IsDir {
		return
	}
	if filepath.Clean(ev.Path) == filepath.Clean(e.writer.Path()) {
		return
	}

	switch ev.Kind {
	case watch.Created:
		e.handleCreated(ev.Path)
	case watch.Modified:
		e.handleModified(ev.Path)
	case watch.Deleted:
		e.handleDeleted(ev.Path)
	}
}

// handleCreated reads the fresh file and logs it with no diff block;
// a new file has nothing to diff against.
func (e *Engine) handleCreated(path string) {
	e.settle()

	lines, err := reader.ReadLines(path, e.cfg.Retry)
	if err != nil {
		e.reportReadError(path, err)
		return
	}

	rec := changelog.ChangeRecord{
		Time:    time.Now(),
		Kind:    changelog.KindCreated,
		RelPath: e.relPath(path),
		Added:   len(lines),
		Removed: 0,
	}

	if !e.commit(rec) {
		return
	}
	e.cache.Set(path, lines)
	e.emitSummary(rec)
}

// handleModified diffs the new content against the cached snapshot.
func (e *Engine) handleModified(path string) {
	e.settle()

	lines, err := reader.ReadLines(path, e.cfg.Retry)
	if err != nil {
		e.reportReadError(path, err)
		return
	}

	old := e.cache.Get(path)
	d := diff.Compute(old, lines)

	// No-op suppression: nothing changed, nothing logged, cache untouched
	if !d.HasChanges() {
		return
	}

	rec := changelog.ChangeRecord{
		Time:    time.Now(),
		Kind:    changelog.KindModified,
		RelPath: e.relPath(path),
		Added:   d.Added,
		Removed: d.Removed,
		Diff:    d,
	}

	if !e.commit(rec) {
		return
	}
	e.cache.Set(path, lines)
	e.emitSummary(rec)
}

// handleDeleted logs the disappearance; there is no content left to read.
func (e *Engine) handleDeleted(path string) {
	rec := changelog.ChangeRecord{
		Time:    time.Now(),
		Kind:    changelog.KindDeleted,
		RelPath: e.relPath(path),
	}

	if !e.commit(rec) {
		return
	}
	e.cache.Remove(path)
	e.emitSummary(rec)
}

// =============================================================================
// COMMIT AND REPORTING
// =============================================================================

// commit appends the record to the log and, on success, to the history
// index. A log failure means the cache must stay at its pre-event value so
// cache and log keep agreeing on last known state; the caller skips
// CACHE-SYNC when commit returns false.
func (e *Engine) commit(rec changelog.ChangeRecord) bool {
	if err := e.writer.Append(rec); err != nil {
		e.send(Notification{
			Time:    time.Now(),
			Text:    "Failed to write log: " + err.Error(),
			IsError: true,
		})
		return false
	}

	if e.store != nil {
		if err := e.store.Record(e.writer.Session(), e.root, rec); err != nil {
			// The markdown log already has the entry; history is an index,
			// so a failure here is reported but does not fail the event
			e.send(Notification{
				Time:    time.Now(),
				Text:    "History index update failed: " + err.Error(),
				IsError: true,
			})
		}
	}

	return true
}

// settle pauses briefly before reading so editors can finish writing.
func (e *Engine) settle() {
	if e.cfg.SettleDelay > 0 {
		time.Sleep(e.cfg.SettleDelay)
	}
}

// relPath converts an absolute path into its log-friendly relative form.
func (e *Engine) relPath(path string) string {
	rel, err := filepath.Rel(e.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// reportReadError classifies a read failure for the feed.
func (e *Engine) reportReadError(path string, err error) {
	text := "Error reading " + e.relPath(path) + ": " + err.Error()
	if errors.Is(err, reader.ErrFileUnavailable) {
		text = "Skipped locked file " + e.relPath(path) + ": " + err.Error()
	}
	e.send(Notification{Time: time.Now(), Text: text, IsError: true})
}

// emitSummary sends the one-line DONE summary, subject to flood control.
func (e *Engine) emitSummary(rec changelog.ChangeRecord) {
	if e.limiter != nil && !e.limiter.Allow() {
		// Feed flood control only; the record is already on disk
		log.Printf("WARNING: notification rate exceeded, dropped summary for %s", rec.RelPath)
		return
	}

	var diffText string
	if rec.Diff != nil && rec.Diff.HasChanges() {
		diffText = diff.FormatUnified(rec.RelPath, rec.Diff)
	}
	e.send(Notification{Time: rec.Time, Text: rec.Summary(), Diff: diffText})
}

// send delivers a notification if an observer is attached.
func (e *Engine) send(n Notification) {
	if e.notify != nil {
		e.notify(n)
	}
}
