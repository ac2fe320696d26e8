// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package changelog appends structured change records to the durable
// per-directory change log.
package changelog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/watchlog-tui/internal/diff"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrLogWrite indicates the log file could not be appended to. The caller
// must leave its snapshot cache untouched so cache and log stay agreed.
var ErrLogWrite = errors.New("changelog write failed")

// ErrInit indicates the log file could not be created or opened at session
// start. The session continues without durable logging.
var ErrInit = errors.New("changelog init failed")

// =============================================================================
// CHANGE RECORD
// =============================================================================

// Kind classifies a change event.
type Kind string

const (
	KindCreated  Kind = "CREATED"
	KindModified Kind = "MODIFIED"
	KindDeleted  Kind = "DELETED"
)

// ChangeRecord is one logged change. It is immutable once constructed:
// built, appended once, never touched again.
type ChangeRecord struct {
	Time    time.Time    // When the change was classified
	Kind    Kind         // CREATED, MODIFIED, or DELETED
	RelPath string       // Path relative to the watched root
	Added   int          // Lines added
	Removed int          // Lines removed
	Diff    *diff.Result // Line-level diff, nil for created/deleted
}

// Summary returns the one-line feed form of the record.
func (r ChangeRecord) Summary() string {
	if r.Kind == KindDeleted {
		return fmt.Sprintf("%s: %s", r.Kind, r.RelPath)
	}
	return fmt.Sprintf("%s: %s (+%d / -%d)", r.Kind, r.RelPath, r.Added, r.Removed)
}

// =============================================================================
// WRITER
// =============================================================================

// DefaultLogFileName is the change log kept inside each watched root.
const DefaultLogFileName = "CHANGELOG_AUTO.md"

// timeFormat is the timestamp layout used throughout the log.
const timeFormat = "2006-01-02 15:04:05"

// Writer appends change records to the log file of one watched root.
//
// The file is opened, appended, and closed on every write. No handle is
// held across events, so the log can be inspected mid-session and a crash
// corrupts at most the trailing entry.
type Writer struct {
	root    string
	path    string
	session string
}

// NewWriter creates a writer for the log file inside root. An empty
// fileName selects DefaultLogFileName.
func NewWriter(root, fileName string) *Writer {
	if fileName == "" {
		fileName = DefaultLogFileName
	}
	return &Writer{
		root:    root,
		path:    filepath.Join(root, fileName),
		session: uuid.NewString(),
	}
}

// Path returns the absolute path of the log file. The engine uses this for
// its self-exclusion guard.
func (w *Writer) Path() string {
	return w.path
}

// Session returns the unique ID of this watch session.
func (w *Writer) Session() string {
	return w.session
}

// Init prepares the log file for this session. A missing file gets a
// header; an existing one gets a session delimiter appended, never
// truncated — history across runs is preserved.
func (w *Writer) Init() error {
	now := time.Now().Format(timeFormat)

	if _, err := os.Stat(w.path); os.IsNotExist(err) {
		header := fmt.Sprintf("# Change Log\nStarted watching at: %s\n", now)
		if err := w.appendRaw(header); err != nil {
			return fmt.Errorf("%w: %v", ErrInit, err)
		}
		return nil
	}

	delimiter := fmt.Sprintf("\n---\n\n## Session Start: %s (%s)\n", now, w.session)
	if err := w.appendRaw(delimiter); err != nil {
		return fmt.Errorf("%w: %v", ErrInit, err)
	}
	return nil
}

// Append writes one change record to the log. The entry is formatted fully
// in memory and written with a single call, so earlier entries can never be
// damaged by a failure here.
func (w *Writer) Append(rec ChangeRecord) error {
	if err := w.appendRaw(Format(rec)); err != nil {
		return fmt.Errorf("%w: %v", ErrLogWrite, err)
	}
	return nil
}

// appendRaw opens the log in append mode, writes s, and closes it.
func (w *Writer) appendRaw(s string) error {
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, writeErr := f.WriteString(s)
	closeErr := f.Close()
	if writeErr != nil {
		return writeErr
	}
	return closeErr
}

// =============================================================================
// FORMATTING
// =============================================================================

// Format renders a record as its markdown log entry.
func Format(rec ChangeRecord) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("\n### [%s] %s: `%s`\n",
		rec.Time.Format(timeFormat), rec.Kind, rec.RelPath))

	if rec.Kind != KindDeleted {
		sb.WriteString(fmt.Sprintf("- **Lines Added**: %d\n", rec.Added))
		sb.WriteString(fmt.Sprintf("- **Lines Removed**: %d\n", rec.Removed))
	}

	if rec.Diff != nil && rec.Diff.HasChanges() {
		sb.WriteString("\n<details>\n<summary>View Changes</summary>\n\n")
		sb.WriteString("```diff\n")
		sb.WriteString(diff.FormatUnified(rec.RelPath, rec.Diff))
		sb.WriteString("```\n")
		sb.WriteString("\n</details>\n")
	}

	return sb.String()
}
