// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/watchlog-tui/internal/changelog"
	"github.com/jeranaias/watchlog-tui/internal/reader"
	"github.com/jeranaias/watchlog-tui/internal/snapshot"
	"github.com/jeranaias/watchlog-tui/internal/watch"
)

// testEngine builds an engine over a temp root with an initialized log and
// a notification recorder. SettleDelay is zero to keep tests fast.
func testEngine(t *testing.T) (*Engine, string, *[]Notification) {
	t.Helper()
	root := t.TempDir()

	writer := changelog.NewWriter(root, "")
	require.NoError(t, writer.Init())

	var feed []Notification
	notify := func(n Notification) { feed = append(feed, n) }

	cfg := Config{Retry: reader.RetryPolicy{MaxAttempts: 1}}
	e := New(root, cfg, snapshot.NewCache(), writer, nil, notify)
	return e, root, &feed
}

func readLog(t *testing.T, e *Engine) string {
	t.Helper()
	data, err := os.ReadFile(e.LogPath())
	require.NoError(t, err)
	return string(data)
}

func countEntries(content string) int {
	return strings.Count(content, "### [")
}

func TestEngine_Created(t *testing.T) {
	e, root, feed := testEngine(t)

	path := filepath.Join(root, "new.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\n"), 0644))

	e.ProcessEvent(watch.Event{Kind: watch.Created, Path: path})

	content := readLog(t, e)
	assert.Contains(t, content, "CREATED: `new.txt`")
	assert.Contains(t, content, "- **Lines Added**: 2")
	assert.Contains(t, content, "- **Lines Removed**: 0")
	assert.NotContains(t, content, "<details>", "Fresh files have nothing to diff against")

	lines, ok := e.Cache().Lookup(path)
	require.True(t, ok, "Cache must hold the new snapshot")
	assert.Equal(t, []string{"a", "b"}, lines)

	require.Len(t, *feed, 1)
	assert.Equal(t, "CREATED: new.txt (+2 / -0)", (*feed)[0].Text)
	assert.False(t, (*feed)[0].IsError)
}

func TestEngine_Modified(t *testing.T) {
	e, root, feed := testEngine(t)

	path := filepath.Join(root, "file.txt")
	e.Cache().Set(path, []string{"a", "b"})
	require.NoError(t, os.WriteFile(path, []byte("a\nc\n"), 0644))

	e.ProcessEvent(watch.Event{Kind: watch.Modified, Path: path})

	content := readLog(t, e)
	assert.Contains(t, content, "MODIFIED: `file.txt`")
	assert.Contains(t, content, "- **Lines Added**: 1")
	assert.Contains(t, content, "- **Lines Removed**: 1")
	assert.Contains(t, content, "```diff")
	assert.Contains(t, content, "-b")
	assert.Contains(t, content, "+c")

	lines, _ := e.Cache().Lookup(path)
	assert.Equal(t, []string{"a", "c"}, lines)

	require.Len(t, *feed, 1)
	assert.Equal(t, "MODIFIED: file.txt (+1 / -1)", (*feed)[0].Text)
}

func TestEngine_NoOpSuppression(t *testing.T) {
	e, root, feed := testEngine(t)

	path := filepath.Join(root, "same.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\n"), 0644))
	e.Cache().Set(path, []string{"a", "b"})

	before := readLog(t, e)
	e.ProcessEvent(watch.Event{Kind: watch.Modified, Path: path})

	assert.Equal(t, before, readLog(t, e), "No-op modifications must not be logged")
	assert.Empty(t, *feed, "No summary for a suppressed event")

	lines, _ := e.Cache().Lookup(path)
	assert.Equal(t, []string{"a", "b"}, lines)
}

func TestEngine_CreatedThenIdenticalModify_SingleRecord(t *testing.T) {
	e, root, _ := testEngine(t)

	path := filepath.Join(root, "once.txt")
	require.NoError(t, os.WriteFile(path, []byte("x\ny\n"), 0644))

	e.ProcessEvent(watch.Event{Kind: watch.Created, Path: path})
	e.ProcessEvent(watch.Event{Kind: watch.Modified, Path: path})

	assert.Equal(t, 1, countEntries(readLog(t, e)),
		"Create followed by a no-change modify yields exactly one record")
}

func TestEngine_Deleted(t *testing.T) {
	e, root, feed := testEngine(t)

	path := filepath.Join(root, "gone.txt")
	e.Cache().Set(path, []string{"old", "content"})

	e.ProcessEvent(watch.Event{Kind: watch.Deleted, Path: path})

	content := readLog(t, e)
	assert.Contains(t, content, "DELETED: `gone.txt`")
	assert.NotContains(t, content, "Lines Added")

	_, ok := e.Cache().Lookup(path)
	assert.False(t, ok, "Deleted path must leave the cache")

	require.Len(t, *feed, 1)
	assert.Equal(t, "DELETED: gone.txt", (*feed)[0].Text)
}

func TestEngine_DeleteThenCreate_FreshBaseline(t *testing.T) {
	e, root, _ := testEngine(t)

	path := filepath.Join(root, "reborn.txt")
	e.Cache().Set(path, []string{"ancient", "text", "here"})

	e.ProcessEvent(watch.Event{Kind: watch.Deleted, Path: path})

	require.NoError(t, os.WriteFile(path, []byte("new\n"), 0644))
	e.ProcessEvent(watch.Event{Kind: watch.Created, Path: path})

	content := readLog(t, e)
	// The create is a fresh baseline: full line count, no diff against
	// the pre-deletion content
	assert.Contains(t, content, "CREATED: `reborn.txt`")
	assert.Contains(t, content, "- **Lines Added**: 1")
	assert.NotContains(t, content, "-ancient")

	lines, _ := e.Cache().Lookup(path)
	assert.Equal(t, []string{"new"}, lines)
}

func TestEngine_LogWriteFailurePreservesCache(t *testing.T) {
	root := t.TempDir()

	// A log path inside a directory that does not exist makes every
	// append fail while the watched files stay readable
	writer := changelog.NewWriter(root, filepath.Join("missing-dir", "log.md"))

	var feed []Notification
	cfg := Config{Retry: reader.RetryPolicy{MaxAttempts: 1}}
	e := New(root, cfg, snapshot.NewCache(), writer, nil, func(n Notification) {
		feed = append(feed, n)
	})

	path := filepath.Join(root, "file.txt")
	e.Cache().Set(path, []string{"a", "b"})
	require.NoError(t, os.WriteFile(path, []byte("a\nc\n"), 0644))

	e.ProcessEvent(watch.Event{Kind: watch.Modified, Path: path})

	// Cache stays at its pre-event value so it never disagrees with the log
	lines, ok := e.Cache().Lookup(path)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, lines)

	require.Len(t, feed, 1)
	assert.True(t, feed[0].IsError)
	assert.Contains(t, feed[0].Text, "Failed to write log")
}

func TestEngine_IgnoresLogFileEvents(t *testing.T) {
	e, _, feed := testEngine(t)

	before := readLog(t, e)
	e.ProcessEvent(watch.Event{Kind: watch.Modified, Path: e.LogPath()})

	assert.Equal(t, before, readLog(t, e), "Events about the log itself must not loop")
	assert.Empty(t, *feed)
}

func TestEngine_IgnoresDirectoryEvents(t *testing.T) {
	e, root, feed := testEngine(t)

	before := readLog(t, e)
	e.ProcessEvent(watch.Event{Kind: watch.Created, Path: filepath.Join(root, "subdir"), IsDir: true})

	assert.Equal(t, before, readLog(t, e))
	assert.Empty(t, *feed)
}

func TestEngine_UnreadableFileReported(t *testing.T) {
	e, root, feed := testEngine(t)

	before := readLog(t, e)
	e.ProcessEvent(watch.Event{Kind: watch.Created, Path: filepath.Join(root, "never-existed.txt")})

	assert.Equal(t, before, readLog(t, e), "Failed reads must not produce records")
	require.Len(t, *feed, 1)
	assert.True(t, (*feed)[0].IsError)
}

func TestEngine_ModifiedWithoutBaselineTreatsAllAsAdded(t *testing.T) {
	e, root, _ := testEngine(t)

	path := filepath.Join(root, "unseen.txt")
	require.NoError(t, os.WriteFile(path, []byte("x\ny\n"), 0644))

	e.ProcessEvent(watch.Event{Kind: watch.Modified, Path: path})

	content := readLog(t, e)
	assert.Contains(t, content, "MODIFIED: `unseen.txt`")
	assert.Contains(t, content, "- **Lines Added**: 2")
	assert.Contains(t, content, "- **Lines Removed**: 0")
}
