// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/watchlog-tui/internal/changelog"
	"github.com/jeranaias/watchlog-tui/internal/engine"
)

func TestInitWriter_FailureIsNonFatal(t *testing.T) {
	// A root that does not exist makes Init fail
	root := filepath.Join(t.TempDir(), "missing", "deeper")

	var warn bytes.Buffer
	writer := initWriter(root, "", &warn)

	if writer == nil {
		t.Fatal("A failed init must still return a writer for the session")
	}
	if !strings.Contains(warn.String(), "without durable logging") {
		t.Errorf("Expected a single warning, got: %q", warn.String())
	}

	// The degraded session keeps running; each append surfaces its own error
	err := writer.Append(changelog.ChangeRecord{
		Time:    time.Now(),
		Kind:    changelog.KindCreated,
		RelPath: "a.txt",
	})
	if !errors.Is(err, changelog.ErrLogWrite) {
		t.Errorf("Expected ErrLogWrite from the degraded writer, got %v", err)
	}
}

func TestInitWriter_SuccessIsSilent(t *testing.T) {
	var warn bytes.Buffer
	writer := initWriter(t.TempDir(), "", &warn)

	if writer == nil {
		t.Fatal("Expected a writer")
	}
	if warn.Len() != 0 {
		t.Errorf("Successful init must not warn, got: %q", warn.String())
	}
}

func TestHeadlessLine(t *testing.T) {
	n := engine.Notification{
		Time: time.Date(2025, 8, 25, 10, 30, 0, 0, time.UTC),
		Text: "MODIFIED: a.txt (+1 / -1)",
	}

	plain := headlessLine(n, false)
	if plain != "[10:30:00] MODIFIED: a.txt (+1 / -1)" {
		t.Errorf("Unexpected plain line: %q", plain)
	}

	n.IsError = true
	colored := headlessLine(n, true)
	if !strings.Contains(colored, "MODIFIED: a.txt") {
		t.Errorf("Colored line must keep the text: %q", colored)
	}
}
