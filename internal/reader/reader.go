// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reader provides lock-tolerant file reading for the change engine.
package reader

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrFileUnavailable indicates a transient access failure that persisted
// through every retry attempt. The event should be skipped, not fatal.
var ErrFileUnavailable = errors.New("file unavailable after retries")

// ErrFileRead indicates a non-transient read failure (missing file, broken
// symlink, real I/O error). No retry is attempted for these.
var ErrFileRead = errors.New("file read failed")

// =============================================================================
// RETRY POLICY
// =============================================================================

// RetryPolicy bounds how hard ReadLines tries before giving up on a file
// that is locked by another process.
type RetryPolicy struct {
	// MaxAttempts is the total number of open attempts (minimum 1).
	MaxAttempts int

	// Delay is the fixed pause between attempts.
	Delay time.Duration
}

// DefaultRetryPolicy returns the standard policy: 5 attempts, 500ms apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		Delay:       500 * time.Millisecond,
	}
}

// normalized returns the policy with out-of-range values clamped.
func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
	return p
}

// =============================================================================
// FILE READING
// =============================================================================

// readFileFn is swappable in tests to simulate transient access failures.
var readFileFn = os.ReadFile

// ReadLines reads the file at path and returns its content as a slice of
// lines. Permission errors are retried per the policy; any other failure is
// returned immediately. Invalid byte sequences are replaced, never fatal,
// so binary content degrades to opaque lines instead of an error.
func ReadLines(path string, policy RetryPolicy) ([]string, error) {
	policy = policy.normalized()

	var data []byte
	var err error
	for attempt := 1; ; attempt++ {
		data, err = readFileFn(path)
		if err == nil {
			break
		}
		if !os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s: %v", ErrFileRead, path, err)
		}
		if attempt >= policy.MaxAttempts {
			return nil, fmt.Errorf("%w: %s after %d attempts: %v",
				ErrFileUnavailable, path, policy.MaxAttempts, err)
		}
		time.Sleep(policy.Delay)
	}

	return SplitLines(decode(data)), nil
}

// decode converts raw bytes to a string, replacing ill-formed UTF-8
// sequences with U+FFFD. Encoding problems alone never fail a read.
func decode(data []byte) string {
	clean, _, err := transform.Bytes(runes.ReplaceIllFormed(), data)
	if err != nil {
		// ReplaceIllFormed does not error in practice; keep the raw
		// bytes rather than losing the content.
		return string(data)
	}
	return string(clean)
}

// =============================================================================
// LINE SPLITTING
// =============================================================================

// SplitLines splits content into lines with terminators stripped. CRLF is
// normalized to LF first so old and new reads always diff consistently.
// A final trailing newline does not produce an empty last line.
func SplitLines(content string) []string {
	if content == "" {
		return []string{}
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}
