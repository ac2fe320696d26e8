// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package snapshot holds the last-observed line content of watched files.
package snapshot

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/jeranaias/watchlog-tui/internal/reader"
)

// =============================================================================
// CACHE
// =============================================================================

// Cache maps absolute file paths to their last-observed line snapshot.
//
// The cache has no eviction: it grows for the lifetime of one watch session,
// which is bounded by the watched tree. It is not synchronized; the change
// engine owns it and mutates it from a single goroutine only.
type Cache struct {
	files map[string][]string
}

// NewCache creates an empty snapshot cache.
func NewCache() *Cache {
	return &Cache{
		files: make(map[string][]string),
	}
}

// Lookup returns the cached snapshot for path and whether one exists.
// The presence flag distinguishes "never seen" from "seen and empty".
func (c *Cache) Lookup(path string) ([]string, bool) {
	lines, ok := c.files[path]
	return lines, ok
}

// Get returns the cached snapshot for path, or an empty slice if absent.
func (c *Cache) Get(path string) []string {
	if lines, ok := c.files[path]; ok {
		return lines
	}
	return []string{}
}

// Set stores the snapshot for path, replacing any previous one.
func (c *Cache) Set(path string, lines []string) {
	c.files[path] = lines
}

// Remove deletes the snapshot for path, if present.
func (c *Cache) Remove(path string) {
	delete(c.files, path)
}

// Len returns the number of cached snapshots.
func (c *Cache) Len() int {
	return len(c.files)
}

// Paths returns all cached paths in sorted order.
func (c *Cache) Paths() []string {
	paths := make([]string, 0, len(c.files))
	for p := range c.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// =============================================================================
// BASELINE SCAN
// =============================================================================

// LoadBaseline walks the tree under root once and caches every readable
// file, establishing the diff baseline for the session. The change log file
// and ignored directories are skipped. Each file gets a single read attempt;
// unreadable files are reported through report (if non-nil) and skipped.
func (c *Cache) LoadBaseline(root, logPath string, shouldIgnore func(name string) bool, report func(path string, err error)) error {
	single := reader.RetryPolicy{MaxAttempts: 1}

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}

		if info.IsDir() {
			if shouldIgnore != nil && path != root && shouldIgnore(filepath.Base(path)) {
				return filepath.SkipDir
			}
			return nil
		}

		if path == logPath {
			return nil
		}

		lines, err := reader.ReadLines(path, single)
		if err != nil {
			if report != nil {
				report(path, err)
			}
			return nil
		}

		c.files[path] = lines
		return nil
	})
}
