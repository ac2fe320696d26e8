// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff computes deterministic line-level diffs between file snapshots.
package diff

import (
	"fmt"
	"strings"
)

// =============================================================================
// LINE TYPES
// =============================================================================

// LineType classifies a single line in a diff.
type LineType int

const (
	// LineContext represents unchanged context lines
	LineContext LineType = iota
	// LineAdded represents added lines
	LineAdded
	// LineRemoved represents removed lines
	LineRemoved
)

// String returns the string representation of a line type.
func (t LineType) String() string {
	switch t {
	case LineContext:
		return "context"
	case LineAdded:
		return "added"
	case LineRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Prefix returns the unified-diff prefix character for this line type.
func (t LineType) Prefix() string {
	switch t {
	case LineContext:
		return " "
	case LineAdded:
		return "+"
	case LineRemoved:
		return "-"
	default:
		return " "
	}
}

// =============================================================================
// DIFF LINE
// =============================================================================

// Line represents a single line in a diff.
type Line struct {
	Type    LineType // Added, removed, or context
	Content string   // The actual line content
	OldLine int      // Line number in old snapshot (0 if added)
	NewLine int      // Line number in new snapshot (0 if removed)
}

// =============================================================================
// DIFF HUNK
// =============================================================================

// Hunk represents a contiguous section of changes with surrounding context.
type Hunk struct {
	OldStart int    // Starting line in old snapshot
	OldCount int    // Number of lines in old snapshot
	NewStart int    // Starting line in new snapshot
	NewCount int    // Number of lines in new snapshot
	Lines    []Line // The actual diff lines
}

// =============================================================================
// RESULT
// =============================================================================

// Result is a complete diff between two line snapshots.
type Result struct {
	Added   int    // Number of added lines
	Removed int    // Number of removed lines
	Lines   []Line // Full transformation script, old to new, in order
	Hunks   []Hunk // Lines grouped into hunks with context
}

// HasChanges reports whether the diff contains any added or removed lines.
func (r *Result) HasChanges() bool {
	return r.Added > 0 || r.Removed > 0
}

// Summary returns a short human-readable form like "+3 -1".
func (r *Result) Summary() string {
	return fmt.Sprintf("+%d -%d", r.Added, r.Removed)
}

// =============================================================================
// DIFF COMPUTATION
// =============================================================================

// Compute diffs two line snapshots using an LCS-based alignment. The
// alignment is fully deterministic: identical inputs always produce an
// identical Result, byte for byte.
func Compute(oldLines, newLines []string) *Result {
	result := &Result{}

	result.Lines = computeLineDiff(oldLines, newLines)
	result.Hunks = groupIntoHunks(result.Lines)

	for _, line := range result.Lines {
		switch line.Type {
		case LineAdded:
			result.Added++
		case LineRemoved:
			result.Removed++
		}
	}

	return result
}

// computeLineDiff walks both snapshots against their LCS and emits the
// transformation script.
func computeLineDiff(oldLines, newLines []string) []Line {
	var result []Line

	// Simple case: both empty
	if len(oldLines) == 0 && len(newLines) == 0 {
		return result
	}

	// Simple case: only additions (fresh content)
	if len(oldLines) == 0 {
		for i, line := range newLines {
			result = append(result, Line{
				Type:    LineAdded,
				Content: line,
				OldLine: 0,
				NewLine: i + 1,
			})
		}
		return result
	}

	// Simple case: only deletions (content gone)
	if len(newLines) == 0 {
		for i, line := range oldLines {
			result = append(result, Line{
				Type:    LineRemoved,
				Content: line,
				OldLine: i + 1,
				NewLine: 0,
			})
		}
		return result
	}

	lcs := computeLCS(oldLines, newLines)

	oldIdx := 0
	newIdx := 0
	lcsIdx := 0

	for oldIdx < len(oldLines) || newIdx < len(newLines) {
		if lcsIdx < len(lcs) &&
			oldIdx < len(oldLines) && newIdx < len(newLines) &&
			oldLines[oldIdx] == newLines[newIdx] &&
			oldLines[oldIdx] == lcs[lcsIdx] {
			// Context line (unchanged)
			result = append(result, Line{
				Type:    LineContext,
				Content: oldLines[oldIdx],
				OldLine: oldIdx + 1,
				NewLine: newIdx + 1,
			})
			oldIdx++
			newIdx++
			lcsIdx++
		} else if oldIdx < len(oldLines) && (lcsIdx >= len(lcs) || oldLines[oldIdx] != lcs[lcsIdx]) {
			// Line was removed
			result = append(result, Line{
				Type:    LineRemoved,
				Content: oldLines[oldIdx],
				OldLine: oldIdx + 1,
				NewLine: 0,
			})
			oldIdx++
		} else if newIdx < len(newLines) {
			// Line was added
			result = append(result, Line{
				Type:    LineAdded,
				Content: newLines[newIdx],
				OldLine: 0,
				NewLine: newIdx + 1,
			})
			newIdx++
		}
	}

	return result
}

// computeLCS computes the Longest Common Subsequence of two line slices
// with a DP table. Ties break toward the old side, which keeps the
// backtrack deterministic.
func computeLCS(a, b []string) []string {
	m, n := len(a), len(b)

	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else {
				dp[i][j] = max(dp[i-1][j], dp[i][j-1])
			}
		}
	}

	var lcs []string
	i, j := m, n
	for i > 0 && j > 0 {
		if a[i-1] == b[j-1] {
			lcs = append([]string{a[i-1]}, lcs...)
			i--
			j--
		} else if dp[i-1][j] > dp[i][j-1] {
			i--
		} else {
			j--
		}
	}

	return lcs
}

// =============================================================================
// HUNK GROUPING
// =============================================================================

// contextLines is the number of unchanged lines kept around each change.
const contextLines = 3

// groupIntoHunks groups diff lines into hunks with context.
func groupIntoHunks(diffLines []Line) []Hunk {
	if len(diffLines) == 0 {
		return nil
	}

	var hunks []Hunk
	var currentHunk *Hunk

	for i, line := range diffLines {
		isChange := line.Type != LineContext

		if currentHunk == nil && isChange {
			currentHunk = &Hunk{}

			// Add context before the change
			contextStart := max(0, i-contextLines)
			for j := contextStart; j < i; j++ {
				currentHunk.Lines = append(currentHunk.Lines, diffLines[j])
				if diffLines[j].OldLine > 0 {
					currentHunk.OldCount++
				}
				if diffLines[j].NewLine > 0 {
					currentHunk.NewCount++
				}
			}

			// Start positions come from the first line in the hunk
			if len(currentHunk.Lines) > 0 {
				firstLine := currentHunk.Lines[0]
				if firstLine.OldLine > 0 {
					currentHunk.OldStart = firstLine.OldLine
				} else {
					currentHunk.OldStart = line.OldLine
				}
				if firstLine.NewLine > 0 {
					currentHunk.NewStart = firstLine.NewLine
				} else {
					currentHunk.NewStart = line.NewLine
				}
			} else {
				currentHunk.OldStart = line.OldLine
				currentHunk.NewStart = line.NewLine
			}
		}

		if currentHunk != nil {
			currentHunk.Lines = append(currentHunk.Lines, line)

			if line.OldLine > 0 {
				currentHunk.OldCount++
			}
			if line.NewLine > 0 {
				currentHunk.NewCount++
			}

			// Close the hunk once enough trailing context has been seen
			contextAfter := 0
			for j := i + 1; j < len(diffLines) && j < i+1+contextLines; j++ {
				if diffLines[j].Type != LineContext {
					contextAfter = -1 // More changes coming
					break
				}
				contextAfter++
			}

			if contextAfter >= 0 && (i == len(diffLines)-1 || contextAfter < contextLines) {
				for j := i + 1; j <= i+contextAfter && j < len(diffLines); j++ {
					currentHunk.Lines = append(currentHunk.Lines, diffLines[j])
					if diffLines[j].OldLine > 0 {
						currentHunk.OldCount++
					}
					if diffLines[j].NewLine > 0 {
						currentHunk.NewCount++
					}
				}
				hunks = append(hunks, *currentHunk)
				currentHunk = nil
			}
		}
	}

	if currentHunk != nil {
		hunks = append(hunks, *currentHunk)
	}

	return hunks
}

// =============================================================================
// APPLY
// =============================================================================

// Apply replays a diff's transformation script and returns the new line
// snapshot. For any Result produced by Compute(old, new), Apply(old, r)
// yields exactly new.
func Apply(oldLines []string, r *Result) []string {
	result := make([]string, 0, len(oldLines)+r.Added-r.Removed)
	for _, line := range r.Lines {
		if line.Type == LineContext || line.Type == LineAdded {
			result = append(result, line.Content)
		}
	}
	return result
}

// =============================================================================
// UNIFIED DIFF FORMAT
// =============================================================================

// FormatUnified returns the diff in standard unified diff format.
func FormatUnified(relPath string, r *Result) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("--- a/%s\n", relPath))
	sb.WriteString(fmt.Sprintf("+++ b/%s\n", relPath))

	for _, hunk := range r.Hunks {
		sb.WriteString(fmt.Sprintf("@@ -%d,%d +%d,%d @@\n",
			hunk.OldStart, hunk.OldCount,
			hunk.NewStart, hunk.NewCount))

		for _, line := range hunk.Lines {
			sb.WriteString(line.Type.Prefix())
			sb.WriteString(line.Content)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
