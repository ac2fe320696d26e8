// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"strings"
	"testing"
)

func TestCompute_AllAdded(t *testing.T) {
	r := Compute([]string{}, []string{"line1", "line2", "line3"})

	if r.Added != 3 {
		t.Errorf("Expected 3 additions, got %d", r.Added)
	}
	if r.Removed != 0 {
		t.Errorf("Expected 0 removals, got %d", r.Removed)
	}
	for i, line := range r.Lines {
		if line.Type != LineAdded {
			t.Errorf("Line %d: expected added, got %s", i, line.Type)
		}
	}
}

func TestCompute_AllRemoved(t *testing.T) {
	r := Compute([]string{"line1", "line2", "line3"}, []string{})

	if r.Added != 0 {
		t.Errorf("Expected 0 additions, got %d", r.Added)
	}
	if r.Removed != 3 {
		t.Errorf("Expected 3 removals, got %d", r.Removed)
	}
}

func TestCompute_Modified(t *testing.T) {
	old := []string{"line1", "line2", "line3"}
	new := []string{"line1", "modified", "line3", "line4"}

	r := Compute(old, new)

	if r.Added != 2 {
		t.Errorf("Expected 2 additions, got %d", r.Added)
	}
	if r.Removed != 1 {
		t.Errorf("Expected 1 removal, got %d", r.Removed)
	}
}

func TestCompute_NoChanges(t *testing.T) {
	lines := []string{"line1", "line2", "line3"}

	r := Compute(lines, lines)

	if r.HasChanges() {
		t.Errorf("Expected no changes, got +%d -%d", r.Added, r.Removed)
	}
	for i, line := range r.Lines {
		if line.Type != LineContext {
			t.Errorf("Line %d: expected context, got %s", i, line.Type)
		}
	}
	if len(r.Hunks) != 0 {
		t.Errorf("Expected no hunks for identical input, got %d", len(r.Hunks))
	}
}

func TestCompute_SingleLineChange(t *testing.T) {
	r := Compute([]string{"a", "b"}, []string{"a", "c"})

	if r.Added != 1 || r.Removed != 1 {
		t.Fatalf("Expected +1 -1, got +%d -%d", r.Added, r.Removed)
	}

	// Alignment keeps "a" as context, replaces "b" with "c"
	types := make([]LineType, len(r.Lines))
	for i, line := range r.Lines {
		types[i] = line.Type
	}
	want := []LineType{LineContext, LineRemoved, LineAdded}
	if len(types) != len(want) {
		t.Fatalf("Expected %d lines, got %d", len(want), len(types))
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("Line %d: expected %s, got %s", i, want[i], types[i])
		}
	}
}

func TestCompute_CountsMatchAlignment(t *testing.T) {
	tests := []struct {
		name string
		old  []string
		new  []string
	}{
		{"replace middle", []string{"a", "b", "c"}, []string{"a", "x", "c"}},
		{"append", []string{"a"}, []string{"a", "b", "c"}},
		{"prepend", []string{"z"}, []string{"a", "z"}},
		{"disjoint", []string{"a", "b"}, []string{"x", "y", "z"}},
		{"interleaved", []string{"a", "b", "c", "d"}, []string{"b", "x", "d", "e"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Compute(tt.old, tt.new)

			common := 0
			for _, line := range r.Lines {
				if line.Type == LineContext {
					common++
				}
			}
			if r.Added != len(tt.new)-common {
				t.Errorf("added=%d, want len(new)-common=%d", r.Added, len(tt.new)-common)
			}
			if r.Removed != len(tt.old)-common {
				t.Errorf("removed=%d, want len(old)-common=%d", r.Removed, len(tt.old)-common)
			}
		})
	}
}

func TestApply_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		old  []string
		new  []string
	}{
		{"both empty", []string{}, []string{}},
		{"fresh content", []string{}, []string{"a", "b"}},
		{"content gone", []string{"a", "b"}, []string{}},
		{"identical", []string{"a", "b"}, []string{"a", "b"}},
		{"replace", []string{"a", "b"}, []string{"a", "c"}},
		{"grow and shrink", []string{"1", "2", "3", "4", "5"}, []string{"0", "2", "4", "6"}},
		{"repeated lines", []string{"x", "x", "y", "x"}, []string{"x", "y", "x", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Compute(tt.old, tt.new)
			got := Apply(tt.old, r)
			if len(got) != len(tt.new) {
				t.Fatalf("Apply produced %d lines, want %d (%q)", len(got), len(tt.new), got)
			}
			for i := range got {
				if got[i] != tt.new[i] {
					t.Errorf("Line %d: got %q, want %q", i, got[i], tt.new[i])
				}
			}
		})
	}
}

func TestCompute_Deterministic(t *testing.T) {
	old := []string{"a", "b", "a", "b", "c", "a"}
	new := []string{"b", "a", "c", "b", "a"}

	first := FormatUnified("f.txt", Compute(old, new))
	for i := 0; i < 10; i++ {
		again := FormatUnified("f.txt", Compute(old, new))
		if again != first {
			t.Fatalf("Run %d produced different output:\n%s\nvs\n%s", i, again, first)
		}
	}
}

func TestLineType_String(t *testing.T) {
	tests := []struct {
		lineType LineType
		expected string
	}{
		{LineContext, "context"},
		{LineAdded, "added"},
		{LineRemoved, "removed"},
	}

	for _, tt := range tests {
		if got := tt.lineType.String(); got != tt.expected {
			t.Errorf("Expected %s, got %s", tt.expected, got)
		}
	}
}

func TestLineType_Prefix(t *testing.T) {
	tests := []struct {
		lineType LineType
		expected string
	}{
		{LineContext, " "},
		{LineAdded, "+"},
		{LineRemoved, "-"},
	}

	for _, tt := range tests {
		if got := tt.lineType.Prefix(); got != tt.expected {
			t.Errorf("Expected %q, got %q", tt.expected, got)
		}
	}
}

func TestFormatUnified(t *testing.T) {
	r := Compute(
		[]string{"line1", "line2", "line3"},
		[]string{"line1", "modified", "line3"},
	)
	unified := FormatUnified("test.txt", r)

	if !strings.Contains(unified, "--- a/test.txt") {
		t.Error("Missing old file header")
	}
	if !strings.Contains(unified, "+++ b/test.txt") {
		t.Error("Missing new file header")
	}
	if !strings.Contains(unified, "@@") {
		t.Error("Missing hunk header")
	}
	if !strings.Contains(unified, "-line2") {
		t.Error("Missing removed line")
	}
	if !strings.Contains(unified, "+modified") {
		t.Error("Missing added line")
	}
}

func TestGroupIntoHunks_Context(t *testing.T) {
	// A change deep inside unchanged content gets a bounded context window
	old := []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}
	new := []string{"1", "2", "3", "4", "5", "CHANGED", "7", "8", "9", "10"}

	r := Compute(old, new)

	if len(r.Hunks) != 1 {
		t.Fatalf("Expected 1 hunk, got %d", len(r.Hunks))
	}

	hunk := r.Hunks[0]
	if len(hunk.Lines) >= len(r.Lines) {
		t.Errorf("Hunk should be narrower than the full diff: %d vs %d lines",
			len(hunk.Lines), len(r.Lines))
	}
	if hunk.Lines[0].Type != LineContext {
		t.Error("Hunk should open with leading context")
	}
	if hunk.Lines[len(hunk.Lines)-1].Type != LineContext {
		t.Error("Hunk should close with trailing context")
	}

	var sawRemoved, sawAdded bool
	for _, line := range hunk.Lines {
		if line.Type == LineRemoved && line.Content == "6" {
			sawRemoved = true
		}
		if line.Type == LineAdded && line.Content == "CHANGED" {
			sawAdded = true
		}
	}
	if !sawRemoved || !sawAdded {
		t.Error("Hunk should contain both sides of the change")
	}
}

func TestSummary(t *testing.T) {
	r := Compute([]string{"a", "b"}, []string{"a", "c", "d"})
	if got := r.Summary(); got != "+2 -1" {
		t.Errorf("Expected '+2 -1', got %q", got)
	}
}
