// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// ARG PARSER TESTS
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	testCases := []struct {
		name       string
		args       []string
		subcommand string
		flags      map[string]string
		boolFlags  map[string]bool
	}{
		{
			name:       "subcommand with flags",
			args:       []string{"show", "--limit", "50", "--json"},
			subcommand: "show",
			flags:      map[string]string{"limit": "50"},
			boolFlags:  map[string]bool{"json": true},
		},
		{
			name:       "equals format",
			args:       []string{"--path=main.go", "--since=24h"},
			subcommand: "",
			flags:      map[string]string{"path": "main.go", "since": "24h"},
		},
		{
			name:       "explicit boolean",
			args:       []string{"--json=false"},
			boolFlags:  map[string]bool{"json": false},
		},
		{
			name:       "short flags",
			args:       []string{"-p", "src", "-r"},
			flags:      map[string]string{"p": "src"},
			boolFlags:  map[string]bool{"r": true},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			parser := NewArgParser(tc.args)

			if parser.Subcommand() != tc.subcommand {
				t.Errorf("Subcommand = %q, want %q", parser.Subcommand(), tc.subcommand)
			}
			for name, want := range tc.flags {
				if got := parser.Flag(name); got != want {
					t.Errorf("Flag(%q) = %q, want %q", name, got, want)
				}
			}
			for name, want := range tc.boolFlags {
				if got := parser.BoolFlag(name); got != want {
					t.Errorf("BoolFlag(%q) = %v, want %v", name, got, want)
				}
			}
		})
	}
}

func TestArgParser_EmptyArgs(t *testing.T) {
	parser := NewArgParser([]string{})
	if parser.Subcommand() != "" {
		t.Errorf("Expected empty subcommand, got %q", parser.Subcommand())
	}
	if parser.PositionalCount() != 0 {
		t.Errorf("Expected 0 positionals, got %d", parser.PositionalCount())
	}
}

func TestArgParser_FlagIntOrDefault(t *testing.T) {
	parser := NewArgParser([]string{"--limit", "25", "--bad", "abc"})

	if got := parser.FlagIntOrDefault("limit", 50); got != 25 {
		t.Errorf("FlagIntOrDefault(limit) = %d, want 25", got)
	}
	if got := parser.FlagIntOrDefault("bad", 50); got != 50 {
		t.Errorf("FlagIntOrDefault(bad) = %d, want default 50", got)
	}
	if got := parser.FlagIntOrDefault("missing", 7); got != 7 {
		t.Errorf("FlagIntOrDefault(missing) = %d, want default 7", got)
	}
}

func TestArgParser_HasFlag(t *testing.T) {
	parser := NewArgParser([]string{"--path", "x", "--json"})

	if !parser.HasFlag("path") || !parser.HasFlag("json") {
		t.Error("HasFlag should find both string and bool flags")
	}
	if parser.HasFlag("missing") {
		t.Error("HasFlag found a flag that was never passed")
	}
}

func TestArgParser_FlagOrDefault(t *testing.T) {
	parser := NewArgParser([]string{"--kind", "deleted"})

	if got := parser.FlagOrDefault("kind", "any"); got != "deleted" {
		t.Errorf("FlagOrDefault = %q, want deleted", got)
	}
	if got := parser.FlagOrDefault("path", "fallback"); got != "fallback" {
		t.Errorf("FlagOrDefault = %q, want fallback", got)
	}
}

// =============================================================================
// PARSE INTEGRATION TESTS
// =============================================================================

func TestParse_Integration(t *testing.T) {
	testCases := []struct {
		name    string
		argv    []string
		cmd     Command
		root    string
		quiet   bool
		verbose bool
		noTUI   bool
		json    bool
		subcmd  string
	}{
		{name: "bare", argv: []string{"watchlog"}, cmd: CmdWatch},
		{name: "watch with dir", argv: []string{"watchlog", "watch", "/tmp"}, cmd: CmdWatch, root: "/tmp"},
		{name: "implicit dir", argv: []string{"watchlog", "/tmp"}, cmd: CmdWatch, root: "/tmp"},
		{name: "no-tui flag", argv: []string{"watchlog", "--no-tui", "."}, cmd: CmdWatch, root: ".", noTUI: true},
		{name: "log-file value is not the root", argv: []string{"watchlog", "watch", "--log-file", "custom.md"}, cmd: CmdWatch},
		{name: "log-file with dir", argv: []string{"watchlog", "watch", "--log-file", "custom.md", "/tmp"}, cmd: CmdWatch, root: "/tmp"},
		{name: "log", argv: []string{"watchlog", "log", "/tmp"}, cmd: CmdLog, root: "/tmp"},
		{name: "history", argv: []string{"watchlog", "history", "--kind", "deleted"}, cmd: CmdHistory},
		{name: "history json", argv: []string{"watchlog", "--json", "history"}, cmd: CmdHistory, json: true},
		{name: "config show", argv: []string{"watchlog", "config", "show"}, cmd: CmdConfig, subcmd: "show"},
		{name: "version", argv: []string{"watchlog", "version"}, cmd: CmdVersion},
		{name: "version long flag", argv: []string{"watchlog", "--version"}, cmd: CmdVersion},
		{name: "short v means verbose", argv: []string{"watchlog", "-v", "/tmp"}, cmd: CmdWatch, root: "/tmp", verbose: true},
		{name: "help", argv: []string{"watchlog", "--help"}, cmd: CmdHelp},
		{name: "quiet watch", argv: []string{"watchlog", "-q", "w", "/tmp"}, cmd: CmdWatch, root: "/tmp", quiet: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			oldArgs := os.Args
			os.Args = tc.argv
			defer func() { os.Args = oldArgs }()

			cmd, args := Parse()

			if cmd != tc.cmd {
				t.Errorf("Parse() command = %d, want %d", cmd, tc.cmd)
			}
			if args.Root != tc.root {
				t.Errorf("Root = %q, want %q", args.Root, tc.root)
			}
			if args.Quiet != tc.quiet {
				t.Errorf("Quiet = %v, want %v", args.Quiet, tc.quiet)
			}
			if args.Verbose != tc.verbose {
				t.Errorf("Verbose = %v, want %v", args.Verbose, tc.verbose)
			}
			if args.NoTUI != tc.noTUI {
				t.Errorf("NoTUI = %v, want %v", args.NoTUI, tc.noTUI)
			}
			if args.JSON != tc.json {
				t.Errorf("JSON = %v, want %v", args.JSON, tc.json)
			}
			if args.Subcommand != tc.subcmd {
				t.Errorf("Subcommand = %q, want %q", args.Subcommand, tc.subcmd)
			}
		})
	}
}

func TestParseWatchArgs_FlagValuesSkipped(t *testing.T) {
	testCases := []struct {
		name      string
		remaining []string
		root      string
	}{
		{"flag value only", []string{"--log-file", "custom.md"}, ""},
		{"flag then dir", []string{"--log-file", "custom.md", "/tmp"}, "/tmp"},
		{"dir then flag", []string{"/tmp", "--log-file", "custom.md"}, "/tmp"},
		{"equals form keeps dir", []string{"--log-file=custom.md", "/tmp"}, "/tmp"},
		{"bare dir", []string{"/tmp"}, "/tmp"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var args Args
			parseWatchArgs(&args, tc.remaining)
			if args.Root != tc.root {
				t.Errorf("Root = %q, want %q", args.Root, tc.root)
			}
		})
	}
}

// =============================================================================
// JSON ENVELOPE TESTS
// =============================================================================

func TestJSONErrorResponse(t *testing.T) {
	resp := NewJSONErrorResponse("history", os.ErrPermission)

	if resp.Success {
		t.Error("Error responses must report success=false")
	}
	if resp.Error == nil || *resp.Error != os.ErrPermission.Error() {
		t.Errorf("Error = %v, want %q", resp.Error, os.ErrPermission.Error())
	}
	if resp.Command != "history" {
		t.Errorf("Command = %q, want history", resp.Command)
	}

	out := resp.String()
	for _, want := range []string{`"success": false`, `"history"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Envelope missing %q: %s", want, out)
		}
	}
}

// =============================================================================
// HELPER TESTS
// =============================================================================

func TestParseBoolString(t *testing.T) {
	trueValues := []string{"true", "yes", "y", "1", "on", "TRUE", "Yes"}
	falseValues := []string{"false", "no", "n", "0", "off", "FALSE"}

	for _, v := range trueValues {
		got, err := ParseBoolString(v)
		if err != nil || !got {
			t.Errorf("ParseBoolString(%q) = %v, %v; want true, nil", v, got, err)
		}
	}
	for _, v := range falseValues {
		got, err := ParseBoolString(v)
		if err != nil || got {
			t.Errorf("ParseBoolString(%q) = %v, %v; want false, nil", v, got, err)
		}
	}
	if _, err := ParseBoolString("maybe"); err == nil {
		t.Error("ParseBoolString(maybe) should fail")
	}
}

func TestParseSince(t *testing.T) {
	now := time.Now()

	got, err := parseSince("24h")
	if err != nil {
		t.Fatalf("parseSince(24h) failed: %v", err)
	}
	want := now.Add(-24 * time.Hour)
	if got.Sub(want) > time.Minute || want.Sub(got) > time.Minute {
		t.Errorf("parseSince(24h) = %v, want about %v", got, want)
	}

	got, err = parseSince("7d")
	if err != nil {
		t.Fatalf("parseSince(7d) failed: %v", err)
	}
	want = now.Add(-7 * 24 * time.Hour)
	if got.Sub(want) > time.Minute || want.Sub(got) > time.Minute {
		t.Errorf("parseSince(7d) = %v, want about %v", got, want)
	}

	got, err = parseSince("2025-08-01")
	if err != nil {
		t.Fatalf("parseSince(date) failed: %v", err)
	}
	if got.Year() != 2025 || got.Month() != 8 || got.Day() != 1 {
		t.Errorf("parseSince(2025-08-01) = %v", got)
	}

	if _, err := parseSince("not-a-time"); err == nil {
		t.Error("parseSince(not-a-time) should fail")
	}
}

func TestGetExitCode(t *testing.T) {
	if GetExitCode(nil) != ExitSuccess {
		t.Error("nil error should map to ExitSuccess")
	}
	if GetExitCode(NewValidationError("x", "", "bad", "")) != ExitUsageError {
		t.Error("validation errors should map to ExitUsageError")
	}
	if GetExitCode(os.ErrInvalid) != ExitGeneralError {
		t.Error("unknown errors should map to ExitGeneralError")
	}
}
