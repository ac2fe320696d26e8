// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for watchlog.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdWatch Command = iota // Default: watch a directory and log changes
	CmdLog                  // Render the change log
	CmdHistory              // Query the change history index
	CmdConfig               // Configuration management
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool // Output in JSON format
	NoTUI   bool // Force the headless console feed even on a TTY

	// Root is the directory to watch (first positional arg of "watch")
	Root string

	// Subcommand for config/history style commands
	Subcommand string

	// Raw args remaining after command extraction
	Raw []string
}

const usageText = `watchlog - live file change tracking with a markdown audit trail

Watchlog watches a directory tree and appends every file change to a
CHANGELOG_AUTO.md inside it: creations, modifications with line diffs,
and deletions. A SQLite index keeps the history queryable.

Usage:
  watchlog [dir]               Watch a directory (prompts if omitted)
  watchlog watch [dir]         Same, explicit form
  watchlog log [dir]           Render the change log for a directory
  watchlog history [flags]     Query recorded changes
  watchlog config [show|path|init|set]  Configuration
  watchlog version             Show version
  watchlog help                Show this help

Watch Flags:
  --no-tui                     Plain console feed instead of the TUI
  --log-file NAME              Change log file name (default: CHANGELOG_AUTO.md)

Log Flags:
  --raw                        Print the raw markdown without rendering

History Flags:
  --path SUBSTRING             Filter by path substring
  --kind KIND                  Filter by kind (created/modified/deleted)
  --since DUR|DATE             Only changes after (1h, 24h, 7d, or YYYY-MM-DD)
  --limit N                    Maximum rows (default: 50)
  --json                       Machine-readable output

Config Commands:
  watchlog config show         Show effective configuration
  watchlog config path         Print the config file location
  watchlog config init         Write a default config.toml
  watchlog config set KEY VAL  Set a value (e.g. watch.settle_ms 200)

Global Flags:
  -q, --quiet     Minimal output
  -v, --verbose   Debug output
  --json          Output in JSON format

Examples:
  watchlog ~/projects/api              Watch a project
  watchlog watch . --no-tui            Headless feed, good for CI logs
  watchlog log .                       Pretty-print the change log
  watchlog history --path main.go      All changes touching main.go
  watchlog history --kind deleted --since 7d
  watchlog config set watch.settle_ms 250

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("watchlog version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	args := os.Args[1:]

	remaining, parsedArgs := parseGlobalFlags(args)

	// No args at all: watch, prompting for the directory
	if len(remaining) == 0 {
		return CmdWatch, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	rest := remaining[1:]
	parsedArgs.Raw = rest

	switch cmd {
	case "watch", "w":
		parseWatchArgs(&parsedArgs, rest)
		return CmdWatch, parsedArgs

	case "log":
		if len(rest) > 0 && !strings.HasPrefix(rest[0], "-") {
			parsedArgs.Root = rest[0]
		}
		return CmdLog, parsedArgs

	case "history", "hist":
		// Detailed argument parsing is done in history_cmd.go HandleHistory
		return CmdHistory, parsedArgs

	case "config":
		if len(rest) > 0 {
			parsedArgs.Subcommand = rest[0]
		}
		return CmdConfig, parsedArgs

	// "-v" is taken by --verbose; the long form stays unambiguous
	case "version", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Not a known command: treat it as the directory to watch
		parsedArgs.Raw = remaining
		parseWatchArgs(&parsedArgs, remaining)
		return CmdWatch, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	for _, arg := range args {
		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--no-tui", "--headless":
			parsedArgs.NoTUI = true
		default:
			remaining = append(remaining, arg)
		}
	}

	return remaining, parsedArgs
}

// parseWatchArgs pulls the watch directory out of the remaining arguments.
// Flags follow the ArgParser convention: a dash flag without an equals sign
// consumes the next token as its value, so a flag value never becomes the
// root (e.g. "watch --log-file custom.md" has no positional).
func parseWatchArgs(args *Args, remaining []string) {
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]

		if strings.HasPrefix(arg, "-") {
			if !strings.Contains(arg, "=") &&
				i+1 < len(remaining) && !strings.HasPrefix(remaining[i+1], "-") {
				i++ // skip the flag's value
			}
			continue
		}

		if args.Root == "" {
			args.Root = arg
		}
	}
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// ERROR HANDLING: Errors must not be silently ignored

// HandleVersion handles the "version" command, honoring --json.
func HandleVersion(args Args) {
	if args.JSON {
		data := VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}
		resp := NewJSONResponse("version", data)
		resp.Print()
		return
	}
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}
