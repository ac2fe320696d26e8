// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history_cmd.go - Query the SQLite change history index.

package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/watchlog-tui/internal/config"
	"github.com/jeranaias/watchlog-tui/internal/history"
	"github.com/jeranaias/watchlog-tui/internal/util"
)

// HandleHistory handles the "history" command.
//
// Flags: --path SUBSTRING, --kind KIND, --since DUR|DATE, --limit N, --json
func HandleHistory(args Args) error {
	parser := NewArgParser(args.Raw)
	jsonMode := args.JSON || parser.BoolFlag("json")

	cfg, err := config.Load()
	if err != nil {
		return NewCommandError("history", "config", "failed to load configuration", err)
	}
	if !cfg.History.Enabled {
		return fmt.Errorf("history index is disabled (set history.enabled = true)")
	}

	dbPath, err := cfg.HistoryDBPath()
	if err != nil {
		return NewCommandError("history", "open", "cannot resolve database path", err)
	}

	store, err := history.Open(dbPath)
	if err != nil {
		return historyFail(jsonMode,
			NewCommandError("history", "open", "failed to open history database", err))
	}
	defer store.Close()

	opts := history.QueryOptions{
		Path:  parser.Flag("path"),
		Kind:  parser.Flag("kind"),
		Limit: parser.FlagIntOrDefault("limit", 50),
	}

	if since := parser.Flag("since"); since != "" {
		t, err := parseSince(since)
		if err != nil {
			return NewValidationError("since", since,
				"expected a duration or date", "--since 24h or --since 2025-08-01")
		}
		opts.Since = t
	}

	rows, err := store.Query(opts)
	if err != nil {
		return historyFail(jsonMode,
			NewCommandError("history", "query", "query failed", err))
	}

	if jsonMode {
		return NewJSONResponse("history", rows).Print()
	}

	if len(rows) == 0 {
		fmt.Println("No recorded changes match.")
		return nil
	}

	printHistoryTable(rows)
	return nil
}

// historyFail emits the JSON error envelope on stdout when --json was
// requested, so scripted callers always get a parseable response, then
// hands the error back for the usual stderr report and exit code.
func historyFail(jsonMode bool, err error) error {
	if jsonMode {
		NewJSONErrorResponse("history", err).Print()
	}
	return err
}

// parseSince accepts relative durations (1h, 24h, 7d) or YYYY-MM-DD dates.
func parseSince(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	// Days are common for this tool but not a time.ParseDuration unit
	if strings.HasSuffix(s, "d") {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil && days > 0 {
			return time.Now().Add(-time.Duration(days) * 24 * time.Hour), nil
		}
	}

	if d, err := time.ParseDuration(s); err == nil {
		return time.Now().Add(-d), nil
	}

	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unparseable since value: %s", s)
}

// printHistoryTable renders rows in fixed-width columns for the terminal.
func printHistoryTable(rows []history.Row) {
	const (
		timeWidth = 19
		kindWidth = 8
		pathWidth = 40
	)

	fmt.Printf("%s  %s  %s  %s\n",
		util.PadRight("TIME", timeWidth),
		util.PadRight("KIND", kindWidth),
		util.PadRight("PATH", pathWidth),
		"CHANGES")

	for _, row := range rows {
		changes := ""
		if row.Kind != "DELETED" {
			changes = fmt.Sprintf("+%d / -%d", row.Added, row.Removed)
		}
		fmt.Printf("%s  %s  %s  %s\n",
			util.PadRight(row.Time.Format("2006-01-02 15:04:05"), timeWidth),
			util.PadRight(row.Kind, kindWidth),
			util.PadRight(row.Path, pathWidth),
			changes)
	}

	fmt.Printf("\n%d change(s)\n", len(rows))
}
