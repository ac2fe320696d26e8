// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// watch_cmd.go - The watch command: baseline scan, watcher, engine, and
// either the TUI or the plain console feed.

package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"github.com/jeranaias/watchlog-tui/internal/changelog"
	"github.com/jeranaias/watchlog-tui/internal/config"
	"github.com/jeranaias/watchlog-tui/internal/engine"
	"github.com/jeranaias/watchlog-tui/internal/history"
	"github.com/jeranaias/watchlog-tui/internal/reader"
	"github.com/jeranaias/watchlog-tui/internal/snapshot"
	"github.com/jeranaias/watchlog-tui/internal/ui/watchview"
	"github.com/jeranaias/watchlog-tui/internal/watch"
)

// HandleWatch handles the "watch" command end to end.
func HandleWatch(args Args) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return NewCommandError("watch", "config", "failed to load configuration", err)
	}

	parser := NewArgParser(args.Raw)
	logFileName := parser.FlagOrDefault("log-file", cfg.Watch.LogFileName)

	writer := initWriter(root, logFileName, os.Stderr)

	// SCANNING: build the baseline so the first modification of every
	// known file diffs against real content
	ignore := ignoreFunc(cfg.Watch.Ignore)
	cache := snapshot.NewCache()
	if !args.Quiet {
		fmt.Printf("Scanning %s ...\n", root)
	}
	err = cache.LoadBaseline(root, writer.Path(), ignore, func(path string, err error) {
		if args.Verbose {
			fmt.Fprintf(os.Stderr, "skipped %s: %v\n", path, err)
		}
	})
	if err != nil {
		return NewCommandError("watch", "scan", "baseline scan failed", err)
	}
	if !args.Quiet {
		fmt.Printf("Cached %d file(s)\n", cache.Len())
	}

	var store *history.Store
	if cfg.History.Enabled {
		dbPath, err := cfg.HistoryDBPath()
		if err == nil {
			store, err = history.Open(dbPath)
		}
		if err != nil {
			// The markdown log works without the index
			fmt.Fprintf(os.Stderr, "Warning: history index unavailable: %v\n", err)
			store = nil
		}
	}
	if store != nil {
		defer store.Close()
	}

	watcher, err := watch.New(root, watch.Options{
		Debounce:     cfg.Debounce(),
		PollInterval: cfg.PollInterval(),
		Ignore:       cfg.Watch.Ignore,
	})
	if err != nil {
		return NewCommandError("watch", "start", "failed to start watcher", err)
	}
	defer watcher.Close()

	engCfg := engine.Config{
		SettleDelay: cfg.SettleDelay(),
		Retry: reader.RetryPolicy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			Delay:       cfg.RetryDelay(),
		},
		NotifyPerSec: cfg.UI.NotifyPerSec,
	}

	if args.NoTUI || !IsTTY() || !IsStdoutTTY() {
		return runHeadless(root, engCfg, cache, writer, store, watcher)
	}
	return runTUI(root, cfg, engCfg, cache, writer, store, watcher)
}

// initWriter prepares the change log. An init failure is warned about once
// and the session continues: the watcher and feed keep running, and every
// append attempt surfaces its own error, so the session degrades to
// notification-only mode instead of dying.
func initWriter(root, fileName string, warn io.Writer) *changelog.Writer {
	writer := changelog.NewWriter(root, fileName)
	if err := writer.Init(); err != nil {
		fmt.Fprintf(warn, "Warning: change log unavailable, continuing without durable logging: %v\n", err)
	}
	return writer
}

// resolveRoot turns the positional argument into an absolute directory,
// prompting interactively when none was given on a TTY.
func resolveRoot(args Args) (string, error) {
	if args.Root == "" {
		if !IsTTY() {
			args.Root = "."
		} else {
			prompt := NewPathPrompt()
			defer prompt.Close()
			root, err := prompt.AskDirectory()
			if err != nil {
				if err == ErrPromptAborted {
					return "", fmt.Errorf("canceled")
				}
				return "", err
			}
			return root, nil
		}
	}

	abs, err := filepath.Abs(expandHome(args.Root))
	if err != nil {
		return "", NewValidationError("directory", args.Root, "bad path", "")
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("no such directory: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// ignoreFunc builds the directory-name filter for the baseline scan,
// matching what the watcher itself skips.
func ignoreFunc(names []string) func(string) bool {
	if names == nil {
		names = watch.DefaultIgnores
	}
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return func(name string) bool {
		_, ok := set[name]
		return ok
	}
}

// runTUI drives the engine underneath the bubbletea program, pumping
// notifications in through Program.Send.
func runTUI(root string, cfg *config.Config, engCfg engine.Config, cache *snapshot.Cache,
	writer *changelog.Writer, store *history.Store, watcher watch.Watcher) error {

	model := watchview.New(watchview.Config{
		Root:      root,
		LogPath:   writer.Path(),
		Baseline:  cache.Len(),
		FeedSize:  cfg.UI.FeedSize,
		ShowDiffs: cfg.UI.ShowDiffs,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	eng := engine.New(root, engCfg, cache, writer, store, func(n engine.Notification) {
		p.Send(watchview.NotificationMsg(n))
	})
	go eng.Run(watcher.Events())
	defer eng.Stop()

	if _, err := p.Run(); err != nil {
		return NewCommandError("watch", "tui", "terminal UI failed", err)
	}
	return nil
}

// runHeadless prints the feed straight to the console until interrupted.
func runHeadless(root string, engCfg engine.Config, cache *snapshot.Cache,
	writer *changelog.Writer, store *history.Store, watcher watch.Watcher) error {

	color := ColorEnabled()
	eng := engine.New(root, engCfg, cache, writer, store, func(n engine.Notification) {
		out := os.Stdout
		if n.IsError {
			out = os.Stderr
		}
		fmt.Fprintln(out, headlessLine(n, color))
	})

	go eng.Run(watcher.Events())
	defer eng.Stop()

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", root)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	fmt.Println("\nStopped.")
	return nil
}

// headlessLine formats one feed entry for the console, coloring errors
// when the terminal supports it.
func headlessLine(n engine.Notification, color bool) string {
	line := fmt.Sprintf("[%s] %s", n.Time.Format("15:04:05"), n.Text)
	if n.IsError && color {
		line = termenv.String(line).Foreground(termenv.ANSIRed).String()
	}
	return line
}
