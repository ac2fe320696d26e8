// watchlog - live file change tracking with a markdown audit trail.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"github.com/jeranaias/watchlog-tui/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdWatch:
		if err := cli.HandleWatch(args); err != nil {
			cli.Exit(err)
		}
	case cli.CmdLog:
		if err := cli.HandleLog(args); err != nil {
			cli.Exit(err)
		}
	case cli.CmdHistory:
		if err := cli.HandleHistory(args); err != nil {
			cli.Exit(err)
		}
	case cli.CmdConfig:
		if err := cli.HandleConfig(args); err != nil {
			cli.Exit(err)
		}
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	}
}
