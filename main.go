// chatvault - conversation archiver for the Messages database.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jeranaias/chatvault/internal/cli"
	"github.com/jeranaias/chatvault/internal/config"
)

// Version information (set at build time)
var (
	Version   = "0.2.0"
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
	initLogging()

	cmd, args := cli.Parse()

	var err error
	switch cmd {
	case cli.CmdExport:
		err = cli.HandleExport(args)
	case cli.CmdList:
		err = cli.HandleList(args)
	case cli.CmdPreview:
		err = cli.HandlePreview(args)
	case cli.CmdStatus:
		err = cli.HandleStatus(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp(args)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// initLogging configures the process logger from the configuration file.
// Logging must work before command dispatch, so config errors here fall
// back to defaults and are reported by the command itself.
func initLogging() {
	level := slog.LevelInfo
	format := "text"

	if cfg, err := config.Load(); err == nil {
		cfg.ApplyEnvOverrides()
		switch cfg.Log.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
		format = cfg.Log.Format
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
