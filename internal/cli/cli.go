// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for chatvault.
package cli

import (
	"fmt"
	"os"
	"runtime"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.2.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdExport Command = iota
	CmdList
	CmdPreview
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
)

const usageText = `chatvault - conversation archiver for the Messages database

Chatvault exports conversations from a Messages chat.db into portable
CSV, JSON, or Markdown files, copying media into a per-conversation
folder tree and enriching images and audio through pinned helper
binaries.

Usage:
  chatvault export [chat-guid]   Export a conversation (picker when omitted)
  chatvault list                 List recent conversations
  chatvault preview <chat-guid>  Show the last messages of a conversation
  chatvault status, s            Show source, metadata, and helper status
  chatvault config [show|init]   Configuration management
  chatvault version, v           Show version information
  chatvault help, h              Show this help

Export Flags:
  --format <csv|json|md>   Output format (default: csv)
  --full                   Ignore the stored watermark, export everything
  --batch <n>              Export the n most recent conversations
  --output <dir>           Override the configured output directory
  --timestamped            Timestamp export filenames

List/Preview Flags:
  --limit <n>              Number of rows to show (default: 25)
  --groups                 Group chats only
  --direct                 1:1 chats only
  --search <text>          Match handles and display names
  --count <n>              Preview message count (default: 10)

Global Flags:
  --config <path>          Alternate configuration file

Examples:
  chatvault export                       Pick a conversation interactively
  chatvault export iMessage;-;+15550123  Incremental export of one chat
  chatvault export --batch 5 --format md Export the 5 most recent chats
  chatvault list --groups --limit 10     Ten most recent group chats
`

// Parse maps os.Args onto a command and its remaining arguments.
func Parse() (Command, []string) {
	args := os.Args[1:]
	if len(args) == 0 {
		return CmdHelp, nil
	}

	cmd := args[0]
	rest := args[1:]

	switch cmd {
	case "export", "archive":
		return CmdExport, rest
	case "list", "ls", "chats":
		return CmdList, rest
	case "preview", "show":
		return CmdPreview, rest
	case "status", "s":
		return CmdStatus, rest
	case "config":
		return CmdConfig, rest
	case "version", "v", "--version":
		return CmdVersion, rest
	case "help", "h", "--help", "-h":
		return CmdHelp, rest
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		return CmdHelp, rest
	}
}

// HandleHelp prints usage.
func HandleHelp(args []string) {
	fmt.Print(usageText)
}

// HandleVersion prints version and build information.
func HandleVersion(args []string) {
	fmt.Printf("chatvault %s\n", Version)
	fmt.Printf("  commit:  %s\n", GitCommit)
	fmt.Printf("  built:   %s\n", BuildDate)
	fmt.Printf("  runtime: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
