// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution for
// chatvault.
//
// # Key Types
//
//   - Command: Enumeration of all available CLI commands
//   - ArgParser: Unified flag and positional argument parsing
//   - App: Shared handles (config, stores, resolver) built once per run
//
// # Commands Overview
//
//   - export: Archive one conversation (or a batch of recent ones)
//   - list: List recent conversations with filters
//   - preview: Show the tail of a conversation before exporting
//   - status: Source database, metadata, and helper trust status
//   - config: Show or initialize the configuration file
//
// Running export without a chat starts an interactive picker.
package cli
