// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export serializes archived conversations to portable files.
//
// The writers are plain serializers over a fully composed record list; all
// transformation happens upstream in the archive package.
//
// # Key Types
//
//   - Record: One exported message row
//   - Conversation: Named, ordered record list
//   - Exporter: Format writer interface (CSV, JSON, Markdown)
//   - Options: Output directory and file-naming behavior
//
// # Usage
//
//	exporter, err := export.ForFormat("csv")
//	path, err := export.ToFile(conv, exporter, opts)
package export
