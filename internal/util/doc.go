// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the chatvault archiver.
//
// This package contains common helper functions used throughout the
// application for string handling and file operations.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//   - CopyFile: File copy preserving modification time
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe string truncation with ellipsis
//
// # Usage
//
//	// Write files atomically to prevent data loss
//	err := util.AtomicWriteFile(path, data, 0644)
//
//	// Copy an attachment preserving its timestamp
//	err := util.CopyFile(src, dst)
package util
