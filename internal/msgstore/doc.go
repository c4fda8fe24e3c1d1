// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package msgstore provides read-only access to the source message database.
//
// The source store is an iMessage chat.db SQLite database. Because the live
// database is held open by the Messages app, queries run against a snapshot
// copy created on open. All reads happen on the calling goroutine; the
// package performs no writes against the source.
//
// # Key Types
//
//   - Store: Read-only message database handle
//   - Message: One message with its joined attachments
//   - Attachment: Source path and MIME hint for one attachment
//   - ChatInfo / ChatSummary: Conversation metadata
//
// # Usage
//
//	store, err := msgstore.OpenCopy(dbPath, "")
//	defer store.Close()
//	msgs, err := store.Messages(chatGUID, 0)
package msgstore
