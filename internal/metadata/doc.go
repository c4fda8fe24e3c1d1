// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metadata provides the persisted metadata store for chatvault.
//
// A single JSON document holds the enrichment cache, per-conversation export
// watermarks, manual handle aliases, and UI defaults. The document is
// normalized on load so all subkeys always exist, and saved atomically so a
// crash never leaves a partially written store.
//
// # Key Types
//
//   - Store: Mutex-guarded access to the metadata document
//   - Watermark: Per-conversation incremental export high-water mark
//
// # Usage
//
//	store := metadata.Open(path)
//	if text, ok := store.CacheGet(fp); ok { ... }
//	store.SetWatermark(chatGUID, metadata.Watermark{TS: ts, ISO: iso})
//	err := store.Save()
package metadata
