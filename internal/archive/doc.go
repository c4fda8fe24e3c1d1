// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package archive implements the conversation archival pipeline.
//
// The orchestrator reads a conversation from the message store, fans
// attachment work out to a bounded worker pool, enriches media with OCR and
// transcription text from trusted helper binaries, and serializes the merged
// result through the export writers. A per-conversation watermark in the
// metadata store makes repeat exports incremental, and a content-addressed
// enrichment cache keeps expensive helper invocations from repeating.
//
// # Key Types
//
//   - Archiver: Orchestrates one conversation export end to end
//   - Processor: Per-attachment transform, safe to run concurrently
//   - Result / Outcome: Typed attachment outcome, including degradations
//
// # Failure Semantics
//
// Only an unavailable source store or a failed output write abort an export.
// Missing attachments, untrusted or failing helpers, and copy failures
// degrade locally: the conversation still exports, and the degradation is
// visible in the output (inline marker) or in the record's attachment list.
package archive
