// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package msgstore provides read-only access to the source message database.
package msgstore

// =============================================================================
// RECORD TYPES
// =============================================================================

// Attachment describes one media file referenced by a message.
type Attachment struct {
	// Path is the absolute source path on disk.
	Path string
	// MIME is the stored MIME-type hint; may be empty.
	MIME string
}

// Message is one message row joined with its attachments. Messages are
// immutable once read from the source store.
type Message struct {
	// RowID is the source row identifier, unique within the database.
	RowID int64
	// GUID is the globally unique message identifier.
	GUID string
	// Date is the raw timestamp in the source epoch (nanoseconds since
	// 2001-01-01 for modern databases).
	Date int64
	// IsFromMe is true for messages sent by the local account.
	IsFromMe bool
	// HandleID is the sender identity; empty for own messages.
	HandleID string
	// Service is the transport tag ("iMessage", "SMS").
	Service string
	// ReactionCode is the associated-message annotation code; 0 for none.
	ReactionCode int64
	// Text is the decoded message body.
	Text string
	// Attachments lists the media owned by this message; may be empty.
	Attachments []Attachment
}

// ChatInfo holds naming metadata for a single conversation.
type ChatInfo struct {
	GUID        string
	DisplayName string
	// Participants are the raw handles of the chat members.
	Participants []string
}

// ChatSummary is one row of the recent-chats listing.
type ChatSummary struct {
	GUID         string
	LastDate     int64
	MessageCount int
	DisplayName  string
	Participants []string
	HasImages    bool
	HasVideos    bool
	HasAudio     bool
}

// ListFilter narrows the recent-chats listing.
type ListFilter struct {
	// GroupsOnly restricts to group chats.
	GroupsOnly bool
	// OneOnOneOnly restricts to 1:1 chats.
	OneOnOneOnly bool
	// Search matches against handles and display names.
	Search string
}
