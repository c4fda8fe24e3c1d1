// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package msgstore provides read-only access to the source message database.
package msgstore

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

// =============================================================================
// FIXTURE DATABASE
// =============================================================================

const fixtureSchema = `
CREATE TABLE chat (
	ROWID INTEGER PRIMARY KEY,
	guid TEXT,
	display_name TEXT,
	style INTEGER
);
CREATE TABLE handle (
	ROWID INTEGER PRIMARY KEY,
	id TEXT
);
CREATE TABLE message (
	ROWID INTEGER PRIMARY KEY,
	guid TEXT,
	date INTEGER,
	is_from_me INTEGER,
	text TEXT,
	attributedBody BLOB,
	service TEXT,
	associated_message_type INTEGER,
	handle_id INTEGER
);
CREATE TABLE attachment (
	ROWID INTEGER PRIMARY KEY,
	filename TEXT,
	mime_type TEXT
);
CREATE TABLE chat_message_join (chat_id INTEGER, message_id INTEGER);
CREATE TABLE chat_handle_join (chat_id INTEGER, handle_id INTEGER);
CREATE TABLE message_attachment_join (message_id INTEGER, attachment_id INTEGER);
`

// newFixtureDB creates a minimal chat database with one conversation:
// three messages from two senders, the second carrying an attachment.
func newFixtureDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "chat.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(fixtureSchema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	stmts := []string{
		`INSERT INTO chat VALUES (1, 'chat-guid-1', 'Trail Crew', 43)`,
		`INSERT INTO handle VALUES (1, '+15551234567')`,
		`INSERT INTO handle VALUES (2, 'friend@example.com')`,
		`INSERT INTO chat_handle_join VALUES (1, 1), (1, 2)`,

		`INSERT INTO message VALUES (10, 'msg-guid-1', 1000000000, 0, 'first', NULL, 'iMessage', 0, 1)`,
		`INSERT INTO message VALUES (11, 'msg-guid-2', 2000000000, 1, 'second with photo', NULL, 'iMessage', 0, NULL)`,
		`INSERT INTO message VALUES (12, 'msg-guid-3', 3000000000, 0, 'third', NULL, 'SMS', 2000, 2)`,
		`INSERT INTO chat_message_join VALUES (1, 10), (1, 11), (1, 12)`,

		`INSERT INTO attachment VALUES (100, '/tmp/photo.jpeg', 'image/jpeg')`,
		`INSERT INTO message_attachment_join VALUES (11, 100)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("insert fixture row: %v", err)
		}
	}
	return path
}

// =============================================================================
// OPEN TESTS
// =============================================================================

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.db"))
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("err = %v, want ErrSourceUnavailable", err)
	}
}

func TestOpenCopy_SnapshotsSource(t *testing.T) {
	src := newFixtureDB(t)
	workDir := t.TempDir()

	store, err := OpenCopy(src, workDir)
	if err != nil {
		t.Fatalf("OpenCopy failed: %v", err)
	}
	defer store.Close()

	msgs, err := store.Messages("chat-guid-1", 0)
	if err != nil {
		t.Fatalf("Messages failed: %v", err)
	}
	if len(msgs) != 3 {
		t.Errorf("len(msgs) = %d, want 3", len(msgs))
	}
}

func TestOpenCopy_MissingSource(t *testing.T) {
	_, err := OpenCopy(filepath.Join(t.TempDir(), "nope.db"), "")
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("err = %v, want ErrSourceUnavailable", err)
	}
}

// =============================================================================
// MESSAGE QUERY TESTS
// =============================================================================

func TestMessages_JoinsAndGroupsAttachments(t *testing.T) {
	store, err := Open(newFixtureDB(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	msgs, err := store.Messages("chat-guid-1", 0)
	if err != nil {
		t.Fatalf("Messages failed: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("len(msgs) = %d, want 3", len(msgs))
	}

	// Chronological order
	if msgs[0].GUID != "msg-guid-1" || msgs[2].GUID != "msg-guid-3" {
		t.Errorf("messages out of order: %q, %q, %q", msgs[0].GUID, msgs[1].GUID, msgs[2].GUID)
	}

	if msgs[0].HandleID != "+15551234567" {
		t.Errorf("HandleID = %q", msgs[0].HandleID)
	}
	if !msgs[1].IsFromMe {
		t.Error("second message should be from me")
	}
	if len(msgs[1].Attachments) != 1 {
		t.Fatalf("attachments = %d, want 1", len(msgs[1].Attachments))
	}
	if msgs[1].Attachments[0].MIME != "image/jpeg" {
		t.Errorf("MIME = %q", msgs[1].Attachments[0].MIME)
	}
	if len(msgs[0].Attachments) != 0 {
		t.Errorf("first message should have no attachments")
	}
	if msgs[2].ReactionCode != 2000 {
		t.Errorf("ReactionCode = %d, want 2000", msgs[2].ReactionCode)
	}
}

func TestMessages_SinceTimestamp(t *testing.T) {
	store, err := Open(newFixtureDB(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	msgs, err := store.Messages("chat-guid-1", 2000000001)
	if err != nil {
		t.Fatalf("Messages failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("len(msgs) = %d, want 1", len(msgs))
	}
	if msgs[0].GUID != "msg-guid-3" {
		t.Errorf("GUID = %q, want msg-guid-3", msgs[0].GUID)
	}
}

func TestMessages_UnknownChat(t *testing.T) {
	store, err := Open(newFixtureDB(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	msgs, err := store.Messages("no-such-guid", 0)
	if err != nil {
		t.Fatalf("Messages failed: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("len(msgs) = %d, want 0", len(msgs))
	}
}

// =============================================================================
// CHAT INFO / LISTING TESTS
// =============================================================================

func TestChatInfo(t *testing.T) {
	store, err := Open(newFixtureDB(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	info, err := store.ChatInfo("chat-guid-1")
	if err != nil {
		t.Fatalf("ChatInfo failed: %v", err)
	}
	if info.DisplayName != "Trail Crew" {
		t.Errorf("DisplayName = %q", info.DisplayName)
	}
	if len(info.Participants) != 2 {
		t.Errorf("Participants = %v", info.Participants)
	}
}

func TestRecentChats(t *testing.T) {
	store, err := Open(newFixtureDB(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	chats, err := store.RecentChats(10, ListFilter{})
	if err != nil {
		t.Fatalf("RecentChats failed: %v", err)
	}
	if len(chats) != 1 {
		t.Fatalf("len(chats) = %d, want 1", len(chats))
	}

	c := chats[0]
	if c.GUID != "chat-guid-1" {
		t.Errorf("GUID = %q", c.GUID)
	}
	if c.MessageCount != 3 {
		t.Errorf("MessageCount = %d, want 3", c.MessageCount)
	}
	if !c.HasImages {
		t.Error("HasImages should be true")
	}
	if c.HasAudio {
		t.Error("HasAudio should be false")
	}
}

func TestRecentChats_Filters(t *testing.T) {
	store, err := Open(newFixtureDB(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	// Fixture chat is a group (style 43); 1:1 filter excludes it.
	chats, err := store.RecentChats(10, ListFilter{OneOnOneOnly: true})
	if err != nil {
		t.Fatalf("RecentChats failed: %v", err)
	}
	if len(chats) != 0 {
		t.Errorf("len(chats) = %d, want 0", len(chats))
	}

	chats, err = store.RecentChats(10, ListFilter{Search: "Trail"})
	if err != nil {
		t.Fatalf("RecentChats failed: %v", err)
	}
	if len(chats) != 1 {
		t.Errorf("len(chats) = %d, want 1 for search match", len(chats))
	}
}

func TestPreview(t *testing.T) {
	store, err := Open(newFixtureDB(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	lines, err := store.Preview("chat-guid-1", 2)
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	// Oldest of the window first
	if lines[0].Text != "second with photo" {
		t.Errorf("lines[0].Text = %q", lines[0].Text)
	}
	if lines[1].Text != "third" {
		t.Errorf("lines[1].Text = %q", lines[1].Text)
	}
}
