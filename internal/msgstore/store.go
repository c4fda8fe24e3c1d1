// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package msgstore provides read-only access to the source message database.
package msgstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/chatvault/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrSourceUnavailable indicates the source message database could not be
// opened or snapshotted. This is fatal to an archive invocation.
var ErrSourceUnavailable = errors.New("message store unavailable")

// =============================================================================
// STORE
// =============================================================================

// Store is a read-only handle on a message database.
type Store struct {
	db *sql.DB

	// snapshot is the temp copy path, removed on Close. Empty when the store
	// was opened directly on an existing file.
	snapshot string
}

// Open opens an existing message database directly, without snapshotting.
// Used for tests and for pre-made snapshots.
func Open(path string) (*Store, error) {
	if !util.FileExists(path) {
		return nil, fmt.Errorf("%w: %s not found", ErrSourceUnavailable, path)
	}

	db, err := openSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return &Store{db: db}, nil
}

// OpenCopy snapshots the source database into workDir (os.TempDir when empty)
// and opens the copy. The live chat.db is locked by the Messages app, so all
// queries go against the snapshot.
func OpenCopy(srcPath, workDir string) (*Store, error) {
	if !util.FileExists(srcPath) {
		return nil, fmt.Errorf("%w: %s not found", ErrSourceUnavailable, srcPath)
	}
	if workDir == "" {
		workDir = os.TempDir()
	}

	snapshot := filepath.Join(workDir, "chatvault-"+uuid.NewString()+".db")
	if err := util.CopyFile(srcPath, snapshot); err != nil {
		return nil, fmt.Errorf("%w: snapshot failed: %v", ErrSourceUnavailable, err)
	}

	db, err := openSQLite(snapshot)
	if err != nil {
		os.Remove(snapshot)
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return &Store{db: db, snapshot: snapshot}, nil
}

// openSQLite opens a read-oriented SQLite connection.
func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA query_only=ON"); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the database handle and removes the snapshot copy.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.snapshot != "" {
		os.Remove(s.snapshot)
	}
	return err
}

// =============================================================================
// CONVERSATION QUERIES
// =============================================================================

const chatInfoSQL = `
SELECT c.display_name,
       (SELECT GROUP_CONCAT(h2.id)
        FROM handle h2
        JOIN chat_handle_join chj ON h2.ROWID = chj.handle_id
        WHERE chj.chat_id = c.ROWID) AS participant_handles
FROM chat c
WHERE c.guid = ?`

// ChatInfo returns naming metadata for one conversation.
func (s *Store) ChatInfo(chatGUID string) (*ChatInfo, error) {
	var displayName, participants sql.NullString
	err := s.db.QueryRow(chatInfoSQL, chatGUID).Scan(&displayName, &participants)
	if errors.Is(err, sql.ErrNoRows) {
		return &ChatInfo{GUID: chatGUID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query chat info: %w", err)
	}

	info := &ChatInfo{
		GUID:        chatGUID,
		DisplayName: displayName.String,
	}
	for _, h := range strings.Split(participants.String, ",") {
		if h != "" {
			info.Participants = append(info.Participants, h)
		}
	}
	return info, nil
}

const messagesSQL = `
SELECT m.ROWID, m.date, m.is_from_me, m.text, m.attributedBody, m.service,
       m.associated_message_type, m.guid,
       h.id AS handle_id, a.filename AS att_path, a.mime_type AS att_mime
FROM message m
JOIN chat_message_join cmj ON m.ROWID = cmj.message_id
JOIN chat c ON cmj.chat_id = c.ROWID
LEFT JOIN handle h ON m.handle_id = h.ROWID
LEFT JOIN message_attachment_join maj ON m.ROWID = maj.message_id
LEFT JOIN attachment a ON maj.attachment_id = a.ROWID
WHERE c.guid = ? AND m.date >= ?
ORDER BY m.date ASC`

// Messages returns all messages of a conversation with timestamp >= sinceTS,
// each joined with its attachments, in chronological order. The join produces
// one row per (message, attachment) pair; rows are regrouped per message here
// so callers always see typed records.
func (s *Store) Messages(chatGUID string, sinceTS int64) ([]Message, error) {
	rows, err := s.db.Query(messagesSQL, chatGUID, sinceTS)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var (
		order []int64
		byID  = map[int64]*Message{}
	)

	for rows.Next() {
		var (
			rowID      int64
			date       sql.NullInt64
			isFromMe   sql.NullInt64
			text       sql.NullString
			attributed []byte
			service    sql.NullString
			reaction   sql.NullInt64
			guid       sql.NullString
			handleID   sql.NullString
			attPath    sql.NullString
			attMime    sql.NullString
		)
		if err := rows.Scan(&rowID, &date, &isFromMe, &text, &attributed, &service,
			&reaction, &guid, &handleID, &attPath, &attMime); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}

		msg, seen := byID[rowID]
		if !seen {
			msg = &Message{
				RowID:        rowID,
				GUID:         guid.String,
				Date:         date.Int64,
				IsFromMe:     isFromMe.Int64 != 0,
				HandleID:     handleID.String,
				Service:      service.String,
				ReactionCode: reaction.Int64,
				Text:         DecodeBody(text.String, attributed),
			}
			byID[rowID] = msg
			order = append(order, rowID)
		}

		if attPath.String != "" {
			msg.Attachments = append(msg.Attachments, Attachment{
				Path: util.ExpandHome(attPath.String),
				MIME: attMime.String,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	msgs := make([]Message, 0, len(order))
	for _, id := range order {
		msgs = append(msgs, *byID[id])
	}
	return msgs, nil
}

// =============================================================================
// LISTING QUERIES
// =============================================================================

const recentChatsSQL = `
SELECT c.guid,
       MAX(m.date) AS last_date,
       COUNT(DISTINCT m.ROWID) AS msg_count,
       MAX(CASE WHEN a.mime_type LIKE 'image/%%' THEN 1 ELSE 0 END) AS has_img,
       MAX(CASE WHEN a.mime_type LIKE 'video/%%' THEN 1 ELSE 0 END) AS has_vid,
       MAX(CASE WHEN a.mime_type LIKE 'audio/%%' THEN 1 ELSE 0 END) AS has_aud,
       c.display_name,
       (SELECT GROUP_CONCAT(h2.id)
        FROM handle h2
        JOIN chat_handle_join chj ON h2.ROWID = chj.handle_id
        WHERE chj.chat_id = c.ROWID) AS participant_handles
FROM chat c
JOIN chat_message_join cmj ON c.ROWID = cmj.chat_id
JOIN message m ON cmj.message_id = m.ROWID
LEFT JOIN chat_handle_join chj_filter ON c.ROWID = chj_filter.chat_id
LEFT JOIN handle h_filter ON chj_filter.handle_id = h_filter.ROWID
LEFT JOIN message_attachment_join maj ON m.ROWID = maj.message_id
LEFT JOIN attachment a ON maj.attachment_id = a.ROWID
WHERE 1=1 %s
GROUP BY c.guid
ORDER BY last_date DESC
LIMIT ?`

// RecentChats returns up to limit conversations ordered by most recent
// activity, optionally filtered.
func (s *Store) RecentChats(limit int, filter ListFilter) ([]ChatSummary, error) {
	var (
		clauses string
		args    []any
	)
	if filter.GroupsOnly {
		clauses += " AND c.style = 43"
	}
	if filter.OneOnOneOnly {
		clauses += " AND c.style = 45"
	}
	if filter.Search != "" {
		clauses += " AND (h_filter.id LIKE ? OR c.display_name LIKE ?)"
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	args = append(args, limit)

	rows, err := s.db.Query(fmt.Sprintf(recentChatsSQL, clauses), args...)
	if err != nil {
		return nil, fmt.Errorf("query recent chats: %w", err)
	}
	defer rows.Close()

	var out []ChatSummary
	for rows.Next() {
		var (
			guid, displayName, participants sql.NullString
			lastDate                        sql.NullInt64
			count, hasImg, hasVid, hasAud   sql.NullInt64
		)
		if err := rows.Scan(&guid, &lastDate, &count, &hasImg, &hasVid, &hasAud,
			&displayName, &participants); err != nil {
			return nil, fmt.Errorf("scan chat row: %w", err)
		}

		summary := ChatSummary{
			GUID:         guid.String,
			LastDate:     lastDate.Int64,
			MessageCount: int(count.Int64),
			DisplayName:  displayName.String,
			HasImages:    hasImg.Int64 != 0,
			HasVideos:    hasVid.Int64 != 0,
			HasAudio:     hasAud.Int64 != 0,
		}
		for _, h := range strings.Split(participants.String, ",") {
			if h != "" {
				summary.Participants = append(summary.Participants, h)
			}
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

const previewSQL = `
SELECT m.text, m.attributedBody, m.is_from_me, m.date, h.id AS handle_id
FROM message m
JOIN chat_message_join cmj ON m.ROWID = cmj.message_id
JOIN chat c ON cmj.chat_id = c.ROWID
LEFT JOIN handle h ON m.handle_id = h.ROWID
WHERE c.guid = ?
ORDER BY m.date DESC
LIMIT ?`

// PreviewLine is one line of a conversation preview.
type PreviewLine struct {
	Date     int64
	IsFromMe bool
	HandleID string
	Text     string
}

// Preview returns the last count messages of a conversation in chronological
// order, for display before export.
func (s *Store) Preview(chatGUID string, count int) ([]PreviewLine, error) {
	rows, err := s.db.Query(previewSQL, chatGUID, count)
	if err != nil {
		return nil, fmt.Errorf("query preview: %w", err)
	}
	defer rows.Close()

	var lines []PreviewLine
	for rows.Next() {
		var (
			text       sql.NullString
			attributed []byte
			isFromMe   sql.NullInt64
			date       sql.NullInt64
			handleID   sql.NullString
		)
		if err := rows.Scan(&text, &attributed, &isFromMe, &date, &handleID); err != nil {
			return nil, fmt.Errorf("scan preview row: %w", err)
		}
		body := DecodeBody(text.String, attributed)
		if body == "" {
			body = "[Media]"
		}
		lines = append(lines, PreviewLine{
			Date:     date.Int64,
			IsFromMe: isFromMe.Int64 != 0,
			HandleID: handleID.String,
			Text:     body,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Query returns newest first; present oldest first.
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines, nil
}
