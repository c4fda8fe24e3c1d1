// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package msgstore provides read-only access to the source message database.
package msgstore

import "time"

// appleEpochOffset is the Unix timestamp of 2001-01-01T00:00:00Z, the zero
// point of the Apple message timestamp domain.
const appleEpochOffset = 978307200

// AppleTimestampToTime converts a raw message timestamp (nanoseconds since
// the Apple epoch) to local time. Returns the zero time for a zero input.
func AppleTimestampToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	secs := ts / 1e9
	nanos := ts % 1e9
	return time.Unix(secs+appleEpochOffset, nanos)
}

// FormatTimestamp renders a raw message timestamp as "2006-01-02 15:04:05"
// in local time. Returns "" for a zero input.
func FormatTimestamp(ts int64) string {
	t := AppleTimestampToTime(ts)
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
